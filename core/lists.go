package core

import "bytes"

// listOrCreate returns the live list value at key, creating an empty one
// if absent, or ErrWrongType if key holds a non-list value. Must be
// called with s.mu held.
func (s *Store) listOrCreate(key string) (*value, error) {
	v, ok := s.getLive(key)
	if !ok {
		v = newListValue(nil)
		s.data[key] = v
		return v, nil
	}
	if v.kind != KindList {
		return nil, ErrWrongType
	}
	return v, nil
}

// Push appends (or, if left, prepends) elems to key's list, creating it if
// absent, and returns the new length. If mustExist is true (LPUSHX/RPUSHX),
// it is a no-op returning 0 when key is absent.
func (s *Store) Push(key []byte, left bool, mustExist bool, elems [][]byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mustExist {
		v, err, ok := s.getTyped(string(key), KindList)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, nil
		}
		return s.pushInto(v, left, elems), nil
	}

	v, err := s.listOrCreate(string(key))
	if err != nil {
		return 0, err
	}
	return s.pushInto(v, left, elems), nil
}

// pushInto mutates v.list in place, copying each element, and returns the
// new length. Must be called with s.mu held.
func (s *Store) pushInto(v *value, left bool, elems [][]byte) int {
	for _, e := range elems {
		copied := append([]byte(nil), e...)
		if left {
			v.list = append([][]byte{copied}, v.list...)
		} else {
			v.list = append(v.list, copied)
		}
	}
	return len(v.list)
}

// Pop removes and returns up to count elements from the left or right end
// of key's list, auto-deleting key if it becomes empty.
func (s *Store) Pop(key []byte, left bool, count int) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindList)
	if err != nil || !ok {
		return nil, err
	}

	if count < 0 {
		count = 0
	}
	if count > len(v.list) {
		count = len(v.list)
	}

	var popped [][]byte
	if left {
		popped = v.list[:count]
		v.list = v.list[count:]
	} else {
		popped = v.list[len(v.list)-count:]
		v.list = v.list[:len(v.list)-count]
		reverseBytes(popped)
	}

	s.autoDeleteIfEmpty(string(key), v)
	return popped, nil
}

func reverseBytes(elems [][]byte) {
	for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
		elems[i], elems[j] = elems[j], elems[i]
	}
}

// LLen returns the length of key's list, or 0 if absent.
func (s *Store) LLen(key []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindList)
	if err != nil || !ok {
		return 0, err
	}
	return len(v.list), nil
}

// LRange returns copies of the inclusive element range [start,end] of
// key's list, negative indices counted from the end.
func (s *Store) LRange(key []byte, start, end int) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindList)
	if err != nil || !ok {
		return nil, err
	}

	lo, hi, inRange := normalizeRange(start, end, len(v.list))
	if !inRange {
		return [][]byte{}, nil
	}

	result := make([][]byte, hi-lo)
	for i := range result {
		result[i] = append([]byte(nil), v.list[lo+i]...)
	}
	return result, nil
}

// LIndex returns a copy of the element at index (negative counts from the
// end), or ok=false if out of range.
func (s *Store) LIndex(key []byte, index int) (result []byte, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, found := s.getTyped(string(key), KindList)
	if err != nil || !found {
		return nil, false, err
	}

	if index < 0 {
		index += len(v.list)
	}
	if index < 0 || index >= len(v.list) {
		return nil, false, nil
	}
	return append([]byte(nil), v.list[index]...), true, nil
}

// LSet overwrites the element at index (negative counts from the end).
func (s *Store) LSet(key []byte, index int, elem []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindList)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoSuchKey
	}

	if index < 0 {
		index += len(v.list)
	}
	if index < 0 || index >= len(v.list) {
		return ErrIndexOutOfRange
	}

	v.list[index] = append([]byte(nil), elem...)
	return nil
}

// LTrim keeps only the inclusive element range [start,end] of key's list,
// discarding everything else and auto-deleting key if the trim leaves it
// (or it was already) empty.
func (s *Store) LTrim(key []byte, start, end int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindList)
	if err != nil || !ok {
		return err
	}

	lo, hi, inRange := normalizeRange(start, end, len(v.list))
	if !inRange {
		v.list = nil
	} else {
		v.list = append([][]byte(nil), v.list[lo:hi]...)
	}

	s.autoDeleteIfEmpty(string(key), v)
	return nil
}

// LRem removes elements equal to elem from key's list: if count > 0, the
// first count occurrences scanning head-to-tail; if count < 0, the first
// -count occurrences scanning tail-to-head; if count == 0, all
// occurrences. Returns the number of elements removed.
func (s *Store) LRem(key []byte, count int, elem []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindList)
	if err != nil || !ok {
		return 0, err
	}

	removed := 0
	switch {
	case count == 0:
		kept := v.list[:0:0]
		for _, e := range v.list {
			if bytes.Equal(e, elem) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		v.list = kept
	case count > 0:
		kept := v.list[:0:0]
		for _, e := range v.list {
			if removed < count && bytes.Equal(e, elem) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		v.list = kept
	default:
		limit := -count
		kept := make([][]byte, len(v.list))
		copy(kept, v.list)
		for i := len(kept) - 1; i >= 0 && removed < limit; i-- {
			if bytes.Equal(kept[i], elem) {
				kept = append(kept[:i], kept[i+1:]...)
				removed++
			}
		}
		v.list = kept
	}

	s.autoDeleteIfEmpty(string(key), v)
	return removed, nil
}

// LInsert inserts elem immediately before or after the first occurrence of
// pivot, returning the new length, 0 if pivot is not found, or -1 if key
// is absent.
func (s *Store) LInsert(key []byte, before bool, pivot, elem []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindList)
	if err != nil {
		return 0, err
	}
	if !ok {
		return -1, nil
	}

	idx := -1
	for i, e := range v.list {
		if bytes.Equal(e, pivot) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, nil
	}
	if !before {
		idx++
	}

	v.list = append(v.list, nil)
	copy(v.list[idx+1:], v.list[idx:])
	v.list[idx] = append([]byte(nil), elem...)

	return len(v.list), nil
}

// LPos returns the indices of elem in key's list matching the given
// rank, count and maxlen. rank is 1-based and nonzero: positive scans
// forward from the head skipping rank-1 earlier matches, negative scans
// backward from the tail skipping (-rank)-1 later matches; rank=0 is
// treated as 1. count=0 returns every remaining match; count>0 caps the
// number returned. maxlen=0 scans the whole list; maxlen>0 bounds the
// number of elements examined. The returned indices are always in
// ascending order, regardless of scan direction.
func (s *Store) LPos(key []byte, elem []byte, rank, count, maxlen int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, found := s.getTyped(string(key), KindList)
	if err != nil || !found {
		return nil, err
	}
	if rank == 0 {
		rank = 1
	}

	forward := rank > 0
	skip := rank - 1
	if !forward {
		skip = -rank - 1
	}

	var matched []int
	scanned := 0
	if forward {
		for i := 0; i < len(v.list); i++ {
			if maxlen > 0 && scanned >= maxlen {
				break
			}
			scanned++
			if !bytes.Equal(v.list[i], elem) {
				continue
			}
			if skip > 0 {
				skip--
				continue
			}
			matched = append(matched, i)
			if count > 0 && len(matched) >= count {
				break
			}
		}
		return matched, nil
	}

	for i := len(v.list) - 1; i >= 0; i-- {
		if maxlen > 0 && scanned >= maxlen {
			break
		}
		scanned++
		if !bytes.Equal(v.list[i], elem) {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		matched = append(matched, i)
		if count > 0 && len(matched) >= count {
			break
		}
	}
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	return matched, nil
}

// LMove atomically pops from the head or tail of src and pushes to the
// head or tail of dst, returning the moved element. dst's wrong-type
// check happens before src is popped, so a wrong-typed destination
// leaves src untouched.
func (s *Store) LMove(src, dst []byte, srcLeft, dstLeft bool) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate destination's type before touching source.
	if dstVal, ok := s.getLive(string(dst)); ok && dstVal.kind != KindList {
		return nil, false, ErrWrongType
	}

	srcVal, err, ok := s.getTyped(string(src), KindList)
	if err != nil || !ok {
		return nil, false, err
	}
	if len(srcVal.list) == 0 {
		return nil, false, nil
	}

	var elem []byte
	if srcLeft {
		elem = srcVal.list[0]
		srcVal.list = srcVal.list[1:]
	} else {
		elem = srcVal.list[len(srcVal.list)-1]
		srcVal.list = srcVal.list[:len(srcVal.list)-1]
	}

	s.autoDeleteIfEmpty(string(src), srcVal)

	dstVal, err := s.listOrCreate(string(dst))
	if err != nil {
		// Can't happen: we already verified dst's type above, and src/dst
		// distinctness doesn't matter because listOrCreate only fails on
		// type mismatch.
		return nil, false, err
	}
	s.pushInto(dstVal, dstLeft, [][]byte{elem})

	return append([]byte(nil), elem...), true, nil
}
