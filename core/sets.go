package core

// setOrCreate returns the live set value at key, creating an empty one if
// absent, or ErrWrongType if key holds a non-set value. Must be called
// with s.mu held.
func (s *Store) setOrCreate(key string) (*value, error) {
	v, ok := s.getLive(key)
	if !ok {
		v = newSetValue(make(map[string]struct{}))
		s.data[key] = v
		return v, nil
	}
	if v.kind != KindSet {
		return nil, ErrWrongType
	}
	return v, nil
}

// SAdd adds members to key's set, creating it if absent, and returns the
// count of members that were not already present.
func (s *Store) SAdd(key []byte, members [][]byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.setOrCreate(string(key))
	if err != nil {
		return 0, err
	}

	added := 0
	for _, m := range members {
		if _, exists := v.set[string(m)]; !exists {
			v.set[string(m)] = struct{}{}
			added++
		}
	}
	return added, nil
}

// SRem removes members from key's set, auto-deleting key if it becomes
// empty, and returns the count actually removed.
func (s *Store) SRem(key []byte, members [][]byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindSet)
	if err != nil || !ok {
		return 0, err
	}

	removed := 0
	for _, m := range members {
		if _, exists := v.set[string(m)]; exists {
			delete(v.set, string(m))
			removed++
		}
	}

	s.autoDeleteIfEmpty(string(key), v)
	return removed, nil
}

// SIsMember reports whether member is in key's set.
func (s *Store) SIsMember(key, member []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindSet)
	if err != nil || !ok {
		return false, err
	}
	_, exists := v.set[string(member)]
	return exists, nil
}

// SMIsMember reports, per member, whether it is in key's set.
func (s *Store) SMIsMember(key []byte, members [][]byte) ([]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindSet)
	if err != nil {
		return nil, err
	}

	result := make([]bool, len(members))
	if !ok {
		return result, nil
	}
	for i, m := range members {
		_, result[i] = v.set[string(m)]
	}
	return result, nil
}

// SMembers returns copies of every member of key's set.
func (s *Store) SMembers(key []byte) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindSet)
	if err != nil || !ok {
		return nil, err
	}

	result := make([][]byte, 0, len(v.set))
	for m := range v.set {
		result = append(result, []byte(m))
	}
	return result, nil
}

// SCard returns the cardinality of key's set, or 0 if absent.
func (s *Store) SCard(key []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindSet)
	if err != nil || !ok {
		return 0, err
	}
	return len(v.set), nil
}

// SPop removes and returns up to count random members of key's set,
// auto-deleting key if it becomes empty.
func (s *Store) SPop(key []byte, count int) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindSet)
	if err != nil || !ok {
		return nil, err
	}

	if count > len(v.set) {
		count = len(v.set)
	}

	result := make([][]byte, 0, count)
	for m := range v.set {
		if len(result) >= count {
			break
		}
		result = append(result, []byte(m))
		delete(v.set, m)
	}

	s.autoDeleteIfEmpty(string(key), v)
	return result, nil
}

// SRandMember returns up to |count| members without removing them. A
// positive count returns distinct members (at most the set's size); a
// negative count returns exactly -count members, possibly with
// repetition, matching redis's two-sided contract.
func (s *Store) SRandMember(key []byte, count int) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindSet)
	if err != nil || !ok {
		return nil, err
	}
	if len(v.set) == 0 {
		return nil, nil
	}

	all := make([]string, 0, len(v.set))
	for m := range v.set {
		all = append(all, m)
	}

	if count >= 0 {
		if count > len(all) {
			count = len(all)
		}
		result := make([][]byte, count)
		for i := 0; i < count; i++ {
			result[i] = []byte(all[i])
		}
		return result, nil
	}

	n := -count
	result := make([][]byte, n)
	for i := 0; i < n; i++ {
		result[i] = []byte(all[i%len(all)])
	}
	return result, nil
}

// SMove atomically moves member from src to dst (both sets), returning
// false if member was not in src. dst is created if absent; src is
// auto-deleted if it becomes empty.
func (s *Store) SMove(src, dst []byte, member []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dstVal, ok := s.getLive(string(dst)); ok && dstVal.kind != KindSet {
		return false, ErrWrongType
	}

	srcVal, err, ok := s.getTyped(string(src), KindSet)
	if err != nil || !ok {
		return false, err
	}
	if _, exists := srcVal.set[string(member)]; !exists {
		return false, nil
	}
	delete(srcVal.set, string(member))
	s.autoDeleteIfEmpty(string(src), srcVal)

	dstVal, err := s.setOrCreate(string(dst))
	if err != nil {
		return false, err
	}
	dstVal.set[string(member)] = struct{}{}

	return true, nil
}

// SetAlgebra enumerates SUNION/SINTER/SDIFF's combinator.
type SetAlgebra int

const (
	SetUnion SetAlgebra = iota
	SetInter
	SetDiff
)

// setAlgebra computes op over the live sets named by keys (a missing key
// behaves as an empty set), returning wrong-type as an error if any
// existing key is not a set. Must be called with s.mu held.
func (s *Store) setAlgebra(op SetAlgebra, keys [][]byte) (map[string]struct{}, error) {
	sets := make([]map[string]struct{}, len(keys))
	for i, k := range keys {
		v, err, ok := s.getTyped(string(k), KindSet)
		if err != nil {
			return nil, err
		}
		if ok {
			sets[i] = v.set
		} else {
			sets[i] = map[string]struct{}{}
		}
	}

	result := make(map[string]struct{})
	switch op {
	case SetUnion:
		for _, set := range sets {
			for m := range set {
				result[m] = struct{}{}
			}
		}
	case SetInter:
		if len(sets) == 0 {
			break
		}
		for m := range sets[0] {
			inAll := true
			for _, set := range sets[1:] {
				if _, ok := set[m]; !ok {
					inAll = false
					break
				}
			}
			if inAll {
				result[m] = struct{}{}
			}
		}
	case SetDiff:
		if len(sets) == 0 {
			break
		}
		for m := range sets[0] {
			inAny := false
			for _, set := range sets[1:] {
				if _, ok := set[m]; ok {
					inAny = true
					break
				}
			}
			if !inAny {
				result[m] = struct{}{}
			}
		}
	}
	return result, nil
}

// SCombine computes the SUNION/SINTER/SDIFF of keys without storing it.
func (s *Store) SCombine(op SetAlgebra, keys [][]byte) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.setAlgebra(op, keys)
	if err != nil {
		return nil, err
	}

	out := make([][]byte, 0, len(result))
	for m := range result {
		out = append(out, []byte(m))
	}
	return out, nil
}

// SCombineStore computes op over keys and stores the result at dst. An
// empty result always deletes dst (rather than leaving a stale or
// empty-but-present set) and returns 0.
func (s *Store) SCombineStore(op SetAlgebra, dst []byte, keys [][]byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.setAlgebra(op, keys)
	if err != nil {
		return 0, err
	}

	if len(result) == 0 {
		delete(s.data, string(dst))
		return 0, nil
	}

	s.data[string(dst)] = newSetValue(result)
	return len(result), nil
}

// SInterCard returns the cardinality of the intersection of keys, capped
// at limit if limit > 0.
func (s *Store) SInterCard(keys [][]byte, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.setAlgebra(SetInter, keys)
	if err != nil {
		return 0, err
	}

	n := len(result)
	if limit > 0 && n > limit {
		n = limit
	}
	return n, nil
}
