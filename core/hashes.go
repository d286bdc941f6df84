package core

import "strconv"

// hashOrCreate returns the live hash value at key, creating an empty one
// if absent, or ErrWrongType if key holds a non-hash value. Must be
// called with s.mu held.
func (s *Store) hashOrCreate(key string) (*value, error) {
	v, ok := s.getLive(key)
	if !ok {
		v = newHashValue(make(map[string][]byte))
		s.data[key] = v
		return v, nil
	}
	if v.kind != KindHash {
		return nil, ErrWrongType
	}
	return v, nil
}

// HSet sets fields on key's hash, creating it if absent, and returns the
// count of fields that were newly created (as opposed to overwritten).
func (s *Store) HSet(key []byte, fields map[string][]byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.hashOrCreate(string(key))
	if err != nil {
		return 0, err
	}

	created := 0
	for f, val := range fields {
		if _, exists := v.hash[f]; !exists {
			created++
		}
		v.hash[f] = append([]byte(nil), val...)
	}
	return created, nil
}

// HSetNX sets field only if it does not already exist, returning whether
// it was set.
func (s *Store) HSetNX(key []byte, field string, val []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.hashOrCreate(string(key))
	if err != nil {
		return false, err
	}
	if _, exists := v.hash[field]; exists {
		return false, nil
	}
	v.hash[field] = append([]byte(nil), val...)
	return true, nil
}

// HGet returns a copy of field's value in key's hash, or ok=false if
// either is absent.
func (s *Store) HGet(key []byte, field string) (result []byte, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, found := s.getTyped(string(key), KindHash)
	if err != nil || !found {
		return nil, false, err
	}
	val, exists := v.hash[field]
	if !exists {
		return nil, false, nil
	}
	return append([]byte(nil), val...), true, nil
}

// HDel removes fields from key's hash, auto-deleting key if it becomes
// empty, and returns the count actually removed.
func (s *Store) HDel(key []byte, fields []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindHash)
	if err != nil || !ok {
		return 0, err
	}

	removed := 0
	for _, f := range fields {
		if _, exists := v.hash[f]; exists {
			delete(v.hash, f)
			removed++
		}
	}

	s.autoDeleteIfEmpty(string(key), v)
	return removed, nil
}

// HExists reports whether field is present in key's hash.
func (s *Store) HExists(key []byte, field string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindHash)
	if err != nil || !ok {
		return false, err
	}
	_, exists := v.hash[field]
	return exists, nil
}

// HLen returns the field count of key's hash, or 0 if absent.
func (s *Store) HLen(key []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindHash)
	if err != nil || !ok {
		return 0, err
	}
	return len(v.hash), nil
}

// HGetAll returns a copy of key's entire hash as field/value pairs.
func (s *Store) HGetAll(key []byte) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindHash)
	if err != nil || !ok {
		return nil, err
	}

	result := make(map[string][]byte, len(v.hash))
	for f, val := range v.hash {
		result[f] = append([]byte(nil), val...)
	}
	return result, nil
}

// HKeys returns the field names of key's hash.
func (s *Store) HKeys(key []byte) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindHash)
	if err != nil || !ok {
		return nil, err
	}

	result := make([]string, 0, len(v.hash))
	for f := range v.hash {
		result = append(result, f)
	}
	return result, nil
}

// HVals returns the values of key's hash.
func (s *Store) HVals(key []byte) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindHash)
	if err != nil || !ok {
		return nil, err
	}

	result := make([][]byte, 0, len(v.hash))
	for _, val := range v.hash {
		result = append(result, append([]byte(nil), val...))
	}
	return result, nil
}

// HIncrBy parses field's current value (default "0") as a signed 64-bit
// integer and adds delta, writing the result back as a decimal string.
func (s *Store) HIncrBy(key []byte, field string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.hashOrCreate(string(key))
	if err != nil {
		return 0, err
	}

	current := int64(0)
	if cur, exists := v.hash[field]; exists {
		current, err = strconv.ParseInt(string(cur), 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
	}

	result := current + delta
	if (delta > 0 && result < current) || (delta < 0 && result > current) {
		return 0, ErrOverflow
	}

	v.hash[field] = []byte(strconv.FormatInt(result, 10))
	return result, nil
}

// HIncrByFloat is HIncrBy's float64 analogue.
func (s *Store) HIncrByFloat(key []byte, field string, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.hashOrCreate(string(key))
	if err != nil {
		return 0, err
	}

	current := float64(0)
	if cur, exists := v.hash[field]; exists {
		current, err = strconv.ParseFloat(string(cur), 64)
		if err != nil {
			return 0, ErrNotFloat
		}
	}

	result := current + delta
	v.hash[field] = []byte(formatFloat(result))
	return result, nil
}
