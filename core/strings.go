package core

import (
	"strconv"
	"strings"
)

// Set overwrites key with value, resetting its expiration to expiresAt
// (nil clears it).
func (s *Store) Set(key, val []byte, expiresAt *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := newStringValue(append([]byte(nil), val...))
	if expiresAt != nil {
		v.expireAt = *expiresAt
	}
	s.data[string(key)] = v
}

// Get returns a copy of key's string value, or ok=false if absent/expired.
// Returns ErrWrongType if key holds a non-string value.
func (s *Store) Get(key []byte) (result []byte, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindString)
	if err != nil || !ok {
		return nil, false, err
	}
	return append([]byte(nil), v.Str()...), true, nil
}

// stringOrCreate returns the live string value at key, creating an empty
// string ("") if absent, or ErrWrongType if key holds a non-string value.
// Must be called with s.mu held.
func (s *Store) stringOrCreate(key string) (*value, error) {
	v, ok := s.getLive(key)
	if !ok {
		v = newStringValue(nil)
		s.data[key] = v
		return v, nil
	}
	if v.kind != KindString {
		return nil, ErrWrongType
	}
	return v, nil
}

// IncrBy parses key's current value (default "0") as a signed 64-bit
// integer and adds delta, writing the result back as a decimal string and
// preserving the current expiration.
func (s *Store) IncrBy(key []byte, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.stringOrCreate(string(key))
	if err != nil {
		return 0, err
	}

	current := int64(0)
	if len(v.str) > 0 {
		current, err = strconv.ParseInt(string(v.str), 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
	}

	result := current + delta
	if (delta > 0 && result < current) || (delta < 0 && result > current) {
		return 0, ErrOverflow
	}

	v.str = []byte(strconv.FormatInt(result, 10))
	return result, nil
}

// IncrByFloat is IncrBy's float64 analogue; the stored representation
// trims trailing zeros.
func (s *Store) IncrByFloat(key []byte, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.stringOrCreate(string(key))
	if err != nil {
		return 0, err
	}

	current := float64(0)
	if len(v.str) > 0 {
		current, err = strconv.ParseFloat(string(v.str), 64)
		if err != nil {
			return 0, ErrNotFloat
		}
	}

	result := current + delta
	v.str = []byte(formatFloat(result))
	return result, nil
}

// formatFloat renders f as a decimal string with trailing zeros (and a
// trailing '.') trimmed, the representation ZSCORE/INCRBYFLOAT use.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 17, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	// round-trip through the shortest representation that reparses equal,
	// so "1.1" doesn't keep 17 digits of float noise.
	if short := strconv.FormatFloat(f, 'f', -1, 64); parsesEqual(short, f) {
		return short
	}
	return s
}

func parsesEqual(s string, f float64) bool {
	parsed, err := strconv.ParseFloat(s, 64)
	return err == nil && parsed == f
}

// AppendString appends suffix to key's string value, creating key if
// absent, and returns the new total length.
func (s *Store) AppendString(key, suffix []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.stringOrCreate(string(key))
	if err != nil {
		return 0, err
	}

	v.str = append(v.str, suffix...)
	return len(v.str), nil
}

// GetDel returns a copy of key's string value and deletes the key.
func (s *Store) GetDel(key []byte) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindString)
	if err != nil || !ok {
		return nil, false, err
	}

	result := append([]byte(nil), v.Str()...)
	delete(s.data, string(key))
	return result, true, nil
}

// GetEx returns a copy of key's string value and optionally mutates its
// expiration: persist clears it, else a non-nil expiresAt sets it, else
// the expiration is left unchanged.
func (s *Store) GetEx(key []byte, expiresAt *int64, persist bool) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindString)
	if err != nil || !ok {
		return nil, false, err
	}

	if persist {
		v.expireAt = 0
	} else if expiresAt != nil {
		v.expireAt = *expiresAt
	}

	return append([]byte(nil), v.Str()...), true, nil
}

// normalizeRange maps possibly-negative, possibly-out-of-range [start,end]
// inclusive byte/element indices onto an in-bounds, half-open [lo, hi)
// range over a container of the given length. ok is false when the
// normalized range is empty.
func normalizeRange(start, end, length int) (lo, hi int, ok bool) {
	if length == 0 {
		return 0, 0, false
	}

	if start < 0 {
		start += length
	}
	if end < 0 {
		end += length
	}
	if start < 0 {
		start = 0
	}
	if end >= length {
		end = length - 1
	}
	if start > end || start >= length {
		return 0, 0, false
	}

	return start, end + 1, true
}

// GetRange returns the inclusive byte range [start,end] of key's string
// value, with negative indices counted from the end. Out-of-range bounds
// yield an empty slice rather than an error.
func (s *Store) GetRange(key []byte, start, end int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindString)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	lo, hi, inRange := normalizeRange(start, end, len(v.str))
	if !inRange {
		return []byte{}, nil
	}
	return append([]byte(nil), v.str[lo:hi]...), nil
}

// SetRange overwrites key's string value starting at offset with bytes,
// zero-padding if key is shorter than offset, and returns the new length.
func (s *Store) SetRange(key []byte, offset int, data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.stringOrCreate(string(key))
	if err != nil {
		return 0, err
	}

	needed := offset + len(data)
	if needed > len(v.str) {
		grown := make([]byte, needed)
		copy(grown, v.str)
		v.str = grown
	}
	copy(v.str[offset:], data)

	s.autoDeleteIfEmptyString(string(key), v)
	return len(v.str), nil
}

// autoDeleteIfEmptyString is a no-op placeholder to mirror the aggregate
// auto-delete hook; strings are never auto-deleted when empty -- an empty
// string is a valid value (spec 3: length >= 0).
func (s *Store) autoDeleteIfEmptyString(string, *value) {}

// bitOffset decomposes a bit offset into a byte index and the MSB-first
// bit position within that byte (bit 7-(offset%8)).
func bitOffset(offset int) (byteIdx int, bit uint) {
	return offset / 8, 7 - uint(offset%8)
}

// SetBit sets the bit at offset to 0 or 1, growing the string with zero
// padding as needed, and returns the bit's previous value.
func (s *Store) SetBit(key []byte, offset int, bitValue int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.stringOrCreate(string(key))
	if err != nil {
		return 0, err
	}

	byteIdx, bit := bitOffset(offset)
	if byteIdx+1 > len(v.str) {
		grown := make([]byte, byteIdx+1)
		copy(grown, v.str)
		v.str = grown
	}

	old := (v.str[byteIdx] >> bit) & 1
	if bitValue != 0 {
		v.str[byteIdx] |= 1 << bit
	} else {
		v.str[byteIdx] &^= 1 << bit
	}

	return int(old), nil
}

// GetBit returns the bit at offset, treating any byte beyond the string's
// length as 0.
func (s *Store) GetBit(key []byte, offset int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindString)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	byteIdx, bit := bitOffset(offset)
	if byteIdx >= len(v.str) {
		return 0, nil
	}
	return int((v.str[byteIdx] >> bit) & 1), nil
}

// BitCount returns the population count of key's string value restricted
// to the inclusive byte range [start,end] (or the whole string if both are
// nil), negative indices counted from the end.
func (s *Store) BitCount(key []byte, start, end *int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindString)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	data := v.str
	if start != nil && end != nil {
		lo, hi, inRange := normalizeRange(*start, *end, len(data))
		if !inRange {
			return 0, nil
		}
		data = data[lo:hi]
	}

	count := 0
	for _, b := range data {
		count += popcount(b)
	}
	return count, nil
}

func popcount(b byte) int {
	n := 0
	for b != 0 {
		n += int(b & 1)
		b >>= 1
	}
	return n
}

// BitOpKind enumerates the BITOP variants.
type BitOpKind int

const (
	BitOpAnd BitOpKind = iota
	BitOpOr
	BitOpXor
	BitOpNot
)

// BitOp computes op over srcs (treating missing/absent sources as all
// zero bytes) and stores the result at dst, auto-deleting dst if the
// result is empty. BitOpNot requires exactly one source. The result length
// is the max source length, except NOT, whose result is the length of its
// single source.
func (s *Store) BitOp(op BitOpKind, dst []byte, srcs [][]byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if op == BitOpNot && len(srcs) != 1 {
		return 0, ErrInvalidValue
	}

	buffers := make([][]byte, len(srcs))
	maxLen := 0
	for i, src := range srcs {
		v, err, ok := s.getTyped(string(src), KindString)
		if err != nil {
			return 0, err
		}
		if ok {
			buffers[i] = v.str
		}
		if len(buffers[i]) > maxLen {
			maxLen = len(buffers[i])
		}
	}

	result := make([]byte, maxLen)

	switch op {
	case BitOpNot:
		src := buffers[0]
		for i := range result {
			result[i] = ^byteAt(src, i)
		}
	case BitOpAnd:
		for i := range result {
			b := byte(0xFF)
			allPresent := true
			for _, buf := range buffers {
				if i >= len(buf) {
					allPresent = false
					break
				}
				b &= buf[i]
			}
			if allPresent {
				result[i] = b
			}
			// a source shorter than maxLen forces that column to zero for
			// AND, which byte zero-value already gives us.
		}
	case BitOpOr:
		for i := range result {
			var b byte
			for _, buf := range buffers {
				b |= byteAt(buf, i)
			}
			result[i] = b
		}
	case BitOpXor:
		for i := range result {
			var b byte
			for _, buf := range buffers {
				b ^= byteAt(buf, i)
			}
			result[i] = b
		}
	}

	if len(result) == 0 {
		delete(s.data, string(dst))
		return 0, nil
	}

	s.data[string(dst)] = newStringValue(result)
	return len(result), nil
}

func byteAt(buf []byte, i int) byte {
	if i < len(buf) {
		return buf[i]
	}
	return 0
}
