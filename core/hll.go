package core

import (
	"math"
	"math/bits"

	"github.com/OneOfOne/xxhash"
)

// HyperLogLog parameters: 14-bit register index, 16384 registers. Each
// register is 6 bits wide but stored as a whole byte for simplicity
// (avoids a packed-bitfield codec in exchange for 4x memory -- a fine
// trade for the keyspace sizes this store targets).
const (
	hllPrecision = 14
	hllRegisterCount = 1 << hllPrecision // 16384
)

// hllRegisters is the register array backing a KindHLL value.
type hllRegisters struct {
	regs [hllRegisterCount]byte
}

func newHLLRegisters() *hllRegisters {
	return &hllRegisters{}
}

func (h *hllRegisters) clone() *hllRegisters {
	out := &hllRegisters{}
	out.regs = h.regs
	return out
}

// indexAndRank hashes member with xxhash and splits the 64-bit digest
// into a 14-bit register index and the rank (1 + count of leading zero
// bits) of the remaining 50 bits.
func indexAndRank(member []byte) (index int, rank byte) {
	hash := xxhash.Checksum64(member)
	index = int(hash & (hllRegisterCount - 1))

	rest := hash >> hllPrecision
	// Count leading zeros within the remaining 64-hllPrecision bits: shift
	// rest up so its top bit aligns with bit 63, then use bits.LeadingZeros64.
	rest <<= hllPrecision
	lz := bits.LeadingZeros64(rest)
	if rest == 0 {
		lz = 64 - hllPrecision
	}
	return index, byte(lz + 1)
}

// Add registers member's hash, returning whether any register's value
// increased (i.e. the estimate may have changed).
func (h *hllRegisters) Add(member []byte) bool {
	index, rank := indexAndRank(member)
	if h.regs[index] < rank {
		h.regs[index] = rank
		return true
	}
	return false
}

// Count estimates the cardinality of everything Add has ever registered,
// using the standard HLL estimator with small-range linear-counting
// correction.
func (h *hllRegisters) Count() int64 {
	m := float64(hllRegisterCount)
	alpha := 0.7213 / (1 + 1.079/m)

	sumInv := 0.0
	zeros := 0
	for _, r := range h.regs {
		sumInv += 1.0 / math.Pow(2, float64(r))
		if r == 0 {
			zeros++
		}
	}

	estimate := alpha * m * m / sumInv

	// Small-range correction: linear counting when the raw estimate is
	// comfortably below the regime where the standard estimator is
	// accurate and there are still empty registers to exploit.
	if estimate <= 2.5*m && zeros > 0 {
		estimate = m * math.Log(m/float64(zeros))
	}

	return int64(estimate + 0.5)
}

// Merge folds other into h by taking the per-register maximum, the
// standard HLL union operation (PFMERGE).
func (h *hllRegisters) Merge(other *hllRegisters) {
	for i, r := range other.regs {
		if r > h.regs[i] {
			h.regs[i] = r
		}
	}
}

// hllOrCreate returns the live HLL value at key, creating an empty one
// if absent, or ErrWrongType if key holds a non-HLL value. Must be
// called with s.mu held.
func (s *Store) hllOrCreate(key string) (*value, error) {
	v, ok := s.getLive(key)
	if !ok {
		v = newHLLValue(newHLLRegisters())
		s.data[key] = v
		return v, nil
	}
	if v.kind != KindHLL {
		return nil, ErrWrongType
	}
	return v, nil
}

// PFAdd registers elements into key's HyperLogLog, creating it if
// absent, and reports whether the internal representation was altered
// (i.e. at least one element changed the cardinality estimate).
func (s *Store) PFAdd(key []byte, elements [][]byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.hllOrCreate(string(key))
	if err != nil {
		return false, err
	}

	changed := false
	for _, e := range elements {
		if v.hll.Add(e) {
			changed = true
		}
	}
	return changed, nil
}

// PFCount estimates the cardinality of the union of the given keys' HLLs
// (a single key is the common case).
func (s *Store) PFCount(keys [][]byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(keys) == 1 {
		v, err, ok := s.getTyped(string(keys[0]), KindHLL)
		if err != nil || !ok {
			return 0, err
		}
		return v.hll.Count(), nil
	}

	merged := newHLLRegisters()
	for _, k := range keys {
		v, err, ok := s.getTyped(string(k), KindHLL)
		if err != nil {
			return 0, err
		}
		if ok {
			merged.Merge(v.hll)
		}
	}
	return merged.Count(), nil
}

// PFMerge merges the HLLs at srcs (dst included, if it already holds
// one) into dst, creating dst if absent.
func (s *Store) PFMerge(dst []byte, srcs [][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := newHLLRegisters()
	if v, ok := s.getLive(string(dst)); ok {
		if v.kind != KindHLL {
			return ErrWrongType
		}
		merged.Merge(v.hll)
	}

	for _, src := range srcs {
		v, err, ok := s.getTyped(string(src), KindHLL)
		if err != nil {
			return err
		}
		if ok {
			merged.Merge(v.hll)
		}
	}

	s.data[string(dst)] = newHLLValue(merged)
	return nil
}
