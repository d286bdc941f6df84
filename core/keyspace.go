package core

import (
	"sync"
	"time"
)

// ExpireOption bits for SetExpiry, mirroring redis EXPIRE NX/XX/GT/LT flags.
type ExpireOption int

const (
	ExpireNX ExpireOption = 1 << iota
	ExpireXX
	ExpireGT
	ExpireLT
)

// Store is the in-memory keyspace: a mapping from byte-string key to a
// tagged value, guarded by a single coarse mutex (spec's primary
// concurrency model -- every operation is CPU-bound on in-memory data, so
// one lock avoids cross-shard ordering headaches for multi-key ops like
// RENAME, LMOVE, SMOVE and the set-algebra *STORE commands). Unlike the
// teacher's HashEngine/StorageHash, which use sync.RWMutex because their
// Items never expire on a read path, every lookup here can mutate the map
// (lazy expiration), so a plain Mutex is the correct fit.
type Store struct {
	mu   sync.Mutex
	data map[string]*value

	// now returns the current time in Unix milliseconds. Overridable in
	// tests so expiration can be driven deterministically.
	now func() int64
}

// New constructs an empty Store.
func New() *Store {
	return &Store{data: make(map[string]*value), now: nowMs}
}

func nowMs() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// getLive returns the live value for key, lazily evicting it first if it
// has expired. Must be called with s.mu held.
func (s *Store) getLive(key string) (*value, bool) {
	v, ok := s.data[key]
	if !ok {
		return nil, false
	}
	if v.isExpired(s.now()) {
		delete(s.data, key)
		return nil, false
	}
	return v, true
}

// getTyped returns the live value for key if it matches kind, ErrWrongType
// if it exists as a different kind, or (nil, nil, false) if absent. Must be
// called with s.mu held.
func (s *Store) getTyped(key string, kind Kind) (*value, error, bool) {
	v, ok := s.getLive(key)
	if !ok {
		return nil, nil, false
	}
	if v.kind != kind {
		return nil, ErrWrongType, true
	}
	return v, nil, true
}

// aggregateLen reports the element count of an aggregate value, used by the
// auto-delete-when-empty invariant.
func aggregateLen(v *value) int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindSet:
		return len(v.set)
	case KindHash:
		return len(v.hash)
	case KindZSet:
		return v.zset.Len()
	default:
		return 1
	}
}

// autoDeleteIfEmpty removes key if v is an aggregate left with zero
// elements, per the auto-delete invariant. Must be called with s.mu held.
func (s *Store) autoDeleteIfEmpty(key string, v *value) {
	switch v.kind {
	case KindList, KindSet, KindHash, KindZSet:
		if aggregateLen(v) == 0 {
			delete(s.data, key)
		}
	}
}

// Exists reports whether key holds a live value.
func (s *Store) Exists(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.getLive(key)
	return ok
}

// GetType returns the Kind of the value stored at key, or ok=false if
// absent or expired.
func (s *Store) GetType(key string) (kind Kind, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.getLive(key)
	if !ok {
		return 0, false
	}
	return v.kind, true
}

// Del removes the given keys, ignoring absent ones, and returns the count
// of keys that actually existed.
func (s *Store) Del(keys [][]byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, k := range keys {
		if _, ok := s.getLive(string(k)); ok {
			count++
			delete(s.data, string(k))
		}
	}
	return count
}

// DBSize returns the number of live keys. Expired entries are skipped in
// the count but not removed; they stay in the map until the next read of
// that key or an EvictExpired sweep.
func (s *Store) DBSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	for _, v := range s.data {
		if !v.isExpired(now) {
			count++
		}
	}
	return count
}

// FlushAll removes every key.
func (s *Store) FlushAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]*value)
}

// Keys returns copies of all live keys matching the glob pattern.
func (s *Store) Keys(pattern string) [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var result [][]byte
	for k, v := range s.data {
		if v.isExpired(now) {
			delete(s.data, k)
			continue
		}
		if globMatch(pattern, k) {
			result = append(result, []byte(k))
		}
	}
	return result
}

// EvictExpired sweeps the whole keyspace and removes every currently
// expired entry, two-phase (collect under the lock, then delete) so the
// map isn't mutated while being ranged over.
func (s *Store) EvictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var expired []string
	for k, v := range s.data {
		if v.isExpired(now) {
			expired = append(expired, k)
		}
	}
	for _, k := range expired {
		delete(s.data, k)
	}
	return len(expired)
}

// Touch updates nothing observable (no LRU/LFU model here) but reports how
// many of the given keys are live, same contract redis TOUCH exposes.
func (s *Store) Touch(keys [][]byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, k := range keys {
		if _, ok := s.getLive(string(k)); ok {
			count++
		}
	}
	return count
}

// Rename moves src's value to dst, overwriting dst unconditionally and
// preserving src's expiration. Fails with ErrNoSuchKey if src is absent or
// expired.
func (s *Store) Rename(src, dst []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.getLive(string(src))
	if !ok {
		return ErrNoSuchKey
	}

	delete(s.data, string(src))
	s.data[string(dst)] = v
	return nil
}

// RenameNX is Rename, but refuses if dst already exists and is live.
func (s *Store) RenameNX(src, dst []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.getLive(string(src))
	if !ok {
		return false, ErrNoSuchKey
	}
	if _, ok := s.getLive(string(dst)); ok {
		return false, nil
	}

	delete(s.data, string(src))
	s.data[string(dst)] = v
	return true, nil
}

// CopyKey deep-copies src's value to dst. If dst already holds a live value
// and replace is false, it fails silently and returns false.
func (s *Store) CopyKey(src, dst []byte, replace bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.getLive(string(src))
	if !ok {
		return false
	}

	if !replace {
		if _, ok := s.getLive(string(dst)); ok {
			return false
		}
	}

	s.data[string(dst)] = v.clone()
	return true
}

// SetExpiry sets or clears key's expiration. expiresAt is a Unix
// millisecond timestamp; a nil expiresAt with no option bits clears the
// expiration (PERSIST behavior). A key with no current expiration fails
// both GT and LT, since "no timeout" isn't comparable to a concrete
// deadline -- it never counts as +/-infinity here.
func (s *Store) SetExpiry(key []byte, expiresAt *int64, opts ExpireOption) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.getLive(string(key))
	if !ok {
		return false, ErrNoSuchKey
	}

	hasCurrent := v.expireAt != 0

	if opts&ExpireNX != 0 && hasCurrent {
		return false, nil
	}
	if opts&ExpireXX != 0 && !hasCurrent {
		return false, nil
	}
	if opts&(ExpireGT|ExpireLT) != 0 {
		if expiresAt == nil || !hasCurrent {
			return false, nil
		}
		if opts&ExpireGT != 0 && *expiresAt <= v.expireAt {
			return false, nil
		}
		if opts&ExpireLT != 0 && *expiresAt >= v.expireAt {
			return false, nil
		}
	}

	if expiresAt == nil {
		v.expireAt = 0
	} else {
		v.expireAt = *expiresAt
	}
	return true, nil
}

// GetTtlMs returns -2 if key is absent/expired, -1 if it has no
// expiration, or the remaining milliseconds until expiration.
func (s *Store) GetTtlMs(key []byte) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.getLive(string(key))
	if !ok {
		return -2
	}
	if v.expireAt == 0 {
		return -1
	}
	return v.expireAt - s.now()
}
