package core

import (
	"math/rand"
	"sort"
)

// zsetEntry is one (member, score) pair as it appears in a sortedSet's
// rank-ordered sequence.
type zsetEntry struct {
	member string
	score  float64
}

// less orders entries by score, then lexically by member, matching
// redis's ZSET tie-breaking rule.
func (a zsetEntry) less(b zsetEntry) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return a.member < b.member
}

// sortedSet is the dual-view structure backing ZSET values: a
// member->score map for O(1) ZSCORE/ZINCRBY lookups, plus a score-ordered
// sequence of entries searched with binary search for O(log n) rank and
// range queries. Every mutation keeps both views in sync.
type sortedSet struct {
	scores map[string]float64
	seq    []zsetEntry
}

func newSortedSet() *sortedSet {
	return &sortedSet{scores: make(map[string]float64)}
}

func (z *sortedSet) Len() int {
	return len(z.seq)
}

func (z *sortedSet) clone() *sortedSet {
	out := &sortedSet{
		scores: make(map[string]float64, len(z.scores)),
		seq:    make([]zsetEntry, len(z.seq)),
	}
	for m, sc := range z.scores {
		out.scores[m] = sc
	}
	copy(out.seq, z.seq)
	return out
}

// searchEntry returns the index of entry within z.seq via binary search
// on the (score, member) ordering, and whether it was found.
func (z *sortedSet) searchEntry(entry zsetEntry) (idx int, found bool) {
	idx = sort.Search(len(z.seq), func(i int) bool {
		return !z.seq[i].less(entry)
	})
	found = idx < len(z.seq) && z.seq[idx].member == entry.member && z.seq[idx].score == entry.score
	return idx, found
}

// insertionIndex returns the index at which entry belongs in the sorted
// sequence, per the (score, member) ordering.
func (z *sortedSet) insertionIndex(entry zsetEntry) int {
	return sort.Search(len(z.seq), func(i int) bool {
		return !z.seq[i].less(entry)
	})
}

// removeMember deletes member from both views if present.
func (z *sortedSet) removeMember(member string) {
	score, ok := z.scores[member]
	if !ok {
		return
	}
	delete(z.scores, member)

	idx, found := z.searchEntry(zsetEntry{member: member, score: score})
	if found {
		z.seq = append(z.seq[:idx], z.seq[idx+1:]...)
	}
}

// setScore sets member's score unconditionally, updating both views and
// reporting whether member was newly added.
func (z *sortedSet) setScore(member string, score float64) (added bool) {
	if old, exists := z.scores[member]; exists {
		if old == score {
			return false
		}
		idx, found := z.searchEntry(zsetEntry{member: member, score: old})
		if found {
			z.seq = append(z.seq[:idx], z.seq[idx+1:]...)
		}
	} else {
		added = true
	}

	z.scores[member] = score
	entry := zsetEntry{member: member, score: score}
	idx := z.insertionIndex(entry)
	z.seq = append(z.seq, zsetEntry{})
	copy(z.seq[idx+1:], z.seq[idx:])
	z.seq[idx] = entry
	return added
}

// rank returns member's 0-based rank in ascending score order, or
// ok=false if absent.
func (z *sortedSet) rank(member string) (rank int, ok bool) {
	score, exists := z.scores[member]
	if !exists {
		return 0, false
	}
	idx, found := z.searchEntry(zsetEntry{member: member, score: score})
	if !found {
		return 0, false
	}
	return idx, true
}

// rangeByIndex returns copies of the entries in the inclusive rank range
// [start,end] (negative indices counted from the end), optionally
// reversed.
func (z *sortedSet) rangeByIndex(start, end int, reverse bool) []zsetEntry {
	lo, hi, ok := normalizeRange(start, end, len(z.seq))
	if !ok {
		return nil
	}

	result := make([]zsetEntry, hi-lo)
	copy(result, z.seq[lo:hi])
	if reverse {
		for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
			result[i], result[j] = result[j], result[i]
		}
	}
	return result
}

// rangeByScore returns copies of every entry with minScore <= score <=
// maxScore (exclusivity flags applied at the boundary), in ascending
// order, limited to count entries starting at offset (count < 0 means no
// limit).
func (z *sortedSet) rangeByScore(minScore, maxScore float64, minExcl, maxExcl bool, offset, count int) []zsetEntry {
	lo := sort.Search(len(z.seq), func(i int) bool {
		return z.seq[i].score > minScore || (z.seq[i].score == minScore && !minExcl)
	})
	hi := sort.Search(len(z.seq), func(i int) bool {
		return z.seq[i].score > maxScore || (z.seq[i].score == maxScore && maxExcl)
	})

	if lo >= hi {
		return nil
	}
	window := z.seq[lo:hi]

	if offset < 0 {
		offset = 0
	}
	if offset >= len(window) {
		return nil
	}
	window = window[offset:]

	if count >= 0 && count < len(window) {
		window = window[:count]
	}

	result := make([]zsetEntry, len(window))
	copy(result, window)
	return result
}

// popExtreme removes and returns up to count entries from the low (min)
// or high (max) end of the sequence.
func (z *sortedSet) popExtreme(count int, max bool) []zsetEntry {
	if count < 0 {
		count = 0
	}
	if count > len(z.seq) {
		count = len(z.seq)
	}
	if count == 0 {
		return nil
	}

	var popped []zsetEntry
	if max {
		start := len(z.seq) - count
		popped = append([]zsetEntry(nil), z.seq[start:]...)
		z.seq = z.seq[:start]
		for i, j := 0, len(popped)-1; i < j; i, j = i+1, j-1 {
			popped[i], popped[j] = popped[j], popped[i]
		}
	} else {
		popped = append([]zsetEntry(nil), z.seq[:count]...)
		z.seq = z.seq[count:]
	}
	for _, e := range popped {
		delete(z.scores, e.member)
	}
	return popped
}

// randMembers returns up to |count| entries, the same two-sided contract
// as SRandMember: a non-negative count returns distinct members, a
// negative one returns exactly -count entries with possible repeats.
func (z *sortedSet) randMembers(count int) []zsetEntry {
	if len(z.seq) == 0 {
		return nil
	}
	if count >= 0 {
		if count > len(z.seq) {
			count = len(z.seq)
		}
		return append([]zsetEntry(nil), z.seq[:count]...)
	}
	n := -count
	result := make([]zsetEntry, n)
	for i := 0; i < n; i++ {
		result[i] = z.seq[rand.Intn(len(z.seq))]
	}
	return result
}

// ZAddOption bits for ZAdd, mirroring redis ZADD NX/XX/GT/LT/CH/INCR flags.
type ZAddOption int

const (
	ZAddNX ZAddOption = 1 << iota
	ZAddXX
	ZAddGT
	ZAddLT
	ZAddCH
	ZAddIncr
)

// ZAdd adds or updates (member, score) pairs in key's sorted set per opts,
// creating the set if absent. It returns the count of members added (or,
// with ZAddCH, added-or-changed); with ZAddIncr it instead returns the
// resulting score of the single member supplied, or nil if the update was
// rejected by NX/XX/GT/LT.
func (s *Store) ZAdd(key []byte, opts ZAddOption, members []string, scores []float64) (count int, incrResult *float64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.getLive(string(key))
	var z *sortedSet
	if !ok {
		if opts&ZAddXX != 0 {
			if opts&ZAddIncr != 0 {
				return 0, nil, nil
			}
			return 0, nil, nil
		}
		z = newSortedSet()
		s.data[string(key)] = newZSetValue(z)
	} else {
		if v.kind != KindZSet {
			return 0, nil, ErrWrongType
		}
		z = v.zset
	}

	added, changed := 0, 0
	for i, m := range members {
		score := scores[i]
		old, exists := z.scores[m]

		if opts&ZAddIncr != 0 {
			score = old + score
		}

		rejected := opts&ZAddNX != 0 && exists
		rejected = rejected || (opts&ZAddXX != 0 && !exists)
		rejected = rejected || (exists && opts&ZAddGT != 0 && score <= old)
		rejected = rejected || (exists && opts&ZAddLT != 0 && score >= old)
		if rejected {
			if opts&ZAddIncr != 0 {
				return 0, nil, nil
			}
			continue
		}

		if z.setScore(m, score) {
			added++
			changed++
		} else if old != score {
			changed++
		}

		if opts&ZAddIncr != 0 {
			s.autoDeleteIfEmpty(string(key), &value{kind: KindZSet, zset: z})
			return 0, &score, nil
		}
	}

	s.autoDeleteIfEmpty(string(key), &value{kind: KindZSet, zset: z})
	if opts&ZAddCH != 0 {
		return changed, nil, nil
	}
	return added, nil, nil
}

// ZRem removes members from key's sorted set, auto-deleting key if it
// becomes empty, and returns the count actually removed.
func (s *Store) ZRem(key []byte, members []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindZSet)
	if err != nil || !ok {
		return 0, err
	}

	removed := 0
	for _, m := range members {
		if _, exists := v.zset.scores[m]; exists {
			v.zset.removeMember(m)
			removed++
		}
	}

	s.autoDeleteIfEmpty(string(key), v)
	return removed, nil
}

// ZScore returns member's score in key's sorted set, or ok=false if
// either is absent.
func (s *Store) ZScore(key []byte, member string) (score float64, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, found := s.getTyped(string(key), KindZSet)
	if err != nil || !found {
		return 0, false, err
	}
	score, ok = v.zset.scores[member]
	return score, ok, nil
}

// ZMScore returns each member's score, or ok=false for members absent
// from the set (or the whole set absent).
func (s *Store) ZMScore(key []byte, members []string) ([]float64, []bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, found := s.getTyped(string(key), KindZSet)
	if err != nil {
		return nil, nil, err
	}

	scores := make([]float64, len(members))
	oks := make([]bool, len(members))
	if !found {
		return scores, oks, nil
	}
	for i, m := range members {
		scores[i], oks[i] = v.zset.scores[m]
	}
	return scores, oks, nil
}

// ZCard returns the cardinality of key's sorted set, or 0 if absent.
func (s *Store) ZCard(key []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindZSet)
	if err != nil || !ok {
		return 0, err
	}
	return v.zset.Len(), nil
}

// ZRange returns copies of the members+scores in the inclusive rank range
// [start,end] (negative counted from the end), in ascending or descending
// score order.
func (s *Store) ZRange(key []byte, start, end int, reverse bool) ([]string, []float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindZSet)
	if err != nil || !ok {
		return nil, nil, err
	}

	entries := v.zset.rangeByIndex(start, end, reverse)
	members := make([]string, len(entries))
	scores := make([]float64, len(entries))
	for i, e := range entries {
		members[i] = e.member
		scores[i] = e.score
	}
	return members, scores, nil
}

// ZRangeByScore returns members+scores with minScore <= score <= maxScore
// (minExcl/maxExcl make either boundary exclusive), ascending, windowed
// by offset/count (count < 0 means unlimited). reverse yields the matches
// in descending order and applies offset/count to that order, matching
// ZREVRANGEBYSCORE; minScore/maxScore keep their roles either way (the
// caller swaps ZREVRANGEBYSCORE's max-first arguments).
func (s *Store) ZRangeByScore(key []byte, minScore, maxScore float64, minExcl, maxExcl bool, offset, count int, reverse bool) ([]string, []float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindZSet)
	if err != nil || !ok {
		return nil, nil, err
	}

	entries := v.zset.rangeByScore(minScore, maxScore, minExcl, maxExcl, 0, -1)
	if reverse {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(entries) {
		offset = len(entries)
	}
	entries = entries[offset:]
	if count >= 0 && count < len(entries) {
		entries = entries[:count]
	}

	members := make([]string, len(entries))
	scores := make([]float64, len(entries))
	for i, e := range entries {
		members[i] = e.member
		scores[i] = e.score
	}
	return members, scores, nil
}

// ZCount returns the number of members with minScore <= score <= maxScore.
func (s *Store) ZCount(key []byte, minScore, maxScore float64, minExcl, maxExcl bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindZSet)
	if err != nil || !ok {
		return 0, err
	}
	return len(v.zset.rangeByScore(minScore, maxScore, minExcl, maxExcl, 0, -1)), nil
}

// ZRank returns member's 0-based rank (ascending, or descending if
// reverse), or ok=false if absent.
func (s *Store) ZRank(key []byte, member string, reverse bool) (rank int, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, found := s.getTyped(string(key), KindZSet)
	if err != nil || !found {
		return 0, false, err
	}

	r, exists := v.zset.rank(member)
	if !exists {
		return 0, false, nil
	}
	if reverse {
		r = v.zset.Len() - 1 - r
	}
	return r, true, nil
}

// ZIncrBy adds delta to member's score (default 0), creating the set
// and/or member if absent, and returns the new score.
func (s *Store) ZIncrBy(key []byte, member string, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.getLive(string(key))
	var z *sortedSet
	if !ok {
		z = newSortedSet()
		s.data[string(key)] = newZSetValue(z)
	} else {
		if v.kind != KindZSet {
			return 0, ErrWrongType
		}
		z = v.zset
	}

	newScore := z.scores[member] + delta
	z.setScore(member, newScore)
	return newScore, nil
}

// ZPop removes and returns up to count entries from the low (min) or
// high (max) end of key's sorted set, auto-deleting key if it becomes
// empty.
func (s *Store) ZPop(key []byte, count int, max bool) ([]string, []float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindZSet)
	if err != nil || !ok {
		return nil, nil, err
	}

	entries := v.zset.popExtreme(count, max)
	s.autoDeleteIfEmpty(string(key), v)

	members := make([]string, len(entries))
	scores := make([]float64, len(entries))
	for i, e := range entries {
		members[i] = e.member
		scores[i] = e.score
	}
	return members, scores, nil
}

// ZRandMember returns up to |count| members+scores from key's sorted
// set, with the same two-sided contract as SRandMember.
func (s *Store) ZRandMember(key []byte, count int) ([]string, []float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindZSet)
	if err != nil || !ok {
		return nil, nil, err
	}

	entries := v.zset.randMembers(count)
	members := make([]string, len(entries))
	scores := make([]float64, len(entries))
	for i, e := range entries {
		members[i] = e.member
		scores[i] = e.score
	}
	return members, scores, nil
}
