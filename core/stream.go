package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// StreamID is a (ms, seq) strictly-increasing stream entry identifier.
type StreamID struct {
	Ms  int64
	Seq int64
}

func (id StreamID) String() string {
	return fmt.Sprintf("%d-%d", id.Ms, id.Seq)
}

func (id StreamID) less(o StreamID) bool {
	if id.Ms != o.Ms {
		return id.Ms < o.Ms
	}
	return id.Seq < o.Seq
}

func (id StreamID) equal(o StreamID) bool {
	return id.Ms == o.Ms && id.Seq == o.Seq
}

// ParseStreamID parses a "ms-seq" or bare "ms" id string. seqDefault
// supplies the sequence number when the input omits it.
func ParseStreamID(s string, seqDefault int64) (StreamID, error) {
	parts := strings.SplitN(s, "-", 2)
	ms, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return StreamID{}, ErrInvalidStreamID
	}
	if len(parts) == 1 {
		return StreamID{Ms: ms, Seq: seqDefault}, nil
	}
	seq, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return StreamID{}, ErrInvalidStreamID
	}
	return StreamID{Ms: ms, Seq: seq}, nil
}

// streamEntry is one XADD'd record: an id plus its field/value pairs, in
// insertion order (redis preserves field order; so do we).
type streamEntry struct {
	id     StreamID
	fields []string
	values [][]byte
}

// ID returns the entry's stream id.
func (e streamEntry) ID() StreamID { return e.id }

// Fields returns the entry's field names, in insertion order.
func (e streamEntry) Fields() []string { return e.fields }

// Values returns the entry's values, aligned by index with Fields().
func (e streamEntry) Values() [][]byte { return e.values }

func (e streamEntry) clone() streamEntry {
	out := streamEntry{id: e.id, fields: append([]string(nil), e.fields...), values: make([][]byte, len(e.values))}
	for i, v := range e.values {
		out.values[i] = append([]byte(nil), v...)
	}
	return out
}

// pendingEntry records an unacknowledged delivery to a consumer group.
type pendingEntry struct {
	id            StreamID
	consumer      string
	deliveryCount int64
	deliveredAtMs int64
}

// consumerGroup tracks a named group's last-delivered cursor and pending
// entries list (PEL), keyed by entry id.
type consumerGroup struct {
	lastDelivered StreamID
	pending       map[StreamID]*pendingEntry
}

func newConsumerGroup(start StreamID) *consumerGroup {
	return &consumerGroup{lastDelivered: start, pending: make(map[StreamID]*pendingEntry)}
}

func (g *consumerGroup) clone() *consumerGroup {
	out := &consumerGroup{lastDelivered: g.lastDelivered, pending: make(map[StreamID]*pendingEntry, len(g.pending))}
	for id, p := range g.pending {
		cp := *p
		out.pending[id] = &cp
	}
	return out
}

// streamLog is the value backing a KindStream key: an append-only,
// id-ordered entry log plus its consumer groups.
type streamLog struct {
	entries []streamEntry
	lastID  StreamID
	groups  map[string]*consumerGroup
}

func newStreamLog() *streamLog {
	return &streamLog{groups: make(map[string]*consumerGroup)}
}

func (sl *streamLog) clone() *streamLog {
	out := &streamLog{
		entries: make([]streamEntry, len(sl.entries)),
		lastID:  sl.lastID,
		groups:  make(map[string]*consumerGroup, len(sl.groups)),
	}
	for i, e := range sl.entries {
		out.entries[i] = e.clone()
	}
	for name, g := range sl.groups {
		out.groups[name] = g.clone()
	}
	return out
}

// indexOf returns the index of the entry with id, or -1.
func (sl *streamLog) indexOf(id StreamID) int {
	i := sort.Search(len(sl.entries), func(i int) bool {
		return !sl.entries[i].id.less(id)
	})
	if i < len(sl.entries) && sl.entries[i].id.equal(id) {
		return i
	}
	return -1
}

// streamOrCreate returns the live stream value at key, creating an empty
// one if absent, or ErrWrongType if key holds a non-stream value. Must
// be called with s.mu held.
func (s *Store) streamOrCreate(key string) (*value, error) {
	v, ok := s.getLive(key)
	if !ok {
		v = newStreamValue(newStreamLog())
		s.data[key] = v
		return v, nil
	}
	if v.kind != KindStream {
		return nil, ErrWrongType
	}
	return v, nil
}

// XAdd appends a new entry to key's stream. A nil id requests
// auto-generation ("*"): ms = current time, seq = 0 unless that exact ms
// already has entries, in which case seq continues from the last one; if
// the clock reads earlier than the last id's ms, that ms is reused with
// the next seq. An explicit id must be strictly greater than the stream's
// last id.
func (s *Store) XAdd(key []byte, id *StreamID, fields []string, values [][]byte) (StreamID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.streamOrCreate(string(key))
	if err != nil {
		return StreamID{}, err
	}
	sl := v.stream

	var newID StreamID
	if id == nil {
		ms := s.now()
		if ms == sl.lastID.Ms {
			newID = StreamID{Ms: ms, Seq: sl.lastID.Seq + 1}
		} else if ms > sl.lastID.Ms {
			newID = StreamID{Ms: ms, Seq: 0}
		} else {
			newID = StreamID{Ms: sl.lastID.Ms, Seq: sl.lastID.Seq + 1}
		}
	} else {
		newID = *id
		if len(sl.entries) > 0 || sl.lastID != (StreamID{}) {
			if !sl.lastID.less(newID) {
				return StreamID{}, ErrStreamIDTooSmall
			}
		}
	}

	entry := streamEntry{id: newID, fields: append([]string(nil), fields...), values: make([][]byte, len(values))}
	for i, val := range values {
		entry.values[i] = append([]byte(nil), val...)
	}
	sl.entries = append(sl.entries, entry)
	sl.lastID = newID

	return newID, nil
}

// XLen returns the entry count of key's stream, or 0 if absent.
func (s *Store) XLen(key []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindStream)
	if err != nil || !ok {
		return 0, err
	}
	return len(v.stream.entries), nil
}

// xRangeEntries returns copies of entries in [start,end] inclusive
// (by id), in ascending or descending order, limited to count (count < 0
// means unlimited). Must be called with s.mu held.
func (sl *streamLog) xRangeEntries(start, end StreamID, count int, reverse bool) []streamEntry {
	lo := sort.Search(len(sl.entries), func(i int) bool { return !sl.entries[i].id.less(start) })
	hi := sort.Search(len(sl.entries), func(i int) bool { return end.less(sl.entries[i].id) })
	if lo >= hi {
		return nil
	}

	window := sl.entries[lo:hi]
	result := make([]streamEntry, len(window))
	for i, e := range window {
		result[i] = e.clone()
	}
	if reverse {
		for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
			result[i], result[j] = result[j], result[i]
		}
	}
	if count >= 0 && count < len(result) {
		result = result[:count]
	}
	return result
}

// XRange returns entries with start <= id <= end, ascending, capped at
// count (negative means unlimited).
func (s *Store) XRange(key []byte, start, end StreamID, count int) ([]streamEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindStream)
	if err != nil || !ok {
		return nil, err
	}
	return v.stream.xRangeEntries(start, end, count, false), nil
}

// XRevRange is XRange in descending order (start and end still the low
// and high bounds respectively, as redis's XREVRANGE signature expects
// them reversed at the call site).
func (s *Store) XRevRange(key []byte, start, end StreamID, count int) ([]streamEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindStream)
	if err != nil || !ok {
		return nil, err
	}
	return v.stream.xRangeEntries(start, end, count, true), nil
}

// XDel removes entries by id from key's stream, returning the count
// actually removed. A stream never auto-deletes when its entry log is
// empty (XLEN 0 is a valid, persistent stream, unlike the other
// aggregates).
func (s *Store) XDel(key []byte, ids []StreamID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindStream)
	if err != nil || !ok {
		return 0, err
	}

	removed := 0
	for _, id := range ids {
		if idx := v.stream.indexOf(id); idx >= 0 {
			v.stream.entries = append(v.stream.entries[:idx], v.stream.entries[idx+1:]...)
			removed++
		}
	}
	return removed, nil
}

// XTrim keeps only the maxLen most recent entries of key's stream
// (MAXLEN semantics; approximate trimming is not modeled), returning the
// count removed.
func (s *Store) XTrim(key []byte, maxLen int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindStream)
	if err != nil || !ok {
		return 0, err
	}

	if len(v.stream.entries) <= maxLen {
		return 0, nil
	}
	removed := len(v.stream.entries) - maxLen
	v.stream.entries = v.stream.entries[removed:]
	return removed, nil
}

// XGroupCreate creates consumer group name on key's stream, starting
// delivery from start (typically the stream's current last id, or the
// zero id for "$" / "0"). Fails with ErrGroupExists if already present.
func (s *Store) XGroupCreate(key []byte, name string, start StreamID, mkStream bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.getLive(string(key))
	if !ok {
		if !mkStream {
			return ErrNoSuchKey
		}
		var err error
		v, err = s.streamOrCreate(string(key))
		if err != nil {
			return err
		}
	}
	if v.kind != KindStream {
		return ErrWrongType
	}

	if _, exists := v.stream.groups[name]; exists {
		return ErrGroupExists
	}
	v.stream.groups[name] = newConsumerGroup(start)
	return nil
}

// XReadGroup reads up to count undelivered entries (id ">") or replays
// the consumer's own pending entries (id "0"/"0-0") for group/consumer
// on key's stream.
func (s *Store) XReadGroup(key []byte, group, consumer string, replayOwn bool, count int) ([]streamEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindStream)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoSuchKey
	}

	g, exists := v.stream.groups[group]
	if !exists {
		return nil, ErrNoGroup
	}

	if replayOwn {
		var ids []StreamID
		for id, p := range g.pending {
			if p.consumer == consumer {
				ids = append(ids, id)
			}
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].less(ids[j]) })

		var result []streamEntry
		for _, id := range ids {
			if count >= 0 && len(result) >= count {
				break
			}
			if idx := v.stream.indexOf(id); idx >= 0 {
				result = append(result, v.stream.entries[idx].clone())
			}
		}
		return result, nil
	}

	lo := sort.Search(len(v.stream.entries), func(i int) bool {
		return g.lastDelivered.less(v.stream.entries[i].id)
	})

	var result []streamEntry
	now := s.now()
	for i := lo; i < len(v.stream.entries) && (count < 0 || len(result) < count); i++ {
		e := v.stream.entries[i]
		result = append(result, e.clone())
		g.lastDelivered = e.id
		g.pending[e.id] = &pendingEntry{id: e.id, consumer: consumer, deliveryCount: 1, deliveredAtMs: now}
	}

	return result, nil
}

// XAck acknowledges (removes from the pending entries list) the given
// ids for group on key's stream, returning the count actually
// acknowledged.
func (s *Store) XAck(key []byte, group string, ids []StreamID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindStream)
	if err != nil || !ok {
		return 0, err
	}
	g, exists := v.stream.groups[group]
	if !exists {
		return 0, ErrNoGroup
	}

	acked := 0
	for _, id := range ids {
		if _, pending := g.pending[id]; pending {
			delete(g.pending, id)
			acked++
		}
	}
	return acked, nil
}

// PendingSummary is one row of XPENDING's per-entry detail view.
type PendingSummary struct {
	ID            StreamID
	Consumer      string
	IdleMs        int64
	DeliveryCount int64
}

// XPending returns the pending entries list for group on key's stream.
func (s *Store) XPending(key []byte, group string) ([]PendingSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindStream)
	if err != nil || !ok {
		return nil, err
	}
	g, exists := v.stream.groups[group]
	if !exists {
		return nil, ErrNoGroup
	}

	now := s.now()
	result := make([]PendingSummary, 0, len(g.pending))
	for _, p := range g.pending {
		result = append(result, PendingSummary{
			ID:            p.id,
			Consumer:      p.consumer,
			IdleMs:        now - p.deliveredAtMs,
			DeliveryCount: p.deliveryCount,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID.less(result[j].ID) })
	return result, nil
}

// StreamInfo is XINFO STREAM's summary view.
type StreamInfo struct {
	Length    int
	LastID    StreamID
	Groups    int
}

// XInfoStream summarizes key's stream.
func (s *Store) XInfoStream(key []byte) (StreamInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err, ok := s.getTyped(string(key), KindStream)
	if err != nil || !ok {
		return StreamInfo{}, err
	}
	return StreamInfo{Length: len(v.stream.entries), LastID: v.stream.lastID, Groups: len(v.stream.groups)}, nil
}
