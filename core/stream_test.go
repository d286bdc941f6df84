package core

import (
	"github.com/go-test/deep"
	"testing"
)

func TestStore_XAddAutoIDAndXLen(t *testing.T) {
	s, clock := newTestStore(1000)

	id1, err := s.XAdd([]byte("k"), nil, []string{"f"}, [][]byte{[]byte("v1")})
	if err != nil {
		t.Fatalf("XAdd() err = %v", err)
	}
	if id1.Ms != 1000 || id1.Seq != 0 {
		t.Errorf("XAdd() id = %v, want {1000 0}", id1)
	}

	id2, err := s.XAdd([]byte("k"), nil, []string{"f"}, [][]byte{[]byte("v2")})
	if err != nil {
		t.Fatalf("XAdd() err = %v", err)
	}
	if id2.Ms != 1000 || id2.Seq != 1 {
		t.Errorf("XAdd() second id = %v, want {1000 1} (seq bump within same ms)", id2)
	}

	*clock = 2000
	id3, err := s.XAdd([]byte("k"), nil, []string{"f"}, [][]byte{[]byte("v3")})
	if err != nil || id3.Ms != 2000 || id3.Seq != 0 {
		t.Errorf("XAdd() third id = %v, want {2000 0}", id3)
	}

	n, err := s.XLen([]byte("k"))
	if err != nil || n != 3 {
		t.Errorf("XLen() = (%d, %v), want (3, nil)", n, err)
	}
}

func TestStore_XAddExplicitIDMustIncrease(t *testing.T) {
	s, _ := newTestStore(1000)
	id := StreamID{Ms: 5, Seq: 0}
	if _, err := s.XAdd([]byte("k"), &id, []string{"f"}, [][]byte{[]byte("v")}); err != nil {
		t.Fatalf("XAdd() first err = %v", err)
	}

	smaller := StreamID{Ms: 5, Seq: 0}
	if _, err := s.XAdd([]byte("k"), &smaller, []string{"f"}, [][]byte{[]byte("v")}); err != ErrStreamIDTooSmall {
		t.Errorf("XAdd() with equal id err = %v, want ErrStreamIDTooSmall", err)
	}
}

func TestStore_XRangeAndXRevRange(t *testing.T) {
	s, _ := newTestStore(1000)
	for i := 0; i < 3; i++ {
		id := StreamID{Ms: int64(i + 1), Seq: 0}
		s.XAdd([]byte("k"), &id, []string{"n"}, [][]byte{[]byte(string(rune('a' + i)))})
	}

	entries, err := s.XRange([]byte("k"), StreamID{Ms: 0}, StreamID{Ms: 1 << 62}, -1)
	if err != nil {
		t.Fatalf("XRange() err = %v", err)
	}
	if len(entries) != 3 || entries[0].ID().Ms != 1 || entries[2].ID().Ms != 3 {
		t.Errorf("XRange() order wrong: %+v", entries)
	}

	rev, err := s.XRevRange([]byte("k"), StreamID{Ms: 0}, StreamID{Ms: 1 << 62}, -1)
	if err != nil {
		t.Fatalf("XRevRange() err = %v", err)
	}
	if len(rev) != 3 || rev[0].ID().Ms != 3 || rev[2].ID().Ms != 1 {
		t.Errorf("XRevRange() order wrong: %+v", rev)
	}
}

func TestStore_XDelAndXTrim(t *testing.T) {
	s, _ := newTestStore(1000)
	var ids []StreamID
	for i := 0; i < 5; i++ {
		id := StreamID{Ms: int64(i + 1), Seq: 0}
		s.XAdd([]byte("k"), &id, []string{"n"}, [][]byte{[]byte("v")})
		ids = append(ids, id)
	}

	n, err := s.XDel([]byte("k"), []StreamID{ids[0], ids[2]})
	if err != nil || n != 2 {
		t.Fatalf("XDel() = (%d, %v), want (2, nil)", n, err)
	}
	if n, _ := s.XLen([]byte("k")); n != 3 {
		t.Errorf("XLen() after XDel = %d, want 3", n)
	}

	removed, err := s.XTrim([]byte("k"), 1)
	if err != nil || removed != 2 {
		t.Fatalf("XTrim() = (%d, %v), want (2, nil)", removed, err)
	}
	if n, _ := s.XLen([]byte("k")); n != 1 {
		t.Errorf("XLen() after XTrim = %d, want 1", n)
	}
}

func TestStore_XGroupCreateAndReadGroup(t *testing.T) {
	s, _ := newTestStore(1000)

	if err := s.XGroupCreate([]byte("k"), "g", StreamID{}, true); err != nil {
		t.Fatalf("XGroupCreate() err = %v", err)
	}
	if err := s.XGroupCreate([]byte("k"), "g", StreamID{}, true); err != ErrGroupExists {
		t.Errorf("XGroupCreate() duplicate err = %v, want ErrGroupExists", err)
	}

	id1 := StreamID{Ms: 1}
	id2 := StreamID{Ms: 2}
	s.XAdd([]byte("k"), &id1, []string{"f"}, [][]byte{[]byte("v1")})
	s.XAdd([]byte("k"), &id2, []string{"f"}, [][]byte{[]byte("v2")})

	entries, err := s.XReadGroup([]byte("k"), "g", "consumer-1", false, -1)
	if err != nil {
		t.Fatalf("XReadGroup() err = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("XReadGroup() = %d entries, want 2", len(entries))
	}

	summaries, err := s.XPending([]byte("k"), "g")
	if err != nil {
		t.Fatalf("XPending() err = %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("XPending() = %d entries, want 2", len(summaries))
	}

	acked, err := s.XAck([]byte("k"), "g", []StreamID{id1})
	if err != nil || acked != 1 {
		t.Fatalf("XAck() = (%d, %v), want (1, nil)", acked, err)
	}
	summaries, _ = s.XPending([]byte("k"), "g")
	if len(summaries) != 1 || !summaries[0].ID.equal(id2) {
		t.Errorf("XPending() after ack = %+v, want just id2", summaries)
	}
}

func TestStore_XReadGroupReplaysOwnPending(t *testing.T) {
	s, _ := newTestStore(1000)
	s.XGroupCreate([]byte("k"), "g", StreamID{}, true)

	id1 := StreamID{Ms: 1}
	s.XAdd([]byte("k"), &id1, []string{"f"}, [][]byte{[]byte("v")})

	if _, err := s.XReadGroup([]byte("k"), "g", "c1", false, -1); err != nil {
		t.Fatalf("XReadGroup() first pass err = %v", err)
	}

	replayed, err := s.XReadGroup([]byte("k"), "g", "c1", true, -1)
	if err != nil {
		t.Fatalf("XReadGroup(replayOwn) err = %v", err)
	}
	if diff := deep.Equal(len(replayed), 1); diff != nil {
		t.Errorf("XReadGroup(replayOwn) count diff: %v", diff)
	}

	otherConsumer, err := s.XReadGroup([]byte("k"), "g", "c2", true, -1)
	if err != nil {
		t.Fatalf("XReadGroup(replayOwn, other consumer) err = %v", err)
	}
	if len(otherConsumer) != 0 {
		t.Errorf("XReadGroup(replayOwn) for a different consumer = %d entries, want 0", len(otherConsumer))
	}
}

func TestStore_XInfoStream(t *testing.T) {
	s, _ := newTestStore(1000)
	id := StreamID{Ms: 1}
	s.XAdd([]byte("k"), &id, []string{"f"}, [][]byte{[]byte("v")})
	s.XGroupCreate([]byte("k"), "g", StreamID{}, true)

	info, err := s.XInfoStream([]byte("k"))
	if err != nil {
		t.Fatalf("XInfoStream() err = %v", err)
	}
	if info.Length != 1 || info.Groups != 1 || !info.LastID.equal(id) {
		t.Errorf("XInfoStream() = %+v, want Length=1 Groups=1 LastID=%v", info, id)
	}
}

func TestStore_XDelDoesNotAutoDeleteStream(t *testing.T) {
	s, _ := newTestStore(1000)
	id := StreamID{Ms: 1}
	s.XAdd([]byte("k"), &id, []string{"f"}, [][]byte{[]byte("v")})
	s.XDel([]byte("k"), []StreamID{id})

	if !s.Exists("k") {
		t.Errorf("empty stream must persist, unlike the other aggregates")
	}
}
