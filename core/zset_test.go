package core

import (
	"github.com/go-test/deep"
	"testing"
)

func TestStore_ZAddAndTieBreaking(t *testing.T) {
	s, _ := newTestStore(1000)

	n, _, err := s.ZAdd([]byte("k"), 0, []string{"b", "a", "c"}, []float64{1, 1, 2})
	if err != nil || n != 3 {
		t.Fatalf("ZAdd() = (%d, %v), want (3, nil)", n, err)
	}

	members, scores, err := s.ZRange([]byte("k"), 0, -1, false)
	if err != nil {
		t.Fatalf("ZRange() err = %v", err)
	}
	// equal scores break ties lexically by member: a(1) before b(1) before c(2).
	if diff := deep.Equal(members, []string{"a", "b", "c"}); diff != nil {
		t.Errorf("ZRange() members diff: %v", diff)
	}
	if diff := deep.Equal(scores, []float64{1, 1, 2}); diff != nil {
		t.Errorf("ZRange() scores diff: %v", diff)
	}
}

func TestStore_ZAddNXXXGTLT(t *testing.T) {
	s, _ := newTestStore(1000)
	s.ZAdd([]byte("k"), 0, []string{"a"}, []float64{5})

	// NX must not touch an existing member.
	n, _, err := s.ZAdd([]byte("k"), ZAddNX, []string{"a"}, []float64{10})
	if err != nil || n != 0 {
		t.Errorf("ZAdd(NX existing) = (%d, %v), want (0, nil)", n, err)
	}
	score, _, _ := s.ZScore([]byte("k"), "a")
	if score != 5 {
		t.Errorf("score after rejected NX = %v, want 5", score)
	}

	// XX must not create a brand new member.
	n, _, err = s.ZAdd([]byte("k"), ZAddXX, []string{"new"}, []float64{1})
	if err != nil || n != 0 {
		t.Errorf("ZAdd(XX new member) = (%d, %v), want (0, nil)", n, err)
	}
	if _, ok, _ := s.ZScore([]byte("k"), "new"); ok {
		t.Errorf("XX must not create member")
	}

	// GT only applies the update if the new score is greater.
	n, _, err = s.ZAdd([]byte("k"), ZAddGT, []string{"a"}, []float64{3})
	if err != nil || n != 0 {
		t.Errorf("ZAdd(GT, lower score) = (%d, %v), want (0, nil)", n, err)
	}
	n, _, err = s.ZAdd([]byte("k"), ZAddGT|ZAddCH, []string{"a"}, []float64{9})
	if err != nil || n != 1 {
		t.Errorf("ZAdd(GT, higher score, CH) = (%d, %v), want (1, nil)", n, err)
	}
}

func TestStore_ZAddCH(t *testing.T) {
	s, _ := newTestStore(1000)
	s.ZAdd([]byte("k"), 0, []string{"a"}, []float64{1})

	// Without CH, an unchanged score reports 0 added.
	n, _, _ := s.ZAdd([]byte("k"), 0, []string{"a"}, []float64{2})
	if n != 0 {
		t.Errorf("ZAdd() without CH = %d, want 0 (changed, not added)", n)
	}

	n, _, _ = s.ZAdd([]byte("k"), ZAddCH, []string{"a"}, []float64{3})
	if n != 1 {
		t.Errorf("ZAdd() with CH = %d, want 1", n)
	}
}

func TestStore_ZIncrBy(t *testing.T) {
	s, _ := newTestStore(1000)
	score, err := s.ZIncrBy([]byte("k"), "a", 5)
	if err != nil || score != 5 {
		t.Fatalf("ZIncrBy() = (%v, %v), want (5, nil)", score, err)
	}
	score, err = s.ZIncrBy([]byte("k"), "a", -2)
	if err != nil || score != 3 {
		t.Errorf("ZIncrBy() = (%v, %v), want (3, nil)", score, err)
	}
}

func TestStore_ZRangeByScore(t *testing.T) {
	s, _ := newTestStore(1000)
	s.ZAdd([]byte("k"), 0, []string{"a", "b", "c", "d"}, []float64{1, 2, 3, 4})

	members, _, err := s.ZRangeByScore([]byte("k"), 2, 3, false, false, 0, -1, false)
	if err != nil {
		t.Fatalf("ZRangeByScore() err = %v", err)
	}
	if diff := deep.Equal(members, []string{"b", "c"}); diff != nil {
		t.Errorf("ZRangeByScore(2,3) diff: %v", diff)
	}

	members, _, err = s.ZRangeByScore([]byte("k"), 2, 3, true, false, 0, -1, false)
	if err != nil {
		t.Fatalf("ZRangeByScore() err = %v", err)
	}
	if diff := deep.Equal(members, []string{"c"}); diff != nil {
		t.Errorf("ZRangeByScore((2,3] diff: %v", diff)
	}
}

func TestStore_ZCount(t *testing.T) {
	s, _ := newTestStore(1000)
	s.ZAdd([]byte("k"), 0, []string{"a", "b", "c"}, []float64{1, 2, 3})

	n, err := s.ZCount([]byte("k"), 1, 2, false, false)
	if err != nil || n != 2 {
		t.Errorf("ZCount(1,2) = (%d, %v), want (2, nil)", n, err)
	}
}

func TestStore_ZRankReverse(t *testing.T) {
	s, _ := newTestStore(1000)
	s.ZAdd([]byte("k"), 0, []string{"a", "b", "c"}, []float64{1, 2, 3})

	rank, ok, err := s.ZRank([]byte("k"), "b", false)
	if err != nil || !ok || rank != 1 {
		t.Errorf("ZRank(b) = (%d, %v, %v), want (1, true, nil)", rank, ok, err)
	}
	rank, ok, err = s.ZRank([]byte("k"), "b", true)
	if err != nil || !ok || rank != 1 {
		t.Errorf("ZRevRank(b) = (%d, %v, %v), want (1, true, nil)", rank, ok, err)
	}
	rank, ok, err = s.ZRank([]byte("k"), "c", true)
	if err != nil || !ok || rank != 0 {
		t.Errorf("ZRevRank(c) = (%d, %v, %v), want (0, true, nil)", rank, ok, err)
	}
}

func TestStore_ZPopAutoDelete(t *testing.T) {
	s, _ := newTestStore(1000)
	s.ZAdd([]byte("k"), 0, []string{"a", "b"}, []float64{1, 2})

	members, scores, err := s.ZPop([]byte("k"), 1, false)
	if err != nil {
		t.Fatalf("ZPop() err = %v", err)
	}
	if diff := deep.Equal(members, []string{"a"}); diff != nil {
		t.Errorf("ZPop(min) diff: %v", diff)
	}
	if diff := deep.Equal(scores, []float64{1}); diff != nil {
		t.Errorf("ZPop(min) scores diff: %v", diff)
	}

	s.ZPop([]byte("k"), 1, false)
	if s.Exists("k") {
		t.Errorf("zset should be auto-deleted once empty")
	}
}
