package core

import (
	"github.com/go-test/deep"
	"testing"
)

func bsl(ss ...string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

func toStrings(bs [][]byte) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = string(b)
	}
	return out
}

func TestStore_PushPopOrderAndAutoDelete(t *testing.T) {
	s, _ := newTestStore(1000)

	n, err := s.Push([]byte("k"), false, false, bsl("a", "b", "c"))
	if err != nil || n != 3 {
		t.Fatalf("Push(right) = (%d, %v), want (3, nil)", n, err)
	}
	n, err = s.Push([]byte("k"), true, false, bsl("z"))
	if err != nil || n != 4 {
		t.Fatalf("Push(left) = (%d, %v), want (4, nil)", n, err)
	}

	got, err := s.LRange([]byte("k"), 0, -1)
	if err != nil {
		t.Fatalf("LRange() err = %v", err)
	}
	want := []string{"z", "a", "b", "c"}
	if diff := deep.Equal(toStrings(got), want); diff != nil {
		t.Errorf("LRange() diff: %v", diff)
	}

	popped, err := s.Pop([]byte("k"), true, 4)
	if err != nil || len(popped) != 4 {
		t.Fatalf("Pop(all) = (%v, %v)", popped, err)
	}
	if s.Exists("k") {
		t.Errorf("list key should be auto-deleted once empty")
	}
}

func TestStore_PushXOnAbsentKey(t *testing.T) {
	s, _ := newTestStore(1000)
	n, err := s.Push([]byte("missing"), false, true, bsl("a"))
	if err != nil || n != 0 {
		t.Errorf("Push(mustExist) on absent key = (%d, %v), want (0, nil)", n, err)
	}
	if s.Exists("missing") {
		t.Errorf("PUSHX must not create the key")
	}
}

func TestStore_LInsert(t *testing.T) {
	s, _ := newTestStore(1000)
	s.Push([]byte("k"), false, false, bsl("a", "c"))

	n, err := s.LInsert([]byte("k"), true, []byte("c"), []byte("b"))
	if err != nil || n != 3 {
		t.Fatalf("LInsert(before c) = (%d, %v), want (3, nil)", n, err)
	}
	got, _ := s.LRange([]byte("k"), 0, -1)
	if diff := deep.Equal(toStrings(got), []string{"a", "b", "c"}); diff != nil {
		t.Errorf("LRange() after LInsert diff: %v", diff)
	}

	n, err = s.LInsert([]byte("k"), true, []byte("missing-pivot"), []byte("x"))
	if err != nil || n != 0 {
		t.Errorf("LInsert(missing pivot) = (%d, %v), want (0, nil)", n, err)
	}

	n, err = s.LInsert([]byte("absent"), true, []byte("x"), []byte("y"))
	if err != nil || n != -1 {
		t.Errorf("LInsert(absent key) = (%d, %v), want (-1, nil)", n, err)
	}
}

func TestStore_LMove(t *testing.T) {
	s, _ := newTestStore(1000)
	s.Push([]byte("src"), false, false, bsl("a", "b", "c"))

	elem, ok, err := s.LMove([]byte("src"), []byte("dst"), false, true)
	if err != nil || !ok || string(elem) != "c" {
		t.Fatalf("LMove() = (%q, %v, %v), want (c, true, nil)", elem, ok, err)
	}
	got, _ := s.LRange([]byte("dst"), 0, -1)
	if diff := deep.Equal(toStrings(got), []string{"c"}); diff != nil {
		t.Errorf("LRange(dst) diff: %v", diff)
	}

	// Same key, srcLeft=false dstLeft=true rotates the list in place;
	// two rotations of a 2-element list return it to its original order.
	s.LMove([]byte("src"), []byte("src"), false, true)
	s.LMove([]byte("src"), []byte("src"), false, true)
	got, _ = s.LRange([]byte("src"), 0, -1)
	if diff := deep.Equal(toStrings(got), []string{"a", "b"}); diff != nil {
		t.Errorf("LRange(src) after rotation diff: %v", diff)
	}
}

func TestStore_LMoveWrongTypeDestinationLeavesSourceUntouched(t *testing.T) {
	s, _ := newTestStore(1000)
	s.Push([]byte("src"), false, false, bsl("a", "b"))
	s.Set([]byte("dst"), []byte("notalist"), nil)

	_, _, err := s.LMove([]byte("src"), []byte("dst"), false, true)
	if err != ErrWrongType {
		t.Fatalf("LMove() err = %v, want ErrWrongType", err)
	}

	got, _ := s.LRange([]byte("src"), 0, -1)
	if diff := deep.Equal(toStrings(got), []string{"a", "b"}); diff != nil {
		t.Errorf("src mutated despite wrong-type destination: %v", diff)
	}
}

func TestStore_LRemCounts(t *testing.T) {
	s, _ := newTestStore(1000)
	s.Push([]byte("k"), false, false, bsl("a", "x", "a", "x", "a"))

	n, err := s.LRem([]byte("k"), 2, []byte("a"))
	if err != nil || n != 2 {
		t.Fatalf("LRem(2, a) = (%d, %v), want (2, nil)", n, err)
	}
	got, _ := s.LRange([]byte("k"), 0, -1)
	if diff := deep.Equal(toStrings(got), []string{"x", "x", "a"}); diff != nil {
		t.Errorf("LRange() after LRem diff: %v", diff)
	}
}

func TestStore_LPos(t *testing.T) {
	s, _ := newTestStore(1000)
	s.Push([]byte("k"), false, false, bsl("a", "b", "a", "c", "a"))

	matched, err := s.LPos([]byte("k"), []byte("a"), 2, 1, 0)
	if diff := deep.Equal(matched, []int{2}); err != nil || diff != nil {
		t.Errorf("LPos(rank=2) = (%v, %v), want ([2], nil); diff: %v", matched, err, diff)
	}

	matched, err = s.LPos([]byte("k"), []byte("a"), -1, 1, 0)
	if diff := deep.Equal(matched, []int{4}); err != nil || diff != nil {
		t.Errorf("LPos(rank=-1) = (%v, %v), want ([4], nil); diff: %v", matched, err, diff)
	}

	// COUNT=0 returns every match, always ascending.
	matched, err = s.LPos([]byte("k"), []byte("a"), 1, 0, 0)
	if diff := deep.Equal(matched, []int{0, 2, 4}); err != nil || diff != nil {
		t.Errorf("LPos(count=0) = (%v, %v), want ([0 2 4], nil); diff: %v", matched, err, diff)
	}

	// Scanning from the tail with COUNT=0 still returns ascending order.
	matched, err = s.LPos([]byte("k"), []byte("a"), -1, 0, 0)
	if diff := deep.Equal(matched, []int{0, 2, 4}); err != nil || diff != nil {
		t.Errorf("LPos(rank=-1,count=0) = (%v, %v), want ([0 2 4], nil); diff: %v", matched, err, diff)
	}

	// MAXLEN bounds the scan: only the first 3 elements are examined.
	matched, err = s.LPos([]byte("k"), []byte("a"), 1, 0, 3)
	if diff := deep.Equal(matched, []int{0, 2}); err != nil || diff != nil {
		t.Errorf("LPos(maxlen=3) = (%v, %v), want ([0 2], nil); diff: %v", matched, err, diff)
	}

	matched, err = s.LPos([]byte("k"), []byte("z"), 1, 1, 0)
	if err != nil || len(matched) != 0 {
		t.Errorf("LPos(no match) = (%v, %v), want ([], nil)", matched, err)
	}
}
