package core

import (
	"sort"

	"github.com/go-test/deep"
	"testing"
)

func sortedStrings(bs [][]byte) []string {
	ss := toStrings(bs)
	sort.Strings(ss)
	return ss
}

func TestStore_SAddSRemAutoDelete(t *testing.T) {
	s, _ := newTestStore(1000)

	n, err := s.SAdd([]byte("k"), bsl("a", "b", "a"))
	if err != nil || n != 2 {
		t.Fatalf("SAdd() = (%d, %v), want (2, nil)", n, err)
	}
	if card, _ := s.SCard([]byte("k")); card != 2 {
		t.Errorf("SCard() = %d, want 2", card)
	}

	n, err = s.SRem([]byte("k"), bsl("a", "missing"))
	if err != nil || n != 1 {
		t.Fatalf("SRem() = (%d, %v), want (1, nil)", n, err)
	}
	n, err = s.SRem([]byte("k"), bsl("b"))
	if err != nil || n != 1 {
		t.Fatalf("SRem(last) = (%d, %v), want (1, nil)", n, err)
	}
	if s.Exists("k") {
		t.Errorf("set should be auto-deleted once empty")
	}
}

func TestStore_SIsMemberAndSMIsMember(t *testing.T) {
	s, _ := newTestStore(1000)
	s.SAdd([]byte("k"), bsl("a", "b"))

	ok, err := s.SIsMember([]byte("k"), []byte("a"))
	if err != nil || !ok {
		t.Errorf("SIsMember(a) = (%v, %v), want (true, nil)", ok, err)
	}

	got, err := s.SMIsMember([]byte("k"), bsl("a", "z"))
	if err != nil {
		t.Fatalf("SMIsMember() err = %v", err)
	}
	if diff := deep.Equal(got, []bool{true, false}); diff != nil {
		t.Errorf("SMIsMember() diff: %v", diff)
	}
}

func TestStore_SMove(t *testing.T) {
	s, _ := newTestStore(1000)
	s.SAdd([]byte("src"), bsl("a", "b"))
	s.SAdd([]byte("dst"), bsl("c"))

	ok, err := s.SMove([]byte("src"), []byte("dst"), []byte("a"))
	if err != nil || !ok {
		t.Fatalf("SMove() = (%v, %v), want (true, nil)", ok, err)
	}

	ok, err = s.SMove([]byte("src"), []byte("dst"), []byte("not-there"))
	if err != nil || ok {
		t.Errorf("SMove(missing member) = (%v, %v), want (false, nil)", ok, err)
	}

	dstMembers, _ := s.SMembers([]byte("dst"))
	if diff := deep.Equal(sortedStrings(dstMembers), []string{"a", "c"}); diff != nil {
		t.Errorf("SMembers(dst) diff: %v", diff)
	}
}

func TestStore_SetAlgebra(t *testing.T) {
	s, _ := newTestStore(1000)
	s.SAdd([]byte("a"), bsl("1", "2", "3"))
	s.SAdd([]byte("b"), bsl("2", "3", "4"))

	union, _ := s.SCombine(SetUnion, [][]byte{[]byte("a"), []byte("b")})
	if diff := deep.Equal(sortedStrings(union), []string{"1", "2", "3", "4"}); diff != nil {
		t.Errorf("SUNION diff: %v", diff)
	}

	inter, _ := s.SCombine(SetInter, [][]byte{[]byte("a"), []byte("b")})
	if diff := deep.Equal(sortedStrings(inter), []string{"2", "3"}); diff != nil {
		t.Errorf("SINTER diff: %v", diff)
	}

	diffRes, _ := s.SCombine(SetDiff, [][]byte{[]byte("a"), []byte("b")})
	if diff := deep.Equal(sortedStrings(diffRes), []string{"1"}); diff != nil {
		t.Errorf("SDIFF diff: %v", diff)
	}
}

func TestStore_SCombineStoreEmptyResultDeletesDestination(t *testing.T) {
	s, _ := newTestStore(1000)
	s.SAdd([]byte("a"), bsl("1"))
	s.SAdd([]byte("b"), bsl("2"))
	s.SAdd([]byte("dst"), bsl("stale"))

	n, err := s.SCombineStore(SetInter, []byte("dst"), [][]byte{[]byte("a"), []byte("b")})
	if err != nil || n != 0 {
		t.Fatalf("SCombineStore(empty) = (%d, %v), want (0, nil)", n, err)
	}
	if s.Exists("dst") {
		t.Errorf("SCombineStore must delete dst when the result is empty")
	}
}

func TestStore_SInterCard(t *testing.T) {
	s, _ := newTestStore(1000)
	s.SAdd([]byte("a"), bsl("1", "2", "3"))
	s.SAdd([]byte("b"), bsl("1", "2", "4"))

	n, err := s.SInterCard([][]byte{[]byte("a"), []byte("b")}, 0)
	if err != nil || n != 2 {
		t.Fatalf("SInterCard(no limit) = (%d, %v), want (2, nil)", n, err)
	}
	n, err = s.SInterCard([][]byte{[]byte("a"), []byte("b")}, 1)
	if err != nil || n != 1 {
		t.Errorf("SInterCard(limit=1) = (%d, %v), want (1, nil)", n, err)
	}
}

func TestStore_SPop(t *testing.T) {
	s, _ := newTestStore(1000)
	s.SAdd([]byte("k"), bsl("a", "b", "c"))

	popped, err := s.SPop([]byte("k"), 3)
	if err != nil || len(popped) != 3 {
		t.Fatalf("SPop(all) = (%v, %v)", popped, err)
	}
	if s.Exists("k") {
		t.Errorf("set should be auto-deleted after SPop drains it")
	}
}
