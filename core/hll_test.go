package core

import (
	"fmt"
	"testing"
)

func TestStore_PFAddPFCount(t *testing.T) {
	s, _ := newTestStore(1000)

	var elems [][]byte
	for i := 0; i < 1000; i++ {
		elems = append(elems, []byte(fmt.Sprintf("member-%d", i)))
	}

	changed, err := s.PFAdd([]byte("k"), elems)
	if err != nil || !changed {
		t.Fatalf("PFAdd() = (%v, %v), want (true, nil)", changed, err)
	}

	n, err := s.PFCount([][]byte{[]byte("k")})
	if err != nil {
		t.Fatalf("PFCount() err = %v", err)
	}
	// HyperLogLog is an estimator; 1000 distinct elements should land
	// within a few percent of the true count.
	if n < 950 || n > 1050 {
		t.Errorf("PFCount() = %d, want close to 1000", n)
	}
}

func TestStore_PFAddDuplicateDoesNotChange(t *testing.T) {
	s, _ := newTestStore(1000)
	s.PFAdd([]byte("k"), [][]byte{[]byte("a")})
	changed, err := s.PFAdd([]byte("k"), [][]byte{[]byte("a")})
	if err != nil || changed {
		t.Errorf("PFAdd(duplicate) = (%v, %v), want (false, nil)", changed, err)
	}
}

func TestStore_PFMerge(t *testing.T) {
	s, _ := newTestStore(1000)
	s.PFAdd([]byte("a"), [][]byte{[]byte("x"), []byte("y")})
	s.PFAdd([]byte("b"), [][]byte{[]byte("y"), []byte("z")})

	if err := s.PFMerge([]byte("dst"), [][]byte{[]byte("a"), []byte("b")}); err != nil {
		t.Fatalf("PFMerge() err = %v", err)
	}

	n, err := s.PFCount([][]byte{[]byte("dst")})
	if err != nil {
		t.Fatalf("PFCount(dst) err = %v", err)
	}
	if n < 2 || n > 4 {
		t.Errorf("PFCount(dst) = %d, want close to 3 (x, y, z)", n)
	}
}

func TestStore_PFAddWrongType(t *testing.T) {
	s, _ := newTestStore(1000)
	s.Push([]byte("k"), true, false, bsl("a"))

	if _, err := s.PFAdd([]byte("k"), [][]byte{[]byte("x")}); err != ErrWrongType {
		t.Errorf("PFAdd() on list err = %v, want ErrWrongType", err)
	}
}
