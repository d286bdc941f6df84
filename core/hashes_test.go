package core

import (
	"sort"

	"github.com/go-test/deep"
	"testing"
)

func TestStore_HSetHGetHDel(t *testing.T) {
	s, _ := newTestStore(1000)

	n, err := s.HSet([]byte("k"), map[string][]byte{"f1": []byte("v1"), "f2": []byte("v2")})
	if err != nil || n != 2 {
		t.Fatalf("HSet() = (%d, %v), want (2, nil)", n, err)
	}

	n, err = s.HSet([]byte("k"), map[string][]byte{"f1": []byte("updated"), "f3": []byte("v3")})
	if err != nil || n != 1 {
		t.Fatalf("HSet(overwrite+new) = (%d, %v), want (1, nil)", n, err)
	}

	val, ok, err := s.HGet([]byte("k"), "f1")
	if err != nil || !ok || string(val) != "updated" {
		t.Errorf("HGet(f1) = (%q, %v, %v), want (updated, true, nil)", val, ok, err)
	}

	removed, err := s.HDel([]byte("k"), []string{"f1", "f2", "f3"})
	if err != nil || removed != 3 {
		t.Fatalf("HDel(all) = (%d, %v), want (3, nil)", removed, err)
	}
	if s.Exists("k") {
		t.Errorf("hash should be auto-deleted once empty")
	}
}

func TestStore_HSetNX(t *testing.T) {
	s, _ := newTestStore(1000)

	ok, err := s.HSetNX([]byte("k"), "f", []byte("v1"))
	if err != nil || !ok {
		t.Fatalf("HSetNX(new field) = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = s.HSetNX([]byte("k"), "f", []byte("v2"))
	if err != nil || ok {
		t.Errorf("HSetNX(existing field) = (%v, %v), want (false, nil)", ok, err)
	}
	val, _, _ := s.HGet([]byte("k"), "f")
	if string(val) != "v1" {
		t.Errorf("HGet(f) = %q, want v1 (HSETNX must not overwrite)", val)
	}
}

func TestStore_HGetAllKeysVals(t *testing.T) {
	s, _ := newTestStore(1000)
	s.HSet([]byte("k"), map[string][]byte{"a": []byte("1"), "b": []byte("2")})

	keys, err := s.HKeys([]byte("k"))
	if err != nil {
		t.Fatalf("HKeys() err = %v", err)
	}
	wantKeys := []string{"a", "b"}
	gotKeys := keys
	sortAndCompare(t, gotKeys, wantKeys)

	vals, err := s.HVals([]byte("k"))
	if err != nil {
		t.Fatalf("HVals() err = %v", err)
	}
	sortAndCompare(t, toStrings(vals), []string{"1", "2"})

	all, err := s.HGetAll([]byte("k"))
	if err != nil {
		t.Fatalf("HGetAll() err = %v", err)
	}
	if diff := deep.Equal(string(all["a"]), "1"); diff != nil {
		t.Errorf("HGetAll()[a] diff: %v", diff)
	}
}

func sortAndCompare(t *testing.T, got, want []string) {
	t.Helper()
	gotCopy := append([]string(nil), got...)
	sort.Strings(gotCopy)
	wantCopy := append([]string(nil), want...)
	sort.Strings(wantCopy)
	if diff := deep.Equal(gotCopy, wantCopy); diff != nil {
		t.Errorf("diff: %v", diff)
	}
}

func TestStore_HIncrBy(t *testing.T) {
	s, _ := newTestStore(1000)

	n, err := s.HIncrBy([]byte("k"), "count", 5)
	if err != nil || n != 5 {
		t.Fatalf("HIncrBy() = (%d, %v), want (5, nil)", n, err)
	}
	n, err = s.HIncrBy([]byte("k"), "count", -2)
	if err != nil || n != 3 {
		t.Errorf("HIncrBy() = (%d, %v), want (3, nil)", n, err)
	}

	s.HSet([]byte("k"), map[string][]byte{"text": []byte("abc")})
	if _, err := s.HIncrBy([]byte("k"), "text", 1); err != ErrNotInteger {
		t.Errorf("HIncrBy() on non-numeric field err = %v, want ErrNotInteger", err)
	}
}
