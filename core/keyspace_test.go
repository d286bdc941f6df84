package core

import (
	"sort"

	"github.com/go-test/deep"
	"testing"
)

// newTestStore returns a Store with a deterministic, manually advanced
// clock, the same pattern used for every expiration-sensitive test in this
// file: real time.Now never enters a table-driven assertion.
func newTestStore(startMs int64) (*Store, *int64) {
	clock := startMs
	s := New()
	s.now = func() int64 { return clock }
	return s, &clock
}

func TestStore_ExistsDelDBSize(t *testing.T) {
	s, _ := newTestStore(1000)
	s.Set([]byte("a"), []byte("1"), nil)
	s.Set([]byte("b"), []byte("2"), nil)

	if !s.Exists("a") {
		t.Errorf("expected key a to exist")
	}
	if s.Exists("missing") {
		t.Errorf("expected missing key to not exist")
	}
	if got := s.DBSize(); got != 2 {
		t.Errorf("DBSize() = %d, want 2", got)
	}

	if n := s.Del([][]byte{[]byte("a"), []byte("missing")}); n != 1 {
		t.Errorf("Del() = %d, want 1", n)
	}
	if got := s.DBSize(); got != 1 {
		t.Errorf("DBSize() after Del = %d, want 1", got)
	}
}

func TestStore_GetType(t *testing.T) {
	s, _ := newTestStore(1000)
	s.Set([]byte("str"), []byte("x"), nil)
	s.Push([]byte("list"), true, false, [][]byte{[]byte("x")})
	s.SAdd([]byte("set"), [][]byte{[]byte("x")})

	tests := []struct {
		key      string
		wantKind Kind
		wantOk   bool
	}{
		{"str", KindString, true},
		{"list", KindList, true},
		{"set", KindSet, true},
		{"missing", 0, false},
	}
	for _, v := range tests {
		kind, ok := s.GetType(v.key)
		if ok != v.wantOk || (ok && kind != v.wantKind) {
			t.Errorf("GetType(%q) = (%v, %v), want (%v, %v)", v.key, kind, ok, v.wantKind, v.wantOk)
		}
	}
}

func TestStore_FlushAll(t *testing.T) {
	s, _ := newTestStore(1000)
	s.Set([]byte("a"), []byte("1"), nil)
	s.Set([]byte("b"), []byte("2"), nil)
	s.FlushAll()
	if got := s.DBSize(); got != 0 {
		t.Errorf("DBSize() after FlushAll = %d, want 0", got)
	}
}

func TestStore_Keys(t *testing.T) {
	s, _ := newTestStore(1000)
	s.Set([]byte("foo"), []byte("1"), nil)
	s.Set([]byte("foobar"), []byte("2"), nil)
	s.Set([]byte("baz"), []byte("3"), nil)

	got := s.Keys("foo*")
	var gotStrs []string
	for _, k := range got {
		gotStrs = append(gotStrs, string(k))
	}
	sort.Strings(gotStrs)

	want := []string{"foo", "foobar"}
	if diff := deep.Equal(gotStrs, want); diff != nil {
		t.Errorf("Keys(foo*) diff: %v", diff)
	}
}

func TestStore_ExpirationLaziness(t *testing.T) {
	s, clock := newTestStore(1000)
	expireAt := int64(2000)
	s.Set([]byte("k"), []byte("v"), &expireAt)

	if !s.Exists("k") {
		t.Fatalf("expected key to exist before expiration")
	}
	*clock = 2000
	if s.Exists("k") {
		t.Errorf("expected key to be expired once clock reaches expireAt")
	}
	if got := s.DBSize(); got != 0 {
		t.Errorf("DBSize() after lazy expiry = %d, want 0", got)
	}
}

func TestStore_EvictExpired(t *testing.T) {
	s, clock := newTestStore(1000)
	expireAt := int64(1500)
	s.Set([]byte("expiring"), []byte("v"), &expireAt)
	s.Set([]byte("forever"), []byte("v"), nil)

	*clock = 1500
	if n := s.EvictExpired(); n != 1 {
		t.Errorf("EvictExpired() = %d, want 1", n)
	}
	if got := s.DBSize(); got != 1 {
		t.Errorf("DBSize() after sweep = %d, want 1", got)
	}
}

func TestStore_RenameAndRenameNX(t *testing.T) {
	s, _ := newTestStore(1000)
	s.Set([]byte("src"), []byte("v"), nil)

	if err := s.Rename([]byte("missing"), []byte("dst")); err != ErrNoSuchKey {
		t.Errorf("Rename(missing) err = %v, want ErrNoSuchKey", err)
	}

	if err := s.Rename([]byte("src"), []byte("dst")); err != nil {
		t.Fatalf("Rename() err = %v, want nil", err)
	}
	if s.Exists("src") || !s.Exists("dst") {
		t.Errorf("Rename() did not move key correctly")
	}

	s.Set([]byte("another"), []byte("v2"), nil)
	ok, err := s.RenameNX([]byte("another"), []byte("dst"))
	if err != nil {
		t.Fatalf("RenameNX() err = %v", err)
	}
	if ok {
		t.Errorf("RenameNX() = true, want false when dst exists")
	}
}

func TestStore_CopyKey(t *testing.T) {
	s, _ := newTestStore(1000)
	s.Set([]byte("src"), []byte("v1"), nil)
	s.Set([]byte("dst"), []byte("v2"), nil)

	if ok := s.CopyKey([]byte("src"), []byte("dst"), false); ok {
		t.Errorf("CopyKey without replace = true, want false when dst exists")
	}
	if ok := s.CopyKey([]byte("src"), []byte("dst"), true); !ok {
		t.Errorf("CopyKey with replace = false, want true")
	}
	val, ok, _ := s.Get([]byte("dst"))
	if !ok || string(val) != "v1" {
		t.Errorf("Get(dst) after CopyKey = (%q, %v), want (v1, true)", val, ok)
	}

	// mutating the source afterward must not affect the copy.
	s.Set([]byte("src"), []byte("mutated"), nil)
	val, _, _ = s.Get([]byte("dst"))
	if string(val) != "v1" {
		t.Errorf("CopyKey aliased storage with source; got %q, want v1", val)
	}
}

func TestStore_SetExpiryOptions(t *testing.T) {
	s, clock := newTestStore(1000)
	s.Set([]byte("k"), []byte("v"), nil)

	// GT/LT against a key with no current expiration: both fail, since
	// "no timeout" isn't comparable to a concrete deadline.
	at := int64(5000)
	if ok, err := s.SetExpiry([]byte("k"), &at, ExpireGT); err != nil || ok {
		t.Errorf("SetExpiry GT on no-ttl key = (%v, %v), want (false, nil)", ok, err)
	}
	if ok, err := s.SetExpiry([]byte("k"), &at, ExpireLT); err != nil || ok {
		t.Errorf("SetExpiry LT on no-ttl key = (%v, %v), want (false, nil)", ok, err)
	}

	// NX succeeds when there is no current expiration.
	if ok, err := s.SetExpiry([]byte("k"), &at, ExpireNX); err != nil || !ok {
		t.Fatalf("SetExpiry NX = (%v, %v), want (true, nil)", ok, err)
	}

	// A second NX would now be rejected, but XX succeeds since a current
	// expiration now exists.
	later := int64(6000)
	if ok, err := s.SetExpiry([]byte("k"), &later, ExpireXX); err != nil || !ok {
		t.Errorf("SetExpiry XX with existing ttl = (%v, %v), want (true, nil)", ok, err)
	}

	// GT with a smaller deadline than current must fail.
	smaller := int64(1000)
	if ok, err := s.SetExpiry([]byte("k"), &smaller, ExpireGT); err != nil || ok {
		t.Errorf("SetExpiry GT with smaller deadline = (%v, %v), want (false, nil)", ok, err)
	}

	if ttl := s.GetTtlMs([]byte("k")); ttl != 6000-*clock {
		t.Errorf("GetTtlMs() = %d, want %d", ttl, 6000-*clock)
	}

	// PERSIST clears expiration.
	if ok, err := s.SetExpiry([]byte("k"), nil, 0); err != nil || !ok {
		t.Fatalf("SetExpiry persist = (%v, %v), want (true, nil)", ok, err)
	}
	if ttl := s.GetTtlMs([]byte("k")); ttl != -1 {
		t.Errorf("GetTtlMs() after persist = %d, want -1", ttl)
	}
}

func TestStore_GetTtlMsAbsentKey(t *testing.T) {
	s, _ := newTestStore(1000)
	if ttl := s.GetTtlMs([]byte("nope")); ttl != -2 {
		t.Errorf("GetTtlMs(missing) = %d, want -2", ttl)
	}
}

func TestStore_Touch(t *testing.T) {
	s, _ := newTestStore(1000)
	s.Set([]byte("a"), []byte("1"), nil)
	n := s.Touch([][]byte{[]byte("a"), []byte("missing")})
	if n != 1 {
		t.Errorf("Touch() = %d, want 1", n)
	}
}
