package session

import (
	"testing"
	"time"

	"github.com/jkindrix/shopquote/internal/clock"
)

func newTestStore(t *testing.T) (*Store[int], *clock.Mock) {
	t.Helper()
	mock := clock.NewMock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewStore[int](time.Hour, mock, nil), mock
}

func TestStorePutGetDelete(t *testing.T) {
	store, _ := newTestStore(t)
	k := Key{Tenant: "acme", SID: "s1"}

	if _, ok := store.Get(k); ok {
		t.Error("Get on empty store returned ok")
	}
	store.Put(k, 42)
	if v, ok := store.Get(k); !ok || v != 42 {
		t.Errorf("Get = (%d, %v), want (42, true)", v, ok)
	}
	store.Delete(k)
	if _, ok := store.Get(k); ok {
		t.Error("Get after Delete returned ok")
	}
}

func TestStoreTenantIsolation(t *testing.T) {
	store, _ := newTestStore(t)
	store.Put(Key{Tenant: "acme", SID: "s1"}, 1)
	store.Put(Key{Tenant: "other", SID: "s1"}, 2)

	if v, _ := store.Get(Key{Tenant: "acme", SID: "s1"}); v != 1 {
		t.Errorf("acme value = %d, want 1", v)
	}
	if v, _ := store.Get(Key{Tenant: "other", SID: "s1"}); v != 2 {
		t.Errorf("other value = %d, want 2", v)
	}
}

func TestStoreExpiry(t *testing.T) {
	store, mock := newTestStore(t)
	k := Key{Tenant: "acme", SID: "s1"}
	store.Put(k, 7)

	mock.Advance(59 * time.Minute)
	if _, ok := store.Get(k); !ok {
		t.Fatal("entry expired before TTL")
	}

	mock.Advance(2 * time.Minute)
	if _, ok := store.Get(k); ok {
		t.Fatal("entry alive past TTL")
	}
	if store.Len() != 0 {
		t.Errorf("Len = %d after expired Get, want 0", store.Len())
	}
}

func TestStoreSweep(t *testing.T) {
	store, mock := newTestStore(t)
	store.Put(Key{Tenant: "acme", SID: "old"}, 1)
	mock.Advance(45 * time.Minute)
	store.Put(Key{Tenant: "acme", SID: "new"}, 2)
	mock.Advance(30 * time.Minute)

	if removed := store.Sweep(); removed != 1 {
		t.Errorf("Sweep removed %d, want 1", removed)
	}
	if _, ok := store.Get(Key{Tenant: "acme", SID: "new"}); !ok {
		t.Error("young entry swept")
	}
}

func TestStoreTake(t *testing.T) {
	store, _ := newTestStore(t)
	k := Key{Tenant: "acme", SID: "s1"}
	store.Put(k, 9)

	if v, ok := store.Take(k); !ok || v != 9 {
		t.Errorf("Take = (%d, %v), want (9, true)", v, ok)
	}
	if _, ok := store.Get(k); ok {
		t.Error("value still present after Take")
	}
	if _, ok := store.Take(k); ok {
		t.Error("second Take returned ok")
	}
}

func TestStoreUpdate(t *testing.T) {
	store, mock := newTestStore(t)
	k := Key{Tenant: "acme", SID: "s1"}

	store.Update(k, func(v int, ok bool) (int, bool) {
		if ok {
			t.Error("Update saw existing value on empty store")
		}
		return 1, true
	})
	if v, _ := store.Get(k); v != 1 {
		t.Errorf("value = %d, want 1", v)
	}

	store.Update(k, func(v int, ok bool) (int, bool) {
		return v + 10, true
	})
	if v, _ := store.Get(k); v != 11 {
		t.Errorf("value = %d, want 11", v)
	}

	// Updates keep the original creation time for TTL purposes.
	mock.Advance(59 * time.Minute)
	store.Update(k, func(v int, ok bool) (int, bool) { return v, true })
	mock.Advance(2 * time.Minute)
	if _, ok := store.Get(k); ok {
		t.Error("Update refreshed TTL, want original creation time kept")
	}

	store.Put(k, 5)
	store.Update(k, func(v int, ok bool) (int, bool) { return 0, false })
	if _, ok := store.Get(k); ok {
		t.Error("value still present after Update delete")
	}
}
