package session

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStore(ttl, 0, nil)
	s.now = clock.Now
	return s, clock
}

func TestStoreCreateGetDelete(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	defer s.Close()

	st := s.Create()
	got, ok := s.Get(st.ID())
	if !ok || got != st {
		t.Fatal("created session not found")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	s.Delete(st.ID())
	if _, ok := s.Get(st.ID()); ok {
		t.Error("deleted session still found")
	}
}

func TestStoreGetOrCreate(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	defer s.Close()

	st, created := s.GetOrCreate("")
	if !created {
		t.Fatal("empty id should create a session")
	}

	again, created := s.GetOrCreate(st.ID())
	if created || again != st {
		t.Error("known id should return the existing session")
	}

	_, created = s.GetOrCreate("../../etc/passwd")
	if !created {
		t.Error("malformed id should create a new session")
	}
}

func TestStoreEvictsIdleSessions(t *testing.T) {
	s, clock := newTestStore(30 * time.Minute)
	defer s.Close()

	idle := s.Create()
	active := s.Create()

	clock.Advance(20 * time.Minute)
	if _, ok := s.Get(active.ID()); !ok {
		t.Fatal("active session expired early")
	}

	clock.Advance(15 * time.Minute)
	s.cleanup()

	if _, ok := s.Get(idle.ID()); ok {
		t.Error("idle session should have been evicted")
	}
	if _, ok := s.Get(active.ID()); !ok {
		t.Error("recently used session should survive cleanup")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStoreGetExpiresLazily(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	defer s.Close()

	st := s.Create()
	clock.Advance(2 * time.Minute)

	if _, ok := s.Get(st.ID()); ok {
		t.Error("expired session returned before cleanup ran")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestStoreCloseIsIdempotent(t *testing.T) {
	s := NewStore(time.Minute, time.Millisecond, nil)
	s.Close()
	s.Close()
}
