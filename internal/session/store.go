package session

import (
	"sync"
	"time"

	"resumeats/internal/errors"

	"github.com/google/uuid"
)

// Store keeps sessions in memory and evicts those idle longer than the TTL
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*State
	lastSeen  map[string]time.Time
	ttl       time.Duration
	now       func() time.Time
	done      chan struct{}
	closeOnce sync.Once
	logger    *errors.Logger
}

// NewStore starts the cleanup goroutine; stop it with Close.
// cleanupInterval <= 0 disables background eviction.
func NewStore(ttl, cleanupInterval time.Duration, logger *errors.Logger) *Store {
	s := &Store{
		sessions: make(map[string]*State),
		lastSeen: make(map[string]time.Time),
		ttl:      ttl,
		now:      time.Now,
		done:     make(chan struct{}),
		logger:   logger,
	}

	if cleanupInterval > 0 {
		go s.cleanupRoutine(cleanupInterval)
	}
	return s
}

// Create registers a new session with a random ID
func (s *Store) Create() *State {
	st := NewState(uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[st.ID()] = st
	s.lastSeen[st.ID()] = s.now()
	return st
}

// Get returns a live session and refreshes its idle timer
func (s *Store) Get(id string) (*State, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[id]
	if !ok {
		return nil, false
	}

	now := s.now()
	if s.expired(id, now) {
		s.deleteLocked(id)
		return nil, false
	}
	s.lastSeen[id] = now
	return st, true
}

// GetOrCreate returns the session for id, or a new one when id is unknown,
// malformed or expired. created reports which.
func (s *Store) GetOrCreate(id string) (st *State, created bool) {
	if st, ok := s.Get(id); ok {
		return st, false
	}
	return s.Create(), true
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(id)
}

// Len returns the number of sessions held, expired ones included until the
// next cleanup.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) deleteLocked(id string) {
	delete(s.sessions, id)
	delete(s.lastSeen, id)
}

func (s *Store) expired(id string, now time.Time) bool {
	return s.ttl > 0 && now.Sub(s.lastSeen[id]) > s.ttl
}

func (s *Store) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.done:
			return
		}
	}
}

// cleanup removes sessions idle longer than the TTL
func (s *Store) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := 0
	for id := range s.sessions {
		if s.expired(id, now) {
			s.deleteLocked(id)
			evicted++
		}
	}

	if s.logger != nil && evicted > 0 {
		s.logger.Debug("Session cleanup completed",
			"evicted", evicted,
			"remaining_sessions", len(s.sessions))
	}
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (s *Store) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
