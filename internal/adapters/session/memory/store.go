package memory

import (
	"context"
	"sync"
	"time"

	"paws-and-claws/internal/ports/session"
)

type entry struct {
	values   map[string][]byte
	deadline time.Time
}

// Store is an in-memory session.Store with per-session TTL. Expired sessions
// are dropped lazily on access; no background sweeper.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*entry
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// live returns the entry for id if it exists and has not expired, creating it
// when create is set. Caller holds the lock.
func (s *Store) live(id string, create bool) *entry {
	e, ok := s.sessions[id]
	if ok && s.now().After(e.deadline) {
		delete(s.sessions, id)
		ok = false
	}
	if !ok {
		if !create {
			return nil
		}
		e = &entry{values: make(map[string][]byte)}
		s.sessions[id] = e
	}
	e.deadline = s.now().Add(s.ttl)
	return e
}

func (s *Store) Set(ctx context.Context, sessionID, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.live(sessionID, true)
	cp := make([]byte, len(value))
	copy(cp, value)
	e.values[key] = cp
	return nil
}

func (s *Store) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.live(sessionID, false)
	if e == nil {
		return nil, session.ErrNotFound
	}
	v, ok := e.values[key]
	if !ok {
		return nil, session.ErrNotFound
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (s *Store) Delete(ctx context.Context, sessionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.live(sessionID, false); e != nil {
		delete(e.values, key)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}
