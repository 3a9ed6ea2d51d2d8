package memory

import (
	"context"
	"sync"
	"time"

	"github.com/farmskeleton/backend/internal/core/domain"
)

type attemptEntry struct {
	state     domain.AttemptState
	expiresAt time.Time
}

// AttemptStore holds sign-in failure state per account. Update runs fn under
// the store lock, which makes read-modify-write atomic.
type AttemptStore struct {
	mu      sync.Mutex
	entries map[string]attemptEntry
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{entries: make(map[string]attemptEntry)}
}

func (s *AttemptStore) Load(_ context.Context, key string, now time.Time) (domain.AttemptState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(key, now), nil
}

func (s *AttemptStore) Update(_ context.Context, key string, now time.Time, ttl time.Duration, fn func(*domain.AttemptState)) (domain.AttemptState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.getLocked(key, now)
	fn(&state)

	expiresAt := now.Add(ttl)
	if state.LockedUntil.After(expiresAt) {
		expiresAt = state.LockedUntil
	}
	s.entries[key] = attemptEntry{state: state, expiresAt: expiresAt}
	return state, nil
}

func (s *AttemptStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *AttemptStore) getLocked(key string, now time.Time) domain.AttemptState {
	e, ok := s.entries[key]
	if !ok {
		return domain.AttemptState{}
	}
	if !now.Before(e.expiresAt) {
		delete(s.entries, key)
		return domain.AttemptState{}
	}
	return e.state
}
