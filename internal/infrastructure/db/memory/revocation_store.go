// Package memory provides process-local implementations of the state stores
// for single-instance deployments. Each store guards its map with one mutex.
package memory

import (
	"context"
	"sync"
	"time"
)

// RevocationStore keeps revoked tokens with their expiry and evicts them
// lazily once expired.
type RevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewRevocationStore() *RevocationStore {
	return &RevocationStore{entries: make(map[string]time.Time)}
}

// Add inserts token. Re-adding keeps the later expiry.
func (s *RevocationStore) Add(_ context.Context, token string, expiresAt, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	if prev, ok := s.entries[token]; ok {
		if prev.IsZero() || (!expiresAt.IsZero() && prev.After(expiresAt)) {
			return nil
		}
	}
	s.entries[token] = expiresAt
	return nil
}

func (s *RevocationStore) Contains(_ context.Context, token string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.entries[token]
	if !ok {
		return false, nil
	}
	if !exp.IsZero() && !now.Before(exp) {
		delete(s.entries, token)
		return false, nil
	}
	return true, nil
}

// Len returns the number of tracked entries, expired ones included.
func (s *RevocationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *RevocationStore) pruneLocked(now time.Time) {
	for token, exp := range s.entries {
		if !exp.IsZero() && !now.Before(exp) {
			delete(s.entries, token)
		}
	}
}
