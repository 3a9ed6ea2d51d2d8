package memory

import (
	"context"
	"sync"
	"time"
)

// WindowStore is an in-memory sliding-window log keyed by client.
type WindowStore struct {
	mu        sync.Mutex
	logs      map[string][]time.Time
	lastSweep time.Time
}

func NewWindowStore() *WindowStore {
	return &WindowStore{logs: make(map[string][]time.Time)}
}

func (s *WindowStore) Record(_ context.Context, key string, now time.Time, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := append(prune(s.logs[key], now, window), now)
	s.logs[key] = log

	if now.Sub(s.lastSweep) >= window {
		s.sweepLocked(now, window)
	}
	return len(log), nil
}

// sweepLocked drops keys whose whole log has aged out.
func (s *WindowStore) sweepLocked(now time.Time, window time.Duration) {
	for key, log := range s.logs {
		if len(prune(log, now, window)) == 0 {
			delete(s.logs, key)
		}
	}
	s.lastSweep = now
}

// prune removes entries with now-t >= window. log is in insertion order.
func prune(log []time.Time, now time.Time, window time.Duration) []time.Time {
	i := 0
	for i < len(log) && now.Sub(log[i]) >= window {
		i++
	}
	if i == 0 {
		return log
	}
	kept := make([]time.Time, len(log)-i, len(log)-i+1)
	copy(kept, log[i:])
	return kept
}
