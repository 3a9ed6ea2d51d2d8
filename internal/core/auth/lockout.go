package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/farmskeleton/backend/internal/core/domain"
	"github.com/farmskeleton/backend/internal/core/ports"
)

const (
	DefaultMaxFailedAttempts = 5
	DefaultLockoutDuration   = 300 * time.Second
)

// LockoutPolicy blocks sign-in for an account after too many consecutive
// failures. Failures older than the lockout duration no longer count.
type LockoutPolicy struct {
	store       ports.AttemptStore
	maxFailures int
	lockout     time.Duration
}

func NewLockoutPolicy(store ports.AttemptStore, maxFailures int, lockout time.Duration) *LockoutPolicy {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailedAttempts
	}
	if lockout <= 0 {
		lockout = DefaultLockoutDuration
	}
	return &LockoutPolicy{store: store, maxFailures: maxFailures, lockout: lockout}
}

// Check fails with domain.ErrAccountLocked while account is locked. It never
// writes; an expired lock is reset by the next RecordFailure under the store's
// atomic Update.
func (p *LockoutPolicy) Check(ctx context.Context, account string, now time.Time) error {
	state, err := p.store.Load(ctx, account, now)
	if err != nil {
		return fmt.Errorf("load attempts: %w", err)
	}
	if state.LockedAt(now) {
		return domain.ErrAccountLocked
	}
	return nil
}

// RecordFailure counts a failed attempt and reports whether it locked the
// account.
func (p *LockoutPolicy) RecordFailure(ctx context.Context, account string, now time.Time) (bool, error) {
	state, err := p.store.Update(ctx, account, now, p.lockout, func(s *domain.AttemptState) {
		if !s.LockedUntil.IsZero() && !s.LockedAt(now) {
			*s = domain.AttemptState{}
		}
		if !s.LastFailure.IsZero() && now.Sub(s.LastFailure) >= p.lockout {
			s.Failures = 0
		}
		s.Failures++
		s.LastFailure = now
		if s.Failures >= p.maxFailures && s.LockedUntil.IsZero() {
			s.LockedUntil = now.Add(p.lockout)
		}
	})
	if err != nil {
		return false, fmt.Errorf("record failure: %w", err)
	}
	return state.Failures == p.maxFailures && state.LockedAt(now), nil
}

// RecordSuccess resets the failure counter for account.
func (p *LockoutPolicy) RecordSuccess(ctx context.Context, account string) error {
	if err := p.store.Delete(ctx, account); err != nil {
		return fmt.Errorf("reset attempts: %w", err)
	}
	return nil
}
