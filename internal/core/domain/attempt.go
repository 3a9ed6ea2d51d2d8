package domain

import "time"

// AttemptState is the sign-in failure bookkeeping kept per account.
type AttemptState struct {
	Failures    int
	LastFailure time.Time
	LockedUntil time.Time
}

// LockedAt reports whether the account is locked at now.
func (s AttemptState) LockedAt(now time.Time) bool {
	return !s.LockedUntil.IsZero() && now.Before(s.LockedUntil)
}
