// Package auth holds the authentication and authorization core: password
// hashing, session token issuance and verification, token revocation,
// sliding-window rate limiting, sign-in lockout, CSRF origin checks and the
// role-based authorization policy.
//
// Mutable bookkeeping lives behind the store interfaces in the ports package
// so the same policy runs against in-memory maps or Redis.
package auth

import "time"

// Clock returns the current time. Tests inject a fixed clock.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return systemClock
	}
	return c
}
