package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/farmskeleton/backend/internal/core/ports"
)

// RevocationRegistry tracks signed-out tokens. Identity is the raw signed
// string, so a new token for the same subject is unaffected.
type RevocationRegistry struct {
	store ports.RevocationStore
	now   Clock
}

func NewRevocationRegistry(store ports.RevocationStore, now Clock) *RevocationRegistry {
	return &RevocationRegistry{store: store, now: clockOrDefault(now)}
}

// Revoke invalidates token until expiresAt. Revoking twice is a no-op, and a
// token that has already expired needs no entry.
func (r *RevocationRegistry) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	now := r.now()
	if !expiresAt.IsZero() && !now.Before(expiresAt) {
		return nil
	}
	if err := r.store.Add(ctx, token, expiresAt, now); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether token has been revoked and is still tracked.
func (r *RevocationRegistry) IsRevoked(ctx context.Context, token string) (bool, error) {
	revoked, err := r.store.Contains(ctx, token, r.now())
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return revoked, nil
}
