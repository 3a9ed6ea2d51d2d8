package ports

import (
	"context"
	"time"

	"github.com/farmskeleton/backend/internal/core/domain"
)

// RevocationStore holds signed-out tokens until their natural expiry.
// A zero expiresAt keeps the entry for the lifetime of the store.
type RevocationStore interface {
	Add(ctx context.Context, token string, expiresAt, now time.Time) error
	Contains(ctx context.Context, token string, now time.Time) (bool, error)
}

// WindowStore keeps a sliding-window log of timestamps per key.
type WindowStore interface {
	// Record appends now to key's log, drops entries with now-t >= window and
	// returns the number of entries left, including the new one.
	Record(ctx context.Context, key string, now time.Time, window time.Duration) (int, error)
}

// AttemptStore keeps per-account sign-in failure state. Update must apply fn
// atomically with respect to other updates of the same key.
type AttemptStore interface {
	Load(ctx context.Context, key string, now time.Time) (domain.AttemptState, error)
	Update(ctx context.Context, key string, now time.Time, ttl time.Duration, fn func(*domain.AttemptState)) (domain.AttemptState, error)
	Delete(ctx context.Context, key string) error
}
