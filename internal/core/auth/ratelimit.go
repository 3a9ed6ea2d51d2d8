package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/farmskeleton/backend/internal/core/domain"
	"github.com/farmskeleton/backend/internal/core/ports"
)

const (
	DefaultRateWindow = 60 * time.Second
	DefaultRateMax    = 10
)

// RateLimiter is a sliding-window counter: at most max events per key in any
// trailing window. Bursts up to max are allowed, with no smoothing.
type RateLimiter struct {
	store  ports.WindowStore
	window time.Duration
	max    int
}

func NewRateLimiter(store ports.WindowStore, window time.Duration, max int) *RateLimiter {
	if window <= 0 {
		window = DefaultRateWindow
	}
	if max <= 0 {
		max = DefaultRateMax
	}
	return &RateLimiter{store: store, window: window, max: max}
}

// CheckAndRecord records an event for key at now and fails with
// domain.ErrRateLimited once the window holds more than max events. Rejected
// events are recorded too.
func (l *RateLimiter) CheckAndRecord(ctx context.Context, key string, now time.Time) error {
	count, err := l.store.Record(ctx, key, now, l.window)
	if err != nil {
		return fmt.Errorf("rate limit %s: %w", key, err)
	}
	if count > l.max {
		return domain.ErrRateLimited
	}
	return nil
}

// Window returns the configured window length.
func (l *RateLimiter) Window() time.Duration {
	return l.window
}
