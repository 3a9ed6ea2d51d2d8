package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/farmskeleton/backend/internal/core/domain"
)

const maxTxRetries = 16

const (
	fieldFailures    = "failures"
	fieldLastFailure = "last_failure"
	fieldLockedUntil = "locked_until"
)

// AttemptStore keeps sign-in failure state in a hash per account.
// Key format: farm:attempts:<account>. Update uses WATCH so concurrent
// failures on the same account are never lost.
type AttemptStore struct {
	client redis.UniversalClient
}

func NewAttemptStore(client redis.UniversalClient) *AttemptStore {
	return &AttemptStore{client: client}
}

func (s *AttemptStore) Load(ctx context.Context, key string, _ time.Time) (domain.AttemptState, error) {
	vals, err := s.client.HGetAll(ctx, s.key(key)).Result()
	if err != nil {
		return domain.AttemptState{}, fmt.Errorf("attempts load: %w", err)
	}
	return decodeAttempt(vals), nil
}

func (s *AttemptStore) Update(ctx context.Context, key string, now time.Time, ttl time.Duration, fn func(*domain.AttemptState)) (domain.AttemptState, error) {
	k := s.key(key)
	var state domain.AttemptState

	txf := func(tx *redis.Tx) error {
		vals, err := tx.HGetAll(ctx, k).Result()
		if err != nil {
			return err
		}
		state = decodeAttempt(vals)
		fn(&state)

		expiry := ttl
		if until := state.LockedUntil.Sub(now); until > expiry {
			expiry = until
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, k, encodeAttempt(state))
			pipe.PExpire(ctx, k, expiry)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, k)
		if err == nil {
			return state, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return domain.AttemptState{}, fmt.Errorf("attempts update: %w", err)
	}
	return domain.AttemptState{}, fmt.Errorf("attempts update %s: too much contention", key)
}

func (s *AttemptStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("attempts delete: %w", err)
	}
	return nil
}

func (s *AttemptStore) key(account string) string {
	return keyPrefix + "attempts:" + account
}

func encodeAttempt(st domain.AttemptState) map[string]any {
	return map[string]any{
		fieldFailures:    st.Failures,
		fieldLastFailure: unixMilli(st.LastFailure),
		fieldLockedUntil: unixMilli(st.LockedUntil),
	}
}

func decodeAttempt(vals map[string]string) domain.AttemptState {
	failures, _ := strconv.Atoi(vals[fieldFailures])
	return domain.AttemptState{
		Failures:    failures,
		LastFailure: fromUnixMilli(vals[fieldLastFailure]),
		LockedUntil: fromUnixMilli(vals[fieldLockedUntil]),
	}
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnixMilli(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
