package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// WindowStore implements the sliding-window log as a sorted set scored by
// millisecond timestamps. Key format: farm:rate:<key>.
type WindowStore struct {
	client redis.UniversalClient
}

func NewWindowStore(client redis.UniversalClient) *WindowStore {
	return &WindowStore{client: client}
}

// Record prunes, appends and counts inside one MULTI/EXEC block.
func (s *WindowStore) Record(ctx context.Context, key string, now time.Time, window time.Duration) (int, error) {
	k := keyPrefix + "rate:" + key
	cutoff := now.Add(-window).UnixMilli()

	var card *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, k, "-inf", strconv.FormatInt(cutoff, 10))
		pipe.ZAdd(ctx, k, redis.Z{Score: float64(now.UnixMilli()), Member: uuid.NewString()})
		card = pipe.ZCard(ctx, k)
		pipe.PExpire(ctx, k, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("rate window %s: %w", key, err)
	}
	return int(card.Val()), nil
}
