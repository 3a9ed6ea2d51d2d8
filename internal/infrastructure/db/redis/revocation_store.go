package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore keeps revoked tokens in Redis, shared across instances.
// Key format: farm:revoked:<sha256(token)>. The key expires together with the
// token, so the set never outgrows one token lifetime.
type RevocationStore struct {
	client redis.UniversalClient
}

func NewRevocationStore(client redis.UniversalClient) *RevocationStore {
	return &RevocationStore{client: client}
}

func (s *RevocationStore) Add(ctx context.Context, token string, expiresAt, now time.Time) error {
	var ttl time.Duration
	if !expiresAt.IsZero() {
		ttl = expiresAt.Sub(now)
		if ttl <= 0 {
			return nil
		}
	}
	if err := s.client.Set(ctx, s.key(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revocation add: %w", err)
	}
	return nil
}

func (s *RevocationStore) Contains(ctx context.Context, token string, _ time.Time) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (s *RevocationStore) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + "revoked:" + hex.EncodeToString(sum[:])
}
