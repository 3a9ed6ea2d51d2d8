package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmskeleton/backend/internal/infrastructure/db/memory"
)

func TestRevocationRegistry_Idempotent(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := memory.NewRevocationStore()
	r := NewRevocationRegistry(store, clock.Now)

	exp := clock.now.Add(time.Minute)
	require.NoError(t, r.Revoke(ctx, "tok", exp))
	first, err := r.IsRevoked(ctx, "tok")
	require.NoError(t, err)

	require.NoError(t, r.Revoke(ctx, "tok", exp))
	second, err := r.IsRevoked(ctx, "tok")
	require.NoError(t, err)

	assert.True(t, first)
	assert.True(t, second)
	assert.Equal(t, 1, store.Len())
}

func TestRevocationRegistry_ForgetsAfterExpiry(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	r := NewRevocationRegistry(memory.NewRevocationStore(), clock.Now)

	require.NoError(t, r.Revoke(ctx, "tok", clock.now.Add(time.Minute)))

	clock.Advance(time.Minute)
	revoked, err := r.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationRegistry_SkipsAlreadyExpired(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := memory.NewRevocationStore()
	r := NewRevocationRegistry(store, clock.Now)

	require.NoError(t, r.Revoke(ctx, "old", clock.now.Add(-time.Second)))
	assert.Equal(t, 0, store.Len())
}

func TestRevocationRegistry_NewTokenForSameSubjectUnaffected(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	m := newTestTokenManager(t, clock)
	r := NewRevocationRegistry(memory.NewRevocationStore(), clock.Now)

	old, claims, err := m.Issue("subject", 0)
	require.NoError(t, err)
	require.NoError(t, r.Revoke(ctx, old, claims.ExpiresAt))

	fresh, _, err := m.Issue("subject", 0)
	require.NoError(t, err)
	require.NotEqual(t, old, fresh)

	revoked, err := r.IsRevoked(ctx, fresh)
	require.NoError(t, err)
	assert.False(t, revoked)
}
