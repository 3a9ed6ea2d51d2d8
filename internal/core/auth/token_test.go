package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmskeleton/backend/internal/core/domain"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func newTestTokenManager(t *testing.T, clock *fakeClock) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("secret", "HS256", 0, clock.Now)
	require.NoError(t, err)
	return m
}

func TestTokenManager_IssueVerify(t *testing.T) {
	clock := newFakeClock()
	m := newTestTokenManager(t, clock)

	token, issued, err := m.Issue("507f1f77bcf86cd799439011", 0)
	require.NoError(t, err)
	assert.Equal(t, clock.now, issued.IssuedAt)
	assert.Equal(t, clock.now.Add(DefaultTokenTTL), issued.ExpiresAt)
	assert.NotEmpty(t, issued.ID)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, issued, claims)
}

func TestTokenManager_ExpiryBoundary(t *testing.T) {
	clock := newFakeClock()
	m := newTestTokenManager(t, clock)
	ttl := 10 * time.Minute

	token, _, err := m.Issue("subject", ttl)
	require.NoError(t, err)

	clock.Advance(ttl - time.Second)
	_, err = m.Verify(token)
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken, "token expiring exactly now is expired")

	clock.Advance(time.Hour)
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenManager_RejectsTampering(t *testing.T) {
	clock := newFakeClock()
	m := newTestTokenManager(t, clock)

	token, _, err := m.Issue("subject", 0)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	other, _, err := m.Issue("someone-else", 0)
	require.NoError(t, err)
	forged := parts[0] + "." + strings.Split(other, ".")[1] + "." + parts[2]

	for name, tok := range map[string]string{
		"swapped payload": forged,
		"malformed":       "not-a-token",
		"short":           "a",
		"long":            strings.Repeat("a", 1025),
		"sql":             "' OR 1=1 --",
	} {
		_, err := m.Verify(tok)
		assert.ErrorIs(t, err, domain.ErrInvalidToken, name)
	}
}

func TestTokenManager_RejectsOtherSecretAndAlgorithm(t *testing.T) {
	clock := newFakeClock()
	m := newTestTokenManager(t, clock)

	otherSecret, err := NewTokenManager("different", "HS256", 0, clock.Now)
	require.NoError(t, err)
	token, _, err := otherSecret.Issue("subject", 0)
	require.NoError(t, err)
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	otherAlg, err := NewTokenManager("secret", "HS512", 0, clock.Now)
	require.NoError(t, err)
	token, _, err = otherAlg.Issue("subject", 0)
	require.NoError(t, err)
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "subject",
		ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Verify(unsigned)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenManager_RequiresExpiry(t *testing.T) {
	clock := newFakeClock()
	m := newTestTokenManager(t, clock)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "subject"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestNewTokenManager_Config(t *testing.T) {
	_, err := NewTokenManager("", "HS256", 0, nil)
	assert.Error(t, err)

	_, err = NewTokenManager("secret", "RS256", 0, nil)
	assert.Error(t, err)

	_, err = NewTokenManager("secret", "bogus", 0, nil)
	assert.Error(t, err)

	m, err := NewTokenManager("secret", "", time.Hour, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, m.TTL())
}
