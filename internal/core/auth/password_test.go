package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/farmskeleton/backend/internal/core/domain"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	for _, p := range []string{"StrongPass123%", "Pass@123", strings.Repeat("x1!", 40)} {
		hash, err := h.Hash(p)
		require.NoError(t, err)
		assert.NotEqual(t, p, hash)
		assert.True(t, h.Verify(p, hash), "password of length %d", len(p))
		assert.False(t, h.Verify(p+"x", hash))
	}
}

func TestPasswordHasher_SaltedPerCall(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	a, err := h.Hash("Password123!")
	require.NoError(t, err)
	b, err := h.Hash("Password123!")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_LongPasswordsUseWholeInput(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	base := strings.Repeat("a", 80)

	hash, err := h.Hash(base + "1!")
	require.NoError(t, err)
	assert.False(t, h.Verify(base+"2!", hash), "bytes past 72 must matter")
}

func TestPasswordHasher_DigestOfLongPasswordIsNotAccepted(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	long := strings.Repeat("Secr3t!", 12)
	sum := sha256.Sum256([]byte(long))
	digest := hex.EncodeToString(sum[:])

	hash, err := h.Hash(long)
	require.NoError(t, err)
	assert.True(t, h.Verify(long, hash))
	assert.False(t, h.Verify(digest, hash))
	assert.False(t, h.Verify(string(prepare(long)), hash))
}

func TestPasswordHasher_RejectsOutOfBounds(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	_, err := h.Hash("")
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordLength+1))
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordLength))
	assert.NoError(t, err)
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	assert.False(t, h.Verify("Password123!", "not-a-hash"))
	assert.False(t, h.Verify("Password123!", ""))
	assert.False(t, h.Verify("", "$2a$04$abc"))
}
