package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/farmskeleton/backend/internal/core/domain"
)

// MaxPasswordLength bounds accepted plaintexts, in characters.
const MaxPasswordLength = 128

// bcrypt ignores everything past 72 bytes, so every input is digested to a
// fixed 44-byte form first. Raw plaintexts never reach bcrypt.
var prehashKey = []byte("farm-backend/bcrypt-prehash/v1")

// PasswordHasher hashes and verifies credentials with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using cost, or bcrypt.DefaultCost when
// cost is out of range.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a salted bcrypt hash of plain.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	if plain == "" || utf8.RuneCountInString(plain) > MaxPasswordLength {
		return "", domain.ErrInvalidPassword
	}
	hash, err := bcrypt.GenerateFromPassword(prepare(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plain matches hash. A malformed hash never matches.
func (h *PasswordHasher) Verify(plain, hash string) bool {
	if plain == "" || hash == "" || utf8.RuneCountInString(plain) > MaxPasswordLength {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), prepare(plain)) == nil
}

func prepare(plain string) []byte {
	mac := hmac.New(sha256.New, prehashKey)
	mac.Write([]byte(plain))
	sum := mac.Sum(nil)
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum)
	return out
}
