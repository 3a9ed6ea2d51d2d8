package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/farmskeleton/backend/internal/core/domain"
)

// DefaultTokenTTL is the session lifetime used when none is configured.
const DefaultTokenTTL = 30 * time.Minute

// Claims is the decoded payload of a session token.
type Claims struct {
	Subject   string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenManager signs and verifies session tokens with a single HMAC
// algorithm and a process-wide secret.
type TokenManager struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    Clock
}

// NewTokenManager validates the signing configuration. algorithm defaults to
// HS256; only the HMAC family is accepted.
func NewTokenManager(secret, algorithm string, ttl time.Duration, now Clock) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token manager: signing secret is required")
	}
	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("token manager: unsupported signing algorithm %q", algorithm)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		now:    clockOrDefault(now),
	}, nil
}

// TTL returns the default session lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for subject that expires ttl from now. A non-positive
// ttl falls back to the configured default.
func (m *TokenManager) Issue(subject string, ttl time.Duration) (string, Claims, error) {
	if subject == "" {
		return "", Claims{}, errors.New("issue token: empty subject")
	}
	if ttl <= 0 {
		ttl = m.ttl
	}

	now := m.now().UTC().Truncate(time.Second)
	registered := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(m.method, registered).SignedString(m.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("issue token: %w", err)
	}
	return signed, toClaims(registered), nil
}

// Verify checks structure, algorithm, signature and expiry, in that order.
// Any failure is reported as domain.ErrInvalidToken. Revocation is not
// consulted here.
func (m *TokenManager) Verify(token string) (Claims, error) {
	var registered jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &registered,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid || registered.Subject == "" {
		return Claims{}, domain.ErrInvalidToken
	}
	return toClaims(registered), nil
}

func toClaims(rc jwt.RegisteredClaims) Claims {
	c := Claims{Subject: rc.Subject, ID: rc.ID}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time.UTC()
	}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time.UTC()
	}
	return c
}
