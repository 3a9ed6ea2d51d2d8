package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/farmskeleton/backend/internal/core/auth"
	"github.com/farmskeleton/backend/internal/core/domain"
	"github.com/farmskeleton/backend/internal/core/ports"
)

const tokenTypeBearer = "bearer"

// AuthDeps groups the collaborators AuthService needs.
type AuthDeps struct {
	Users       ports.UserRepository
	Hasher      *auth.PasswordHasher
	Tokens      *auth.TokenManager
	Revocations *auth.RevocationRegistry
	Lockout     *auth.LockoutPolicy
	Audit       ports.AuditSink
	Clock       func() time.Time
	Log         zerolog.Logger
}

type authService struct {
	deps AuthDeps

	// dummyHash is verified against when the email is unknown so the
	// response time does not reveal whether an account exists.
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService returns an AuthService implementation.
func NewAuthService(deps AuthDeps) ports.AuthService {
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return time.Now().UTC() }
	}
	if deps.Audit == nil {
		deps.Audit = discardSink{}
	}
	return &authService{deps: deps}
}

// SignIn checks the lockout state, verifies credentials and issues a session
// token. Every failure counts towards the account lockout, including
// attempts against unknown emails.
func (s *authService) SignIn(ctx context.Context, in ports.SignInInput) (*ports.SignInResult, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	now := s.deps.Clock()

	if err := s.deps.Lockout.Check(ctx, email, now); err != nil {
		if errors.Is(err, domain.ErrAccountLocked) {
			s.deps.Log.Warn().Str("email", email).Str("client_ip", in.ClientIP).Msg("sign-in rejected, account locked")
		}
		return nil, err
	}

	user, err := s.deps.Users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		s.deps.Hasher.Verify(in.Password, s.placeholderHash())
		return nil, s.failSignIn(ctx, email, "", in.ClientIP, now)
	case err != nil:
		return nil, fmt.Errorf("sign in: %w", err)
	}

	if !s.deps.Hasher.Verify(in.Password, user.PasswordHash) {
		return nil, s.failSignIn(ctx, email, user.ID, in.ClientIP, now)
	}

	if err := s.deps.Lockout.RecordSuccess(ctx, email); err != nil {
		s.deps.Log.Warn().Err(err).Str("email", email).Msg("failed to reset sign-in attempts")
	}

	token, claims, err := s.deps.Tokens.Issue(user.ID, s.deps.Tokens.TTL())
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	s.deps.Audit.Enqueue(domain.AuthEvent{
		Type:      domain.EventSignInSucceeded,
		Subject:   user.ID,
		Email:     email,
		ClientIP:  in.ClientIP,
		Timestamp: now,
	})
	s.deps.Log.Info().Str("user_id", user.ID).Str("client_ip", in.ClientIP).Msg("user signed in")

	return &ports.SignInResult{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   claims.ExpiresAt,
		User:        user,
	}, nil
}

// SignOut revokes the token the actor authenticated with until it expires.
func (s *authService) SignOut(ctx context.Context, actor *domain.Actor) error {
	if actor == nil || actor.Token == "" {
		return domain.ErrUnauthenticated
	}
	if err := s.deps.Revocations.Revoke(ctx, actor.Token, actor.TokenExpiresAt); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}

	s.deps.Audit.Enqueue(domain.AuthEvent{
		Type:      domain.EventSignedOut,
		Subject:   actor.ID,
		Email:     actor.Email,
		Timestamp: s.deps.Clock(),
	})
	s.deps.Log.Info().Str("user_id", actor.ID).Msg("user signed out")
	return nil
}

func (s *authService) failSignIn(ctx context.Context, email, userID, clientIP string, now time.Time) error {
	locked, err := s.deps.Lockout.RecordFailure(ctx, email, now)
	if err != nil {
		s.deps.Log.Error().Err(err).Str("email", email).Msg("failed to record sign-in failure")
	}

	s.deps.Audit.Enqueue(domain.AuthEvent{
		Type:      domain.EventSignInFailed,
		Subject:   userID,
		Email:     email,
		ClientIP:  clientIP,
		Timestamp: now,
	})
	if locked {
		s.deps.Audit.Enqueue(domain.AuthEvent{
			Type:      domain.EventAccountLocked,
			Subject:   userID,
			Email:     email,
			ClientIP:  clientIP,
			Timestamp: now,
		})
		s.deps.Log.Warn().Str("email", email).Str("client_ip", clientIP).Msg("account locked after repeated failures")
	}
	return domain.ErrInvalidCredentials
}

func (s *authService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.deps.Hasher.Hash("placeholder-Passw0rd!")
	})
	return s.dummyHash
}

type discardSink struct{}

func (discardSink) Enqueue(domain.AuthEvent) {}
