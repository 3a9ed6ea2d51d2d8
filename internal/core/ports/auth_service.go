package ports

import (
	"context"
	"time"

	"github.com/farmskeleton/backend/internal/core/domain"
)

// SignInInput is the DTO passed from the transport layer to AuthService.
type SignInInput struct {
	Email    string
	Password string
	ClientIP string
}

// SignInResult carries a freshly issued session token.
type SignInResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	User        *domain.User
}

// AuthService covers the session lifecycle.
type AuthService interface {
	SignIn(ctx context.Context, in SignInInput) (*SignInResult, error)
	SignOut(ctx context.Context, actor *domain.Actor) error
}
