package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/farmskeleton/backend/internal/core/domain"
)

// Requirement selects the authorization rule applied to a resource.
type Requirement int

const (
	// RequireSelf admits the resource owner and admins.
	RequireSelf Requirement = iota
	// RequireAdmin admits admins only.
	RequireAdmin
)

// UserFinder resolves a token subject to a live user record.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Authenticator turns a bearer token into an Actor.
type Authenticator struct {
	tokens      *TokenManager
	revocations *RevocationRegistry
	users       UserFinder
}

func NewAuthenticator(tokens *TokenManager, revocations *RevocationRegistry, users UserFinder) *Authenticator {
	return &Authenticator{tokens: tokens, revocations: revocations, users: users}
}

// Authenticate verifies signature and expiry, then revocation, then resolves
// the subject. A revoked token is domain.ErrInvalidToken; a subject that no
// longer exists is domain.ErrUnauthenticated.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*domain.Actor, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	revoked, err := a.revocations.IsRevoked(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domain.ErrInvalidToken
	}

	user, err := a.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidUserID) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	role := user.Role
	if role == "" {
		role = domain.RoleUser
	}
	return &domain.Actor{
		ID:             user.ID,
		Email:          user.Email,
		Role:           role,
		Token:          token,
		TokenExpiresAt: claims.ExpiresAt,
	}, nil
}

// Authorize applies req to actor acting on a resource owned by ownerID.
func Authorize(actor *domain.Actor, ownerID string, req Requirement) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if actor.IsAdmin() {
		return nil
	}
	if req == RequireSelf && ownerID != "" && actor.ID == ownerID {
		return nil
	}
	return domain.ErrForbidden
}

// AuthorizeRoleChange admits role mutation for admins only, regardless of
// ownership of the target.
func AuthorizeRoleChange(actor *domain.Actor) error {
	return Authorize(actor, "", RequireAdmin)
}
