package ports

import (
	"context"

	"github.com/farmskeleton/backend/internal/core/domain"
)

// CreateUserInput carries registration data. Role is optional and only
// honoured for admin actors.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UpdateUserInput carries a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
}

// UserService defines the user CRUD use cases. Every method that takes an
// actor enforces the authorization policy itself.
type UserService interface {
	// Create registers a user. actor is nil for anonymous registration.
	Create(ctx context.Context, actor *domain.Actor, in CreateUserInput) (*domain.User, error)
	List(ctx context.Context, actor *domain.Actor) ([]*domain.User, error)
	Get(ctx context.Context, actor *domain.Actor, id string) (*domain.User, error)
	Update(ctx context.Context, actor *domain.Actor, id string, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.Actor, id string) error
}
