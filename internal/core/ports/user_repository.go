package ports

import (
	"context"
	"time"

	"github.com/farmskeleton/backend/internal/core/domain"
)

// UserUpdate carries the fields to change on a stored user. Nil pointers are
// left untouched.
type UserUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *domain.Role
	UpdatedAt    time.Time
}

// UserRepository is the document-store collaborator for user records.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// List returns at most limit users ordered by creation time.
	List(ctx context.Context, limit int) ([]*domain.User, error)
	// Update applies upd and returns the stored record after the change.
	Update(ctx context.Context, id string, upd UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
