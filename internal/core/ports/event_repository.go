package ports

import (
	"context"

	"github.com/farmskeleton/backend/internal/core/domain"
)

// AuthEventRepository persists the authentication audit trail.
type AuthEventRepository interface {
	Insert(ctx context.Context, event *domain.AuthEvent) error
}
