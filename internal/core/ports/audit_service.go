package ports

import (
	"context"

	"github.com/farmskeleton/backend/internal/core/domain"
)

// AuditSink accepts audit events without blocking the caller.
type AuditSink interface {
	Enqueue(event domain.AuthEvent)
}

// AuditService records a single audit event.
type AuditService interface {
	Process(ctx context.Context, event domain.AuthEvent) error
}
