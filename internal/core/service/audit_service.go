package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/farmskeleton/backend/internal/core/domain"
	"github.com/farmskeleton/backend/internal/core/ports"
)

type auditService struct {
	repo ports.AuthEventRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that persists events through repo.
func NewAuditService(repo ports.AuthEventRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Process persists a single audit event.
func (s *auditService) Process(ctx context.Context, event domain.AuthEvent) error {
	if event.Type == "" {
		return errors.New("process audit event: missing type")
	}
	if err := s.repo.Insert(ctx, &event); err != nil {
		return fmt.Errorf("process audit event: %w", err)
	}

	s.log.Debug().
		Str("type", string(event.Type)).
		Str("subject", event.Subject).
		Msg("audit event recorded")
	return nil
}
