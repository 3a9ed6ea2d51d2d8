package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/farmskeleton/backend/internal/core/domain"
)

type stubEventRepo struct {
	insertErr error
	inserted  []*domain.AuthEvent
}

func (r *stubEventRepo) Insert(_ context.Context, e *domain.AuthEvent) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, e)
	return nil
}

func TestAuditService_Process_Persists(t *testing.T) {
	repo := &stubEventRepo{}
	svc := NewAuditService(repo, zerolog.Nop())

	ev := domain.AuthEvent{Type: domain.EventSignInFailed, Email: "a@example.com", Timestamp: time.Now().UTC()}
	if err := svc.Process(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.inserted) != 1 || repo.inserted[0].Email != "a@example.com" {
		t.Fatalf("expected event to be inserted, got %+v", repo.inserted)
	}
}

func TestAuditService_Process_RepoError(t *testing.T) {
	repo := &stubEventRepo{insertErr: errors.New("write concern")}
	svc := NewAuditService(repo, zerolog.Nop())

	err := svc.Process(context.Background(), domain.AuthEvent{Type: domain.EventSignedOut})
	if err == nil || !errors.Is(err, repo.insertErr) {
		t.Fatalf("expected wrapped repo error, got %v", err)
	}
}

func TestAuditService_Process_MissingType(t *testing.T) {
	repo := &stubEventRepo{}
	svc := NewAuditService(repo, zerolog.Nop())

	if err := svc.Process(context.Background(), domain.AuthEvent{}); err == nil {
		t.Fatal("expected error for untyped event")
	}
	if len(repo.inserted) != 0 {
		t.Fatal("untyped event must not be persisted")
	}
}
