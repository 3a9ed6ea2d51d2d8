package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/farmskeleton/backend/internal/core/auth"
	"github.com/farmskeleton/backend/internal/core/domain"
	"github.com/farmskeleton/backend/internal/core/ports"
)

const maxListUsers = 100

type userService struct {
	repo   ports.UserRepository
	hasher *auth.PasswordHasher
	audit  ports.AuditSink
	now    func() time.Time
	log    zerolog.Logger
}

// NewUserService returns a UserService implementation.
func NewUserService(
	repo ports.UserRepository,
	hasher *auth.PasswordHasher,
	audit ports.AuditSink,
	log zerolog.Logger,
) ports.UserService {
	if audit == nil {
		audit = discardSink{}
	}
	return &userService{
		repo:   repo,
		hasher: hasher,
		audit:  audit,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log,
	}
}

// Create registers a new account. A requested role other than "user" is only
// honoured for admin actors; everyone else gets the default role.
func (s *userService) Create(ctx context.Context, actor *domain.Actor, in ports.CreateUserInput) (*domain.User, error) {
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if role != domain.RoleUser && auth.AuthorizeRoleChange(actor) != nil {
		s.log.Warn().Str("requested_role", string(role)).Msg("role ignored on registration by non-admin")
		role = domain.RoleUser
	}

	email := domain.NormalizeEmail(in.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailExists
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("create user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	event := domain.AuthEvent{
		Type:      domain.EventUserCreated,
		Subject:   created.ID,
		Email:     created.Email,
		Detail:    string(created.Role),
		Timestamp: now,
	}
	if actor != nil {
		event.ActorID = actor.ID
	}
	s.audit.Enqueue(event)
	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user created")

	return created, nil
}

// List returns up to 100 users. Admin only.
func (s *userService) List(ctx context.Context, actor *domain.Actor) ([]*domain.User, error) {
	if err := auth.Authorize(actor, "", auth.RequireAdmin); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, maxListUsers)
}

func (s *userService) Get(ctx context.Context, actor *domain.Actor, id string) (*domain.User, error) {
	if err := authorizeOwner(actor, id); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// Update applies a partial change. Any role field requires an admin actor,
// even when the actor is editing their own record.
func (s *userService) Update(ctx context.Context, actor *domain.Actor, id string, in ports.UpdateUserInput) (*domain.User, error) {
	if err := authorizeOwner(actor, id); err != nil {
		return nil, err
	}

	upd := ports.UserUpdate{Name: in.Name, UpdatedAt: s.now()}

	if in.Role != nil {
		role, err := domain.ParseRole(*in.Role)
		if err != nil {
			return nil, err
		}
		if err := auth.AuthorizeRoleChange(actor); err != nil {
			return nil, err
		}
		upd.Role = &role
	}

	if in.Email != nil {
		email := domain.NormalizeEmail(*in.Email)
		existing, err := s.repo.FindByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != id:
			return nil, domain.ErrEmailExists
		case err != nil && !isNotFound(err):
			return nil, fmt.Errorf("update user: %w", err)
		}
		upd.Email = &email
	}

	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hash
	}

	var before *domain.User
	if upd.Role != nil {
		prev, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		before = prev
	}

	updated, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	if before != nil && before.Role != updated.Role {
		s.audit.Enqueue(domain.AuthEvent{
			Type:      domain.EventRoleChanged,
			Subject:   updated.ID,
			Email:     updated.Email,
			ActorID:   actor.ID,
			Detail:    fmt.Sprintf("%s->%s", before.Role, updated.Role),
			Timestamp: upd.UpdatedAt,
		})
		s.log.Info().
			Str("user_id", updated.ID).
			Str("actor_id", actor.ID).
			Str("role", string(updated.Role)).
			Msg("user role changed")
	}

	return updated, nil
}

func (s *userService) Delete(ctx context.Context, actor *domain.Actor, id string) error {
	if err := authorizeOwner(actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Enqueue(domain.AuthEvent{
		Type:      domain.EventUserDeleted,
		Subject:   id,
		ActorID:   actor.ID,
		Timestamp: s.now(),
	})
	s.log.Info().Str("user_id", id).Str("actor_id", actor.ID).Msg("user deleted")
	return nil
}

// authorizeOwner validates the id shape first so malformed ids are reported
// as such, then applies the self-or-admin rule.
func authorizeOwner(actor *domain.Actor, id string) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if !domain.ValidUserID(id) {
		return domain.ErrInvalidUserID
	}
	return auth.Authorize(actor, id, auth.RequireSelf)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrUserNotFound)
}
