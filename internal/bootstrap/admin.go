package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/farmskeleton/backend/internal/core/auth"
	"github.com/farmskeleton/backend/internal/core/domain"
	"github.com/farmskeleton/backend/internal/core/ports"
	"github.com/farmskeleton/backend/internal/infrastructure/config"
)

// EnsureAdmin creates the configured seed administrator if missing, and
// promotes an existing account with that email to admin.
func EnsureAdmin(ctx context.Context, cfg config.AdminConfig, users ports.UserRepository, hasher *auth.PasswordHasher, log zerolog.Logger) error {
	if !cfg.Enabled() {
		return nil
	}
	email := domain.NormalizeEmail(cfg.Email)
	if email == "" || strings.TrimSpace(cfg.Password) == "" {
		return errors.New("admin bootstrap missing required config")
	}

	now := time.Now().UTC()
	existing, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role.IsAdmin() {
			return nil
		}
		role := domain.RoleAdmin
		if _, err := users.Update(ctx, existing.ID, ports.UserUpdate{Role: &role, UpdatedAt: now}); err != nil {
			return fmt.Errorf("bootstrap promote admin: %w", err)
		}
		log.Info().Str("user_id", existing.ID).Msg("existing account promoted to admin")
		return nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return fmt.Errorf("bootstrap lookup user: %w", err)
	}

	hashed, err := hasher.Hash(cfg.Password)
	if err != nil {
		return fmt.Errorf("bootstrap hash password: %w", err)
	}

	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "Administrator"
	}
	created, err := users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("bootstrap create user: %w", err)
	}

	log.Info().Str("user_id", created.ID).Msg("seed admin created")
	return nil
}
