package bootstrap

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/farmskeleton/backend/internal/core/auth"
	"github.com/farmskeleton/backend/internal/core/domain"
	"github.com/farmskeleton/backend/internal/core/ports"
	"github.com/farmskeleton/backend/internal/infrastructure/config"
)

type fakeUsers struct {
	users   map[string]*domain.User
	created int
}

func newFakeUsers() *fakeUsers { return &fakeUsers{users: map[string]*domain.User{}} }

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	f.created++
	c := *u
	c.ID = "aaaaaaaaaaaaaaaaaaaaaaa" + string(rune('0'+f.created))
	f.users[c.ID] = &c
	return &c, nil
}

func (f *fakeUsers) List(context.Context, int) ([]*domain.User, error) { return nil, nil }

func (f *fakeUsers) Update(_ context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	u := f.users[id]
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) Delete(context.Context, string) error { return nil }

func TestEnsureAdmin_Disabled(t *testing.T) {
	users := newFakeUsers()
	err := EnsureAdmin(context.Background(), config.AdminConfig{}, users, auth.NewPasswordHasher(bcrypt.MinCost), zerolog.Nop())
	require.NoError(t, err)
	assert.Zero(t, users.created)
}

func TestEnsureAdmin_CreatesOnce(t *testing.T) {
	users := newFakeUsers()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	cfg := config.AdminConfig{Email: " Root@Example.com ", Password: "R00t!pass", Name: "Root"}

	require.NoError(t, EnsureAdmin(context.Background(), cfg, users, hasher, zerolog.Nop()))
	require.NoError(t, EnsureAdmin(context.Background(), cfg, users, hasher, zerolog.Nop()))
	assert.Equal(t, 1, users.created)

	u, err := users.FindByEmail(context.Background(), "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.True(t, hasher.Verify("R00t!pass", u.PasswordHash))
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	users := newFakeUsers()
	existing, _ := users.Create(context.Background(), &domain.User{Email: "root@example.com", Role: domain.RoleUser})

	cfg := config.AdminConfig{Email: "root@example.com", Password: "R00t!pass"}
	require.NoError(t, EnsureAdmin(context.Background(), cfg, users, auth.NewPasswordHasher(bcrypt.MinCost), zerolog.Nop()))

	u, _ := users.FindByID(context.Background(), existing.ID)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.Equal(t, 1, users.created)
}
