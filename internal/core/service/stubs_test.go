package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/farmskeleton/backend/internal/core/auth"
	"github.com/farmskeleton/backend/internal/core/domain"
	"github.com/farmskeleton/backend/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	seq     int
	byID    map[string]*domain.User
	findErr error // if set, FindByEmail and FindByID return this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return nil, domain.ErrEmailExists
		}
	}
	r.seq++
	clone := *u
	clone.ID = fmt.Sprintf("%024x", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) List(_ context.Context, limit int) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.byID))
	for i := 1; i <= r.seq && len(out) < limit; i++ {
		if u, ok := r.byID[fmt.Sprintf("%024x", i)]; ok {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	u.UpdatedAt = upd.UpdatedAt
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

// seed stores a user with a real password hash and returns it.
func (r *stubUserRepo) seed(hasher *auth.PasswordHasher, email, password string, role domain.Role) *domain.User {
	hash, err := hasher.Hash(password)
	if err != nil {
		panic(err)
	}
	u, err := r.Create(context.Background(), &domain.User{
		Name:         "Seeded",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		panic(err)
	}
	return u
}

// ---------------------------------------------------------------------------
// Audit capture
// ---------------------------------------------------------------------------

type recordingSink struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (s *recordingSink) Enqueue(e domain.AuthEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) types() []domain.AuthEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuthEventType, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}

func (s *recordingSink) count(t domain.AuthEventType) int {
	n := 0
	for _, got := range s.types() {
		if got == t {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Clock
// ---------------------------------------------------------------------------

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testHasher() *auth.PasswordHasher {
	return auth.NewPasswordHasher(bcrypt.MinCost)
}
