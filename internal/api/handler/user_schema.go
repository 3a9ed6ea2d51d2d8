package handler

import (
	"strings"
	"time"

	"github.com/farmskeleton/backend/internal/core/domain"
)

// createUserRequest is the JSON body for POST /api/users.
type createUserRequest struct {
	Name     string `json:"name"     validate:"required,notblank,max=255,safename"`
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128,strongpassword"`
	Role     string `json:"role"`
}

// updateUserRequest is the JSON body for PUT /api/users/:id. Absent fields
// are left unchanged.
type updateUserRequest struct {
	Name     *string `json:"name"     validate:"omitnil,notblank,max=255,safename"`
	Email    *string `json:"email"    validate:"omitnil,email,max=254"`
	Password *string `json:"password" validate:"omitnil,min=6,max=128,strongpassword"`
	Role     *string `json:"role"`
}

type signInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// normalize trims fields whose surrounding whitespace carries no meaning.
func (r *createUserRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

func (r *updateUserRequest) normalize() {
	if r.Email != nil {
		e := strings.TrimSpace(*r.Email)
		r.Email = &e
	}
}

func (r *signInRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

type createdResponse struct {
	ID string `json:"id"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// userResponse is the public view of a user; the password hash never leaves
// the service.
type userResponse struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Role    string    `json:"role"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    string(u.Role),
		Created: u.CreatedAt,
		Updated: u.UpdatedAt,
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}
