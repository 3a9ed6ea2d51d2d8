package domain

import "errors"

// Authentication and authorization failures. Each one maps to a stable
// client-visible status in the API error handler.
var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrInvalidToken    = errors.New("invalid token")
	ErrForbidden       = errors.New("access forbidden")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrCSRFRejected    = errors.New("csrf origin rejected")
	ErrAccountLocked   = errors.New("account locked")
)

// Account and input failures.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidUserID      = errors.New("invalid user id")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
)
