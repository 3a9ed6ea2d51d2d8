package domain

import (
	"regexp"
	"strings"
	"time"
)

// Role is the closed set of authorization roles a user can hold.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole normalises s and maps it onto a known Role. An empty value yields
// RoleUser, anything unrecognised yields ErrInvalidRole.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

// IsAdmin reports whether the role carries administrative rights.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User models a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created"`
	UpdatedAt    time.Time `json:"updated"`
}

var userIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// ValidUserID reports whether id has the shape of a stored user identifier.
func ValidUserID(id string) bool {
	return userIDPattern.MatchString(id)
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
