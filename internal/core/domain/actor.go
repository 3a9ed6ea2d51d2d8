package domain

import "time"

// Actor is the authenticated principal behind a request, resolved from a
// verified, unrevoked session token.
type Actor struct {
	ID    string
	Email string
	Role  Role

	// Token is the raw bearer token and TokenExpiresAt its embedded expiry;
	// sign-out needs both to revoke the session.
	Token          string
	TokenExpiresAt time.Time
}

// IsAdmin reports whether the actor holds the admin role.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role.IsAdmin()
}
