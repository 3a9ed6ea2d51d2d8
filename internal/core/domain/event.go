package domain

import "time"

// AuthEventType classifies entries of the authentication audit trail.
type AuthEventType string

const (
	EventSignInSucceeded AuthEventType = "signin_succeeded"
	EventSignInFailed    AuthEventType = "signin_failed"
	EventAccountLocked   AuthEventType = "account_locked"
	EventSignedOut       AuthEventType = "signed_out"
	EventUserCreated     AuthEventType = "user_created"
	EventUserDeleted     AuthEventType = "user_deleted"
	EventRoleChanged     AuthEventType = "role_changed"
)

// AuthEvent is a single security-relevant occurrence recorded for auditing.
type AuthEvent struct {
	Type      AuthEventType
	Subject   string // user id, empty when the account could not be resolved
	Email     string
	ActorID   string // who triggered it, when different from Subject
	ClientIP  string
	Detail    string
	Timestamp time.Time
}
