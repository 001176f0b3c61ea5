package models

import "time"

// Identifier spaces tracked independently by the login guard. An IP address
// and a username accumulate failure counts separately through the same
// mechanism.
const (
	IdentifierIP       = "ip"
	IdentifierUsername = "username"
)

// LoginAttempt represents one authentication attempt. Rows are immutable
// once written; the guard only appends and counts.
type LoginAttempt struct {
	ID             string
	Identifier     string // IP address or username
	IdentifierType string // "ip" or "username"
	Success        bool
	FailureReason  *string
	AttemptTime    time.Time
	ExpiresAt      time.Time // Retention horizon for the background cleanup
}
