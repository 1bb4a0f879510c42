package domain

import "time"

// MaxPasswordChangeAttempts caps wrong old-password submissions against one
// pending password change.
const MaxPasswordChangeAttempts = 5

// Session is the server-side record behind a session token's sid.
type Session struct {
	ID          string
	PrincipalID string
	Kind        Kind
	CreatedAt   time.Time
	ExpiresAt   time.Time
	RevokedAt   *time.Time
}

// Active reports whether the session is neither revoked nor expired at now.
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// PasswordChange is a pending forced password change. Only the fingerprint
// of the change token handed to the client is stored.
type PasswordChange struct {
	TokenHash   string
	PrincipalID string
	Kind        Kind
	Attempts    int
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Exhausted reports whether the attempt budget has been used up.
func (pc PasswordChange) Exhausted() bool {
	return pc.Attempts >= MaxPasswordChangeAttempts
}
