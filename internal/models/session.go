package models

import (
	"time"

	"github.com/google/uuid"
)

// Session represents a user's authenticated session.
// Sessions are owned exclusively by a user and are not tenant-scoped: a user
// may act in several organizations over the lifetime of one session.
type Session struct {
	SessionID uuid.UUID // UUIDv7 - the only value stored in the cookie
	UserID    uuid.UUID // Who is logged in

	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastUsedAt time.Time

	// Optional audit metadata
	UserAgent string
	IPAddress string
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
