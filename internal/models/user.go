package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a person who can sign in to the platform. Users are NOT
// tenant-scoped: one user may hold memberships in several organizations, so
// access control for user rows happens at the application layer rather than
// through row policies.
type User struct {
	UserID    uuid.UUID // UUIDv7
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
