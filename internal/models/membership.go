package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership roles within an organization.
const (
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
	RoleViewer     = "viewer"
)

// Membership links a user to an organization with a role. Memberships are
// tenant-scoped; deleting the organization cascades to them, while deleting
// a user is blocked until their memberships are explicitly removed.
type Membership struct {
	MembershipID uuid.UUID // UUIDv7
	OrgID        uuid.UUID // owning tenant
	UserID       uuid.UUID
	Role         string // "admin", "accountant", "viewer"
	CreatedAt    time.Time
}
