package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only, tenant-scoped record of an action taken inside
// an organization. Rows are never updated or deleted individually; they go
// away only when their owning organization is deleted.
type AuditLog struct {
	AuditID   uuid.UUID // UUIDv7
	OrgID     uuid.UUID // owning tenant
	Actor     string    // user ID or "system"
	Action    string    // e.g. "invoice.create", "rls.bypass"
	Detail    string
	CreatedAt time.Time
}
