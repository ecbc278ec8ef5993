package store

import (
	"context"

	"github.com/operatehq/operate/internal/models"
)

// AuditLogStore defines the interface for the append-only, tenant-scoped
// audit trail. There is no update or single-row delete: entries live exactly
// as long as their owning organization.
type AuditLogStore interface {
	// Append writes one audit entry for the active organization. The
	// entry's OrgID must match the tenant context unless bypass is active.
	Append(ctx context.Context, entry *models.AuditLog) error

	// List returns audit entries visible under the current context, newest
	// first, up to limit (0 means no limit). Under bypass this spans all
	// organizations.
	List(ctx context.Context, limit int) ([]*models.AuditLog, error)
}
