// Package memory provides in-memory store implementations for testing. They
// reproduce the row-policy semantics the PostgreSQL stores get from the
// database: reads filter by the ambient tenant, writes outside the active
// tenant are rejected, bypass widens visibility, and the absence of any
// context yields empty results rather than errors.
package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/operatehq/operate/internal/tenant"
)

// visible reports whether a row owned by orgID may be seen under ctx. This
// mirrors the row policy predicate: bypass, or an exact tenant match. No
// context means no rows.
func visible(ctx context.Context, orgID uuid.UUID) bool {
	if _, ok := tenant.BypassFromContext(ctx); ok {
		return true
	}
	current, ok := tenant.OrgFromContext(ctx)
	return ok && current == orgID
}

// writable reports whether a row owned by orgID may be written under ctx.
// The write rule equals the read rule (the policies use the same expression
// for USING and WITH CHECK).
func writable(ctx context.Context, orgID uuid.UUID) bool {
	return visible(ctx, orgID)
}
