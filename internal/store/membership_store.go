package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/operatehq/operate/internal/models"
)

// Sentinel errors for membership store operations
var (
	ErrMembershipNotFound      = errors.New("membership not found")
	ErrMembershipAlreadyExists = errors.New("membership already exists")
)

// MembershipStore defines the interface for membership storage. Memberships
// are tenant-scoped: every operation is filtered by the active tenant
// context, and with no context set all reads come back empty.
type MembershipStore interface {
	// Create adds a user to the active organization. The membership's OrgID
	// must match the tenant context; a mismatch returns ErrTenantMismatch.
	// Returns ErrMembershipAlreadyExists if the user is already a member.
	Create(ctx context.Context, m *models.Membership) error

	// Get retrieves a membership by ID within the active tenant.
	Get(ctx context.Context, membershipID uuid.UUID) (*models.Membership, error)

	// List returns all memberships visible under the current context:
	// the active organization's members, every membership under bypass,
	// or nothing when no context is set.
	List(ctx context.Context) ([]*models.Membership, error)

	// ListByUser returns a user's memberships across organizations.
	// Requires bypass (the query spans tenants).
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Membership, error)

	// Delete removes a membership within the active tenant.
	Delete(ctx context.Context, membershipID uuid.UUID) error
}
