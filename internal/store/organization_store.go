package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/operatehq/operate/internal/models"
)

// Sentinel errors for organization store operations
var (
	ErrOrganizationNotFound      = errors.New("organization not found")
	ErrOrganizationAlreadyExists = errors.New("organization already exists")
)

// OrganizationStore defines the interface for organization (tenant) storage.
// The organizations table is itself row-secured: without bypass, a caller
// sees only the organization named by its own tenant context. Creating and
// listing organizations are system operations that require bypass.
type OrganizationStore interface {
	// Create creates a new organization. Signup path; requires bypass.
	// Returns ErrOrganizationAlreadyExists on an ID collision.
	Create(ctx context.Context, org *models.Organization) error

	// Get retrieves an organization by ID. Under a tenant context, only the
	// caller's own organization is visible; anything else reports
	// ErrOrganizationNotFound.
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)

	// Update updates an existing organization.
	// Returns ErrOrganizationNotFound if it is not visible.
	Update(ctx context.Context, org *models.Organization) error

	// Delete removes an organization and, via FK cascade, all data it owns.
	// This is the administrative cascade; callers must hold bypass.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Delete(ctx context.Context, orgID uuid.UUID) error

	// List returns all organizations. Requires bypass; under a plain tenant
	// context it returns at most the caller's own organization, and with no
	// context at all it returns nothing.
	List(ctx context.Context) ([]*models.Organization, error)
}
