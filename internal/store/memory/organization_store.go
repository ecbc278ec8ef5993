package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/operatehq/operate/internal/models"
	"github.com/operatehq/operate/internal/store"
)

// OrganizationStore implements store.OrganizationStore in memory.
// For testing only - data is lost on restart.
type OrganizationStore struct {
	mu sync.RWMutex

	organizations map[uuid.UUID]*models.Organization // org_id -> Organization

	// Tenant-owned stores registered for cascade on Delete. The database
	// does this through foreign keys; in memory it has to be explicit.
	cascades []interface{ deleteByOrg(orgID uuid.UUID) }
}

// NewOrganizationStore creates a new in-memory organization store.
func NewOrganizationStore() *OrganizationStore {
	return &OrganizationStore{
		organizations: make(map[uuid.UUID]*models.Organization),
	}
}

// RegisterCascade registers a tenant-owned store whose rows are removed when
// an organization is deleted.
func (s *OrganizationStore) RegisterCascade(c interface{ deleteByOrg(orgID uuid.UUID) }) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cascades = append(s.cascades, c)
}

// Create creates a new organization. Mirrors the row policy: the write must
// be visible under the current context, which for a brand-new org means
// bypass.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !writable(ctx, org.OrgID) {
		return store.ErrTenantMismatch
	}

	if _, exists := s.organizations[org.OrgID]; exists {
		return store.ErrOrganizationAlreadyExists
	}

	clone := *org
	s.organizations[org.OrgID] = &clone

	return nil
}

// Get retrieves an organization by ID, subject to tenant visibility.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, exists := s.organizations[orgID]
	if !exists || !visible(ctx, org.OrgID) {
		return nil, store.ErrOrganizationNotFound
	}

	clone := *org
	return &clone, nil
}

// Update updates an existing organization.
func (s *OrganizationStore) Update(ctx context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.organizations[org.OrgID]
	if !exists || !visible(ctx, existing.OrgID) {
		return store.ErrOrganizationNotFound
	}

	org.UpdatedAt = time.Now()
	clone := *org
	s.organizations[org.OrgID] = &clone

	return nil
}

// Delete removes an organization and cascades to registered tenant-owned
// stores.
func (s *OrganizationStore) Delete(ctx context.Context, orgID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	org, exists := s.organizations[orgID]
	if !exists || !visible(ctx, org.OrgID) {
		return store.ErrOrganizationNotFound
	}

	delete(s.organizations, orgID)
	for _, c := range s.cascades {
		c.deleteByOrg(orgID)
	}

	return nil
}

// List returns the organizations visible under the current context, newest
// first.
func (s *OrganizationStore) List(ctx context.Context) ([]*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Organization
	for _, org := range s.organizations {
		if !visible(ctx, org.OrgID) {
			continue
		}
		clone := *org
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}
