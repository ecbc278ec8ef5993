package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/operatehq/operate/internal/models"
	"github.com/operatehq/operate/internal/store"
)

// MembershipStore implements store.MembershipStore in memory.
// For testing only - data is lost on restart.
type MembershipStore struct {
	mu sync.RWMutex

	memberships map[uuid.UUID]*models.Membership // membership_id -> Membership
}

// NewMembershipStore creates a new in-memory membership store.
func NewMembershipStore() *MembershipStore {
	return &MembershipStore{
		memberships: make(map[uuid.UUID]*models.Membership),
	}
}

// Create adds a membership. A row naming an organization other than the
// active tenant (without bypass) is rejected, same as the WITH CHECK side of
// the row policy.
func (s *MembershipStore) Create(ctx context.Context, m *models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !writable(ctx, m.OrgID) {
		return store.ErrTenantMismatch
	}

	if _, exists := s.memberships[m.MembershipID]; exists {
		return store.ErrMembershipAlreadyExists
	}
	for _, existing := range s.memberships {
		if existing.OrgID == m.OrgID && existing.UserID == m.UserID {
			return store.ErrMembershipAlreadyExists
		}
	}

	clone := *m
	s.memberships[m.MembershipID] = &clone

	return nil
}

// Get retrieves a membership by ID, subject to tenant visibility.
func (s *MembershipStore) Get(ctx context.Context, membershipID uuid.UUID) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.memberships[membershipID]
	if !exists || !visible(ctx, m.OrgID) {
		return nil, store.ErrMembershipNotFound
	}

	clone := *m
	return &clone, nil
}

// List returns the memberships visible under the current context. With no
// context and no bypass this is empty, never an error.
func (s *MembershipStore) List(ctx context.Context) ([]*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Membership
	for _, m := range s.memberships {
		if !visible(ctx, m.OrgID) {
			continue
		}
		clone := *m
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// ListByUser returns a user's memberships across all organizations visible
// under the current context.
func (s *MembershipStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Membership, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var result []*models.Membership
	for _, m := range all {
		if m.UserID == userID {
			result = append(result, m)
		}
	}

	return result, nil
}

// Delete removes a membership, subject to tenant visibility.
func (s *MembershipStore) Delete(ctx context.Context, membershipID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, exists := s.memberships[membershipID]
	if !exists || !visible(ctx, m.OrgID) {
		return store.ErrMembershipNotFound
	}

	delete(s.memberships, membershipID)
	return nil
}

// HasMemberships reports whether any membership references the user,
// regardless of tenant context. Used by the user store to reproduce the
// schema's restrict behavior.
func (s *MembershipStore) HasMemberships(userID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.memberships {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func (s *MembershipStore) deleteByOrg(orgID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, m := range s.memberships {
		if m.OrgID == orgID {
			delete(s.memberships, id)
		}
	}
}
