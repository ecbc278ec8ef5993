package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/operatehq/operate/internal/models"
	"github.com/operatehq/operate/internal/store"
)

// AuditLogStore implements store.AuditLogStore in memory.
// For testing only - data is lost on restart.
type AuditLogStore struct {
	mu sync.RWMutex

	entries []*models.AuditLog
}

// NewAuditLogStore creates a new in-memory audit log store.
func NewAuditLogStore() *AuditLogStore {
	return &AuditLogStore{}
}

// Append writes one audit entry, subject to the write rule.
func (s *AuditLogStore) Append(ctx context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !writable(ctx, entry.OrgID) {
		return store.ErrTenantMismatch
	}

	clone := *entry
	s.entries = append(s.entries, &clone)

	return nil
}

// List returns the audit entries visible under the current context, newest
// first, up to limit (0 means no limit).
func (s *AuditLogStore) List(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.AuditLog
	for _, e := range s.entries {
		if !visible(ctx, e.OrgID) {
			continue
		}
		clone := *e
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

func (s *AuditLogStore) deleteByOrg(orgID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.OrgID != orgID {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}
