package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/operatehq/operate/internal/models"
	"github.com/operatehq/operate/internal/store"
	"github.com/operatehq/operate/internal/tenant"
)

func appendEntry(t *testing.T, st *AuditLogStore, orgID uuid.UUID, action string, at time.Time) {
	t.Helper()
	err := tenant.RunAs(context.Background(), orgID, func(ctx context.Context) error {
		return st.Append(ctx, &models.AuditLog{
			AuditID:   uuid.Must(uuid.NewV7()),
			OrgID:     orgID,
			Actor:     "system",
			Action:    action,
			CreatedAt: at,
		})
	})
	require.NoError(t, err)
}

func TestAuditLogStore_BypassSpansOrganizations(t *testing.T) {
	st := NewAuditLogStore()
	orgA := uuid.Must(uuid.NewV7())
	orgB := uuid.Must(uuid.NewV7())

	appendEntry(t, st, orgA, "invoice.create", time.Now())
	appendEntry(t, st, orgB, "bill.create", time.Now())

	err := tenant.RunBypass(context.Background(), "compliance export", func(ctx context.Context) error {
		got, err := st.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, got, 2)

		orgs := map[uuid.UUID]bool{}
		for _, e := range got {
			orgs[e.OrgID] = true
		}
		require.Len(t, orgs, 2)
		return nil
	})
	require.NoError(t, err)

	// After bypass ends, no context means no rows.
	got, err := st.List(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestAuditLogStore_NewestFirstAndLimit(t *testing.T) {
	st := NewAuditLogStore()
	orgID := uuid.Must(uuid.NewV7())

	base := time.Now()
	appendEntry(t, st, orgID, "first", base.Add(-2*time.Hour))
	appendEntry(t, st, orgID, "second", base.Add(-time.Hour))
	appendEntry(t, st, orgID, "third", base)

	err := tenant.RunAs(context.Background(), orgID, func(ctx context.Context) error {
		got, err := st.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, "third", got[0].Action)
		require.Equal(t, "second", got[1].Action)
		return nil
	})
	require.NoError(t, err)
}

func TestAuditLogStore_CrossTenantAppendRejected(t *testing.T) {
	st := NewAuditLogStore()
	orgA := uuid.Must(uuid.NewV7())
	orgB := uuid.Must(uuid.NewV7())

	err := tenant.RunAs(context.Background(), orgA, func(ctx context.Context) error {
		return st.Append(ctx, &models.AuditLog{
			AuditID:   uuid.Must(uuid.NewV7()),
			OrgID:     orgB,
			Actor:     "system",
			Action:    "sneaky",
			CreatedAt: time.Now(),
		})
	})
	require.ErrorIs(t, err, store.ErrTenantMismatch)
}
