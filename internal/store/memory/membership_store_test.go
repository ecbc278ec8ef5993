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

func newMembership(orgID uuid.UUID) *models.Membership {
	return &models.Membership{
		MembershipID: uuid.Must(uuid.NewV7()),
		OrgID:        orgID,
		UserID:       uuid.Must(uuid.NewV7()),
		Role:         models.RoleAccountant,
		CreatedAt:    time.Now(),
	}
}

// seedTwoOrgs stores one membership per org under bypass and returns both
// org IDs.
func seedTwoOrgs(t *testing.T, st *MembershipStore) (uuid.UUID, uuid.UUID) {
	t.Helper()

	orgA := uuid.Must(uuid.NewV7())
	orgB := uuid.Must(uuid.NewV7())

	err := tenant.RunBypass(context.Background(), "test fixtures", func(ctx context.Context) error {
		if err := st.Create(ctx, newMembership(orgA)); err != nil {
			return err
		}
		return st.Create(ctx, newMembership(orgB))
	})
	require.NoError(t, err)

	return orgA, orgB
}

func TestMembershipStore_FailClosedDefault(t *testing.T) {
	st := NewMembershipStore()
	seedTwoOrgs(t, st)

	// No context, no bypass: empty result, not an error, even though rows
	// exist for multiple orgs.
	got, err := st.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMembershipStore_Isolation(t *testing.T) {
	st := NewMembershipStore()
	orgA, orgB := seedTwoOrgs(t, st)

	err := tenant.RunAs(context.Background(), orgA, func(ctx context.Context) error {
		got, err := st.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		for _, m := range got {
			require.Equal(t, orgA, m.OrgID)
			require.NotEqual(t, orgB, m.OrgID)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestMembershipStore_WriteContainment(t *testing.T) {
	st := NewMembershipStore()
	orgA := uuid.Must(uuid.NewV7())
	orgB := uuid.Must(uuid.NewV7())

	t.Run("cross-tenant insert rejected", func(t *testing.T) {
		err := tenant.RunAs(context.Background(), orgA, func(ctx context.Context) error {
			return st.Create(ctx, newMembership(orgB))
		})
		require.ErrorIs(t, err, store.ErrTenantMismatch)
	})

	t.Run("insert with no context rejected", func(t *testing.T) {
		err := st.Create(context.Background(), newMembership(orgA))
		require.ErrorIs(t, err, store.ErrTenantMismatch)
	})

	t.Run("matching insert accepted", func(t *testing.T) {
		err := tenant.RunAs(context.Background(), orgA, func(ctx context.Context) error {
			return st.Create(ctx, newMembership(orgA))
		})
		require.NoError(t, err)
	})
}

func TestMembershipStore_BypassVisibility(t *testing.T) {
	st := NewMembershipStore()
	seedTwoOrgs(t, st)
	ctx := context.Background()

	err := tenant.RunBypass(ctx, "support investigation", func(bctx context.Context) error {
		got, err := st.List(bctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		return nil
	})
	require.NoError(t, err)

	// Immediately after scope exit the same query fails closed again.
	got, err := st.List(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMembershipStore_NestedScopes(t *testing.T) {
	st := NewMembershipStore()
	orgA, orgB := seedTwoOrgs(t, st)

	err := tenant.RunAs(context.Background(), orgA, func(ctxA context.Context) error {
		err := tenant.RunAs(ctxA, orgB, func(ctxB context.Context) error {
			got, err := st.List(ctxB)
			require.NoError(t, err)
			require.Len(t, got, 1)
			require.Equal(t, orgB, got[0].OrgID)
			return nil
		})
		require.NoError(t, err)

		// Back at the outer scope only orgA rows are visible.
		got, err := st.List(ctxA)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, orgA, got[0].OrgID)
		return nil
	})
	require.NoError(t, err)
}

func TestMembershipStore_GetDoesNotLeakExistence(t *testing.T) {
	st := NewMembershipStore()
	orgA, orgB := seedTwoOrgs(t, st)

	var foreignID uuid.UUID
	err := tenant.RunBypass(context.Background(), "test setup", func(ctx context.Context) error {
		all, err := st.List(ctx)
		require.NoError(t, err)
		for _, m := range all {
			if m.OrgID == orgB {
				foreignID = m.MembershipID
			}
		}
		return nil
	})
	require.NoError(t, err)

	// A cross-tenant Get reports not-found, indistinguishable from a row
	// that truly does not exist.
	err = tenant.RunAs(context.Background(), orgA, func(ctx context.Context) error {
		_, err := st.Get(ctx, foreignID)
		return err
	})
	require.ErrorIs(t, err, store.ErrMembershipNotFound)
}

func TestMembershipStore_DuplicateMember(t *testing.T) {
	st := NewMembershipStore()
	orgID := uuid.Must(uuid.NewV7())
	userID := uuid.Must(uuid.NewV7())

	err := tenant.RunAs(context.Background(), orgID, func(ctx context.Context) error {
		m := newMembership(orgID)
		m.UserID = userID
		require.NoError(t, st.Create(ctx, m))

		dup := newMembership(orgID)
		dup.UserID = userID
		return st.Create(ctx, dup)
	})
	require.ErrorIs(t, err, store.ErrMembershipAlreadyExists)
}
