//go:build integration

package postgres

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

func TestTenantIsolation(t *testing.T) {
	ctx := context.Background()

	_, appPool := setupPostgres(t, ctx)

	memberships := NewMembershipStore(appPool)
	audits := NewAuditLogStore(appPool)

	orgA := createOrg(t, ctx, appPool, "Acme GmbH")
	orgB := createOrg(t, ctx, appPool, "Globex AG")

	userA := createUser(t, ctx, appPool, "alice@acme.test")
	userB := createUser(t, ctx, appPool, "bob@globex.test")

	ctxA := orgCtx(t, ctx, orgA.OrgID)
	ctxB := orgCtx(t, ctx, orgB.OrgID)

	require.NoError(t, memberships.Create(ctxA, newMembership(orgA.OrgID, userA.UserID)))
	require.NoError(t, memberships.Create(ctxB, newMembership(orgB.OrgID, userB.UserID)))

	t.Run("fails closed without tenant context", func(t *testing.T) {
		got, err := memberships.List(ctx)
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("each tenant sees only its own rows", func(t *testing.T) {
		gotA, err := memberships.List(ctxA)
		require.NoError(t, err)
		require.Len(t, gotA, 1)
		require.Equal(t, userA.UserID, gotA[0].UserID)

		gotB, err := memberships.List(ctxB)
		require.NoError(t, err)
		require.Len(t, gotB, 1)
		require.Equal(t, userB.UserID, gotB[0].UserID)
	})

	t.Run("get does not leak other tenants' rows", func(t *testing.T) {
		gotB, err := memberships.List(ctxB)
		require.NoError(t, err)
		require.Len(t, gotB, 1)

		_, err = memberships.Get(ctxA, gotB[0].MembershipID)
		require.ErrorIs(t, err, store.ErrMembershipNotFound)
	})

	t.Run("rejects writes for another tenant", func(t *testing.T) {
		err := memberships.Create(ctxA, newMembership(orgB.OrgID, userA.UserID))
		require.ErrorIs(t, err, store.ErrTenantMismatch)

		gotB, err := memberships.List(ctxB)
		require.NoError(t, err)
		require.Len(t, gotB, 1)
	})

	t.Run("nested scopes restore the outer tenant", func(t *testing.T) {
		err := tenant.RunAs(ctxA, orgB.OrgID, func(inner context.Context) error {
			got, err := memberships.List(inner)
			require.NoError(t, err)
			require.Len(t, got, 1)
			require.Equal(t, orgB.OrgID, got[0].OrgID)
			return nil
		})
		require.NoError(t, err)

		got, err := memberships.List(ctxA)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, orgA.OrgID, got[0].OrgID)
	})

	t.Run("bypass spans tenants and ends with the scope", func(t *testing.T) {
		err := tenant.RunBypass(ctx, "cross-tenant report", func(bctx context.Context) error {
			got, err := memberships.List(bctx)
			require.NoError(t, err)
			require.Len(t, got, 2)
			return nil
		})
		require.NoError(t, err)

		got, err := memberships.List(ctx)
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("audited bypass records an entry before running", func(t *testing.T) {
		err := audits.RunBypass(ctx, orgA.OrgID, "system", "monthly reconciliation", func(bctx context.Context) error {
			_, err := memberships.List(bctx)
			return err
		})
		require.NoError(t, err)

		entries, err := audits.List(ctxA, 10)
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		require.Equal(t, "rls.bypass", entries[0].Action)
		require.Contains(t, entries[0].Detail, "monthly reconciliation")
	})

	t.Run("pooled connections carry no stale context", func(t *testing.T) {
		// Run a scoped query, then hammer the pool without context. The
		// transaction-local settings must never survive into a later
		// checkout of the same connection.
		_, err := memberships.List(ctxA)
		require.NoError(t, err)

		for range 20 {
			got, err := memberships.List(ctx)
			require.NoError(t, err)
			require.Empty(t, got)
		}
	})
}

func TestTenantIsolationFinancials(t *testing.T) {
	ctx := context.Background()

	_, appPool := setupPostgres(t, ctx)

	customers := NewCustomerStore(appPool)
	invoices := NewInvoiceStore(appPool)

	orgA := createOrg(t, ctx, appPool, "Acme GmbH")
	orgB := createOrg(t, ctx, appPool, "Globex AG")

	ctxA := orgCtx(t, ctx, orgA.OrgID)
	ctxB := orgCtx(t, ctx, orgB.OrgID)

	customer := newCustomer(orgA.OrgID, "Initech")
	require.NoError(t, customers.Create(ctxA, customer))

	invoice := newInvoice(orgA.OrgID, customer.CustomerID, "INV-0001")
	require.NoError(t, invoices.Create(ctxA, invoice))

	t.Run("invoices invisible to other tenants", func(t *testing.T) {
		got, err := invoices.List(ctxB)
		require.NoError(t, err)
		require.Empty(t, got)

		_, err = invoices.Get(ctxB, invoice.InvoiceID)
		require.ErrorIs(t, err, store.ErrInvoiceNotFound)
	})

	t.Run("invoice numbers unique per tenant not globally", func(t *testing.T) {
		dup := newInvoice(orgA.OrgID, customer.CustomerID, "INV-0001")
		err := invoices.Create(ctxA, dup)
		require.ErrorIs(t, err, store.ErrInvoiceAlreadyExists)

		other := newCustomer(orgB.OrgID, "Initech")
		require.NoError(t, customers.Create(ctxB, other))

		same := newInvoice(orgB.OrgID, other.CustomerID, "INV-0001")
		require.NoError(t, invoices.Create(ctxB, same))
	})
}

func newCustomer(orgID uuid.UUID, name string) *models.Customer {
	now := time.Now()
	return &models.Customer{
		CustomerID: uuid.Must(uuid.NewV7()),
		OrgID:      orgID,
		Name:       name,
		Email:      "billing@example.test",
		TaxNumber:  "DE123456789",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func newInvoice(orgID, customerID uuid.UUID, number string) *models.Invoice {
	now := time.Now()
	return &models.Invoice{
		InvoiceID:  uuid.Must(uuid.NewV7()),
		OrgID:      orgID,
		CustomerID: customerID,
		Number:     number,
		Amount:     decimalAmount("1250.50"),
		Currency:   "EUR",
		Status:     models.DocumentStatusOpen,
		IssuedAt:   &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
