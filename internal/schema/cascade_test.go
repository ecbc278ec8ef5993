package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		rel  Relationship
		want Action
	}{
		{
			name: "tenant root owning operational data cascades",
			rel:  Relationship{Parent: "organizations", Child: "memberships", ParentIsTenantRoot: true, ChildTenantOwned: true},
			want: Cascade,
		},
		{
			name: "financial record restricts its counterparty",
			rel:  Relationship{Parent: "vendors", Child: "bills", ChildFinancialRecord: true, ParentCounterparty: true},
			want: Restrict,
		},
		{
			name: "attribution sets null",
			rel:  Relationship{Parent: "users", Child: "leave_requests", Attribution: true},
			want: SetNull,
		},
		{
			name: "derivative child cascades",
			rel:  Relationship{Parent: "users", Child: "sessions", ChildDerivative: true},
			want: Cascade,
		},
		{
			name: "unmatched relationship defaults to restrict",
			rel:  Relationship{Parent: "users", Child: "memberships"},
			want: Restrict,
		},
		{
			name: "tenant root wins over financial record flag",
			rel:  Relationship{Parent: "organizations", Child: "invoices", ParentIsTenantRoot: true, ChildTenantOwned: true, ChildFinancialRecord: true},
			want: Cascade,
		},
		{
			name: "counterparty restriction wins over attribution flag",
			rel:  Relationship{Parent: "customers", Child: "invoices", ChildFinancialRecord: true, ParentCounterparty: true, Attribution: true},
			want: Restrict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.rel))
		})
	}
}

func TestDefaultChecklist(t *testing.T) {
	cl := DefaultChecklist()

	expect := func(parent, child, column string, action Action) {
		t.Helper()
		for _, exp := range cl.Relationships {
			if exp.Parent == parent && exp.Child == child && exp.Column == column {
				require.Equal(t, action, exp.Action, "%s.%s -> %s", child, column, parent)
				return
			}
		}
		t.Fatalf("checklist missing %s.%s -> %s", child, column, parent)
	}

	// Tenant root cascades.
	expect("organizations", "memberships", "org_id", Cascade)
	expect("organizations", "audit_logs", "org_id", Cascade)
	expect("organizations", "invoices", "org_id", Cascade)

	// Financial history restricts counterparties.
	expect("customers", "invoices", "customer_id", Restrict)
	expect("vendors", "bills", "vendor_id", Restrict)

	// Attributions set null.
	expect("users", "payments", "processor_id", SetNull)
	expect("users", "leave_requests", "reviewer_id", SetNull)

	// Explicit grants and record-of-record links restrict.
	expect("users", "memberships", "user_id", Restrict)
	expect("invoices", "payments", "invoice_id", Restrict)

	// Sessions follow their user.
	expect("users", "sessions", "user_id", Cascade)

	// Every tenant-scoped table is listed with its org column.
	require.NotEmpty(t, cl.TenantTables)
	for _, tt := range cl.TenantTables {
		require.Equal(t, "org_id", tt.OrgColumn)
	}
}

func TestLoadChecklist(t *testing.T) {
	t.Run("loads valid checklist", func(t *testing.T) {
		path := writeTempChecklist(t, `
tenant_tables:
  - name: widgets
    org_column: org_id
relationships:
  - parent: organizations
    child: widgets
    column: org_id
    on_delete: cascade
  - parent: users
    child: widgets
    column: approver_id
    on_delete: set_null
`)

		cl, err := LoadChecklist(path)
		require.NoError(t, err)
		require.Len(t, cl.Relationships, 2)
		require.Equal(t, Cascade, cl.Relationships[0].Action)
		require.Equal(t, SetNull, cl.Relationships[1].Action)
		require.Len(t, cl.TenantTables, 1)
	})

	t.Run("rejects unknown action", func(t *testing.T) {
		path := writeTempChecklist(t, `
relationships:
  - parent: organizations
    child: widgets
    column: org_id
    on_delete: obliterate
`)

		_, err := LoadChecklist(path)
		require.Error(t, err)
		require.Contains(t, err.Error(), "unknown action")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadChecklist("does/not/exist.yaml")
		require.Error(t, err)
	})
}

func writeTempChecklist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checklist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
