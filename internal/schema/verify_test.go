package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// conformingCatalog builds a catalog that satisfies the given checklist
// exactly. Tests then poke holes in it.
func conformingCatalog(cl *Checklist) *Catalog {
	cat := &Catalog{
		Tables:         make(map[string]TableSecurity),
		IndexedColumns: make(map[string]map[string]bool),
	}

	for _, exp := range cl.Relationships {
		cat.ForeignKeys = append(cat.ForeignKeys, ForeignKey{
			Constraint: exp.Child + "_" + exp.Column + "_fkey",
			Parent:     exp.Parent,
			Child:      exp.Child,
			Column:     exp.Column,
			OnDelete:   exp.Action,
		})
	}

	for _, tt := range cl.TenantTables {
		cat.Tables[tt.Name] = TableSecurity{RowSecurity: true, ForcedForAll: true}
		cat.IndexedColumns[tt.Name] = map[string]bool{tt.OrgColumn: true}
	}

	return cat
}

func TestVerify(t *testing.T) {
	t.Run("conforming schema has no violations", func(t *testing.T) {
		cl := DefaultChecklist()
		cat := conformingCatalog(cl)

		require.Empty(t, Verify(cat, cl))
	})

	t.Run("wrong delete action is reported", func(t *testing.T) {
		cl := DefaultChecklist()
		cat := conformingCatalog(cl)

		// Flip vendors<-bills from restrict to cascade.
		for i := range cat.ForeignKeys {
			if cat.ForeignKeys[i].Child == "bills" && cat.ForeignKeys[i].Column == "vendor_id" {
				cat.ForeignKeys[i].OnDelete = Cascade
			}
		}

		violations := Verify(cat, cl)
		require.Len(t, violations, 1)
		require.Equal(t, ViolationWrongAction, violations[0].Kind)
		require.Equal(t, "bills", violations[0].Table)
		require.Equal(t, Restrict, violations[0].Expected)
		require.Equal(t, Cascade, violations[0].Actual)
	})

	t.Run("missing foreign key is reported", func(t *testing.T) {
		cl := DefaultChecklist()
		cat := conformingCatalog(cl)

		kept := cat.ForeignKeys[:0]
		for _, fk := range cat.ForeignKeys {
			if fk.Child == "sessions" {
				continue
			}
			kept = append(kept, fk)
		}
		cat.ForeignKeys = kept

		violations := Verify(cat, cl)
		require.Len(t, violations, 1)
		require.Equal(t, ViolationMissingFK, violations[0].Kind)
		require.Equal(t, "sessions", violations[0].Table)
	})

	t.Run("undeclared foreign key is reported", func(t *testing.T) {
		cl := DefaultChecklist()
		cat := conformingCatalog(cl)

		cat.ForeignKeys = append(cat.ForeignKeys, ForeignKey{
			Constraint: "widgets_org_id_fkey",
			Parent:     "organizations",
			Child:      "widgets",
			Column:     "org_id",
			OnDelete:   Cascade,
		})

		violations := Verify(cat, cl)
		require.Len(t, violations, 1)
		require.Equal(t, ViolationUndeclared, violations[0].Kind)
		require.Equal(t, "widgets", violations[0].Table)
	})

	t.Run("tenant table without row security is reported", func(t *testing.T) {
		cl := DefaultChecklist()
		cat := conformingCatalog(cl)

		cat.Tables["invoices"] = TableSecurity{RowSecurity: false}

		violations := Verify(cat, cl)
		require.Len(t, violations, 1)
		require.Equal(t, ViolationNoRowSecurity, violations[0].Kind)
		require.Equal(t, "invoices", violations[0].Table)
	})

	t.Run("row security not forced is reported", func(t *testing.T) {
		cl := DefaultChecklist()
		cat := conformingCatalog(cl)

		cat.Tables["audit_logs"] = TableSecurity{RowSecurity: true, ForcedForAll: false}

		violations := Verify(cat, cl)
		require.Len(t, violations, 1)
		require.Equal(t, ViolationNotForced, violations[0].Kind)
	})

	t.Run("missing org index is reported", func(t *testing.T) {
		cl := DefaultChecklist()
		cat := conformingCatalog(cl)

		delete(cat.IndexedColumns, "payments")

		violations := Verify(cat, cl)
		require.Len(t, violations, 1)
		require.Equal(t, ViolationNoOrgIndex, violations[0].Kind)
		require.Equal(t, "payments", violations[0].Table)
	})

	t.Run("multiple violations are all collected", func(t *testing.T) {
		cl := DefaultChecklist()
		cat := conformingCatalog(cl)

		cat.Tables["memberships"] = TableSecurity{}
		delete(cat.IndexedColumns, "memberships")

		violations := Verify(cat, cl)
		require.Len(t, violations, 2)
	})
}

func TestDeleteAction(t *testing.T) {
	tests := []struct {
		confdeltype string
		want        Action
		ok          bool
	}{
		{"c", Cascade, true},
		{"n", SetNull, true},
		{"r", Restrict, true},
		{"a", Restrict, true}, // NO ACTION verifies as Restrict
		{"d", "", false},      // SET DEFAULT is never used here
	}

	for _, tt := range tests {
		got, ok := deleteAction(tt.confdeltype)
		require.Equal(t, tt.ok, ok, "confdeltype %q", tt.confdeltype)
		require.Equal(t, tt.want, got, "confdeltype %q", tt.confdeltype)
	}
}
