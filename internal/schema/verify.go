package schema

import (
	"errors"
	"fmt"
)

// ErrPolicyViolation is returned by Verify when the live schema diverges
// from the checklist. It marks a schema-authoring defect to be fixed at
// build/CI time, never a runtime condition.
var ErrPolicyViolation = errors.New("schema violates cascade/isolation policy")

// ViolationKind classifies a verification failure.
type ViolationKind string

const (
	// ViolationMissingFK: a checklist relationship has no foreign key in
	// the live schema at all.
	ViolationMissingFK ViolationKind = "missing_foreign_key"

	// ViolationWrongAction: the foreign key exists but declares a different
	// deletion behavior than the policy requires.
	ViolationWrongAction ViolationKind = "wrong_delete_action"

	// ViolationUndeclared: the live schema carries a foreign key the
	// checklist says nothing about. Every relationship must have an
	// explicit policy decision.
	ViolationUndeclared ViolationKind = "undeclared_relationship"

	// ViolationNoRowSecurity: a tenant-scoped table does not have row-level
	// security enabled.
	ViolationNoRowSecurity ViolationKind = "row_security_disabled"

	// ViolationNotForced: row security is enabled but not forced, leaving
	// the table owner exempt from the policy.
	ViolationNotForced ViolationKind = "row_security_not_forced"

	// ViolationNoOrgIndex: the owning-organization column has no leading
	// index, so the policy predicate cannot use one.
	ViolationNoOrgIndex ViolationKind = "org_column_not_indexed"
)

// Violation is one divergence between the live schema and the policy.
type Violation struct {
	Kind     ViolationKind `json:"kind"`
	Table    string        `json:"table"`
	Parent   string        `json:"parent,omitempty"`
	Column   string        `json:"column,omitempty"`
	Expected Action        `json:"expected,omitempty"`
	Actual   Action        `json:"actual,omitempty"`
	Detail   string        `json:"detail"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Detail)
}

// Verify checks the catalog snapshot against the checklist and returns every
// divergence found. An empty slice means the schema conforms; callers gate
// CI on len(violations) == 0.
func Verify(cat *Catalog, cl *Checklist) []Violation {
	var violations []Violation

	violations = append(violations, verifyRelationships(cat, cl)...)
	violations = append(violations, verifyTenantTables(cat, cl)...)

	return violations
}

func verifyRelationships(cat *Catalog, cl *Checklist) []Violation {
	var violations []Violation

	type fkKey struct{ parent, child, column string }

	live := make(map[fkKey]ForeignKey, len(cat.ForeignKeys))
	for _, fk := range cat.ForeignKeys {
		live[fkKey{fk.Parent, fk.Child, fk.Column}] = fk
	}

	declared := make(map[fkKey]bool, len(cl.Relationships))
	for _, exp := range cl.Relationships {
		key := fkKey{exp.Parent, exp.Child, exp.Column}
		declared[key] = true

		fk, ok := live[key]
		if !ok {
			violations = append(violations, Violation{
				Kind:     ViolationMissingFK,
				Table:    exp.Child,
				Parent:   exp.Parent,
				Column:   exp.Column,
				Expected: exp.Action,
				Detail:   fmt.Sprintf("%s.%s -> %s: foreign key not found in live schema", exp.Child, exp.Column, exp.Parent),
			})
			continue
		}

		if fk.OnDelete != exp.Action {
			violations = append(violations, Violation{
				Kind:     ViolationWrongAction,
				Table:    exp.Child,
				Parent:   exp.Parent,
				Column:   exp.Column,
				Expected: exp.Action,
				Actual:   fk.OnDelete,
				Detail: fmt.Sprintf("%s.%s -> %s: declared ON DELETE %s, policy requires %s (constraint %s)",
					exp.Child, exp.Column, exp.Parent, fk.OnDelete, exp.Action, fk.Constraint),
			})
		}
	}

	for _, fk := range cat.ForeignKeys {
		if declared[fkKey{fk.Parent, fk.Child, fk.Column}] {
			continue
		}
		violations = append(violations, Violation{
			Kind:   ViolationUndeclared,
			Table:  fk.Child,
			Parent: fk.Parent,
			Column: fk.Column,
			Actual: fk.OnDelete,
			Detail: fmt.Sprintf("%s.%s -> %s: foreign key has no policy declaration (constraint %s)",
				fk.Child, fk.Column, fk.Parent, fk.Constraint),
		})
	}

	return violations
}

func verifyTenantTables(cat *Catalog, cl *Checklist) []Violation {
	var violations []Violation

	for _, tt := range cl.TenantTables {
		sec, ok := cat.Tables[tt.Name]
		if !ok || !sec.RowSecurity {
			violations = append(violations, Violation{
				Kind:   ViolationNoRowSecurity,
				Table:  tt.Name,
				Column: tt.OrgColumn,
				Detail: fmt.Sprintf("%s: tenant-scoped table without row-level security", tt.Name),
			})
		} else if !sec.ForcedForAll {
			violations = append(violations, Violation{
				Kind:   ViolationNotForced,
				Table:  tt.Name,
				Column: tt.OrgColumn,
				Detail: fmt.Sprintf("%s: row-level security enabled but not forced; table owner is exempt", tt.Name),
			})
		}

		if !cat.IndexedColumns[tt.Name][tt.OrgColumn] {
			violations = append(violations, Violation{
				Kind:   ViolationNoOrgIndex,
				Table:  tt.Name,
				Column: tt.OrgColumn,
				Detail: fmt.Sprintf("%s.%s: owning-organization column has no leading index", tt.Name, tt.OrgColumn),
			})
		}
	}

	return violations
}
