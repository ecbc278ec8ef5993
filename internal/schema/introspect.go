package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is the minimal query surface Inspect needs. *pgxpool.Pool and
// pgx.Tx both satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ForeignKey is one foreign-key constraint as declared in the live catalog.
type ForeignKey struct {
	Constraint string
	Parent     string
	Child      string
	Column     string
	OnDelete   Action
}

// TableSecurity captures the row-security posture of one table.
type TableSecurity struct {
	RowSecurity  bool // relrowsecurity
	ForcedForAll bool // relforcerowsecurity, so table owners are covered too
}

// Catalog is a structured snapshot of the live schema's isolation-relevant
// metadata: foreign keys with their delete rules, row-security flags, and
// leading index columns. Built from pg_catalog, never from schema text.
type Catalog struct {
	ForeignKeys []ForeignKey
	Tables      map[string]TableSecurity

	// IndexedColumns maps table name to the set of columns that lead at
	// least one index on that table.
	IndexedColumns map[string]map[string]bool
}

// deleteAction maps pg_constraint.confdeltype to the policy Action.
// NO ACTION ('a') and RESTRICT ('r') both verify as Restrict; the schema is
// authored with NO ACTION so tenant-root cascades, which remove parent and
// child in a single statement, pass the end-of-statement check.
func deleteAction(confdeltype string) (Action, bool) {
	switch confdeltype {
	case "c":
		return Cascade, true
	case "n":
		return SetNull, true
	case "a", "r":
		return Restrict, true
	default:
		return "", false
	}
}

// Inspect reads foreign keys, row-security flags and index coverage for all
// ordinary tables in the public schema.
func Inspect(ctx context.Context, q Querier) (*Catalog, error) {
	cat := &Catalog{
		Tables:         make(map[string]TableSecurity),
		IndexedColumns: make(map[string]map[string]bool),
	}

	if err := inspectForeignKeys(ctx, q, cat); err != nil {
		return nil, err
	}
	if err := inspectRowSecurity(ctx, q, cat); err != nil {
		return nil, err
	}
	if err := inspectIndexes(ctx, q, cat); err != nil {
		return nil, err
	}

	return cat, nil
}

func inspectForeignKeys(ctx context.Context, q Querier, cat *Catalog) error {
	query := `
		SELECT
			con.conname,
			parent.relname AS parent,
			child.relname AS child,
			att.attname AS column_name,
			con.confdeltype::text
		FROM pg_constraint con
		JOIN pg_class child ON child.oid = con.conrelid
		JOIN pg_class parent ON parent.oid = con.confrelid
		JOIN pg_namespace ns ON ns.oid = child.relnamespace
		JOIN pg_attribute att ON att.attrelid = con.conrelid AND att.attnum = con.conkey[1]
		WHERE con.contype = 'f'
		  AND ns.nspname = 'public'
		ORDER BY child.relname, con.conname
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fk ForeignKey
		var deltype string
		if err := rows.Scan(&fk.Constraint, &fk.Parent, &fk.Child, &fk.Column, &deltype); err != nil {
			return fmt.Errorf("failed to scan foreign key: %w", err)
		}

		action, ok := deleteAction(deltype)
		if !ok {
			return fmt.Errorf("constraint %s: unrecognized delete action %q", fk.Constraint, deltype)
		}
		fk.OnDelete = action

		cat.ForeignKeys = append(cat.ForeignKeys, fk)
	}

	return rows.Err()
}

func inspectRowSecurity(ctx context.Context, q Querier, cat *Catalog) error {
	query := `
		SELECT c.relname, c.relrowsecurity, c.relforcerowsecurity
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = 'public'
		  AND c.relkind = 'r'
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query row security flags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var sec TableSecurity
		if err := rows.Scan(&name, &sec.RowSecurity, &sec.ForcedForAll); err != nil {
			return fmt.Errorf("failed to scan row security flags: %w", err)
		}
		cat.Tables[name] = sec
	}

	return rows.Err()
}

func inspectIndexes(ctx context.Context, q Querier, cat *Catalog) error {
	// Only the leading index column matters: the row-policy predicate
	// compares a single column, and a non-leading position does not make
	// the index usable for it.
	query := `
		SELECT t.relname, a.attname
		FROM pg_index i
		JOIN pg_class t ON t.oid = i.indrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = i.indkey[0]
		WHERE n.nspname = 'public'
		  AND t.relkind = 'r'
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query index coverage: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return fmt.Errorf("failed to scan index coverage: %w", err)
		}
		if cat.IndexedColumns[table] == nil {
			cat.IndexedColumns[table] = make(map[string]bool)
		}
		cat.IndexedColumns[table][column] = true
	}

	return rows.Err()
}
