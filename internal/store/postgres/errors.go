package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/operatehq/operate/internal/store"
)

// isRetryable reports whether the error is a transient transaction conflict
// worth retrying.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}

// isUniqueViolation reports whether the error is a unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.UniqueViolation
}

// isPolicyDenial reports whether the error is a row-level security WITH
// CHECK rejection: a write that named an organization other than the active
// tenant.
func isPolicyDenial(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.InsufficientPrivilege &&
		strings.Contains(pgErr.Message, "row-level security")
}

// mapPostgresError maps PostgreSQL errors to the store's sentinel errors.
// Restrict-style foreign keys surface as the domain error for the blocked
// deletion; RLS write rejections surface as ErrTenantMismatch.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if isPolicyDenial(err) {
		return store.ErrTenantMismatch
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.ForeignKeyViolation:
		switch pgErr.ConstraintName {
		case "invoices_customer_id_fkey", "bills_vendor_id_fkey":
			return store.ErrHasFinancialRecords
		case "memberships_user_id_fkey":
			return store.ErrHasMemberships
		case "payments_invoice_id_fkey", "payments_bill_id_fkey":
			return store.ErrHasPayments
		}
		return fmt.Errorf("foreign key violation: %s: %w", pgErr.ConstraintName, err)

	case pgerrcode.UniqueViolation:
		return fmt.Errorf("unique constraint violation: %s: %w", pgErr.ConstraintName, err)

	case pgerrcode.CheckViolation:
		return fmt.Errorf("check constraint violation: %s: %w", pgErr.ConstraintName, err)

	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return fmt.Errorf("transaction conflict (retryable): %w", err)

	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure,
		pgerrcode.CannotConnectNow,
		pgerrcode.SQLClientUnableToEstablishSQLConnection:
		return fmt.Errorf("database connection error: %w", err)

	case pgerrcode.QueryCanceled:
		return fmt.Errorf("query canceled: %w", err)

	default:
		return fmt.Errorf("postgres error [%s]: %s: %w", pgErr.Code, pgErr.Message, err)
	}
}
