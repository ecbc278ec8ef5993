package store

import "errors"

// Sentinel errors shared across stores.
var (
	// ErrTenantMismatch is returned when a write names an owning
	// organization different from the active tenant context (and bypass is
	// off). The row-level policies reject such writes in the database; the
	// in-memory stores reproduce the behavior.
	ErrTenantMismatch = errors.New("row organization does not match tenant context")

	// ErrHasFinancialRecords is returned when deleting a counterparty that
	// still has invoices or bills referencing it. Financial records of
	// record restrict counterparty deletion.
	ErrHasFinancialRecords = errors.New("counterparty has financial records")

	// ErrHasMemberships is returned when deleting a user who still holds
	// organization memberships. Memberships must be removed explicitly
	// first.
	ErrHasMemberships = errors.New("user still holds organization memberships")
)
