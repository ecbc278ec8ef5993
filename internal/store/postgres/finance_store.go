package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/operatehq/operate/internal/models"
	"github.com/operatehq/operate/internal/store"
)

// InvoiceStore implements store.InvoiceStore using PostgreSQL.
type InvoiceStore struct {
	pool *pgxpool.Pool
}

// NewInvoiceStore creates a new PostgreSQL-backed invoice store.
func NewInvoiceStore(pool *pgxpool.Pool) *InvoiceStore {
	return &InvoiceStore{pool: pool}
}

const invoiceColumns = `invoice_id, org_id, customer_id, number, amount, currency, status, issued_at, created_at, updated_at`

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var inv models.Invoice
	err := row.Scan(
		&inv.InvoiceID, &inv.OrgID, &inv.CustomerID, &inv.Number,
		&inv.Amount, &inv.Currency, &inv.Status, &inv.IssuedAt,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create creates a new invoice within the active tenant.
func (s *InvoiceStore) Create(ctx context.Context, inv *models.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			inv.InvoiceID, inv.OrgID, inv.CustomerID, inv.Number,
			inv.Amount, inv.Currency, inv.Status, inv.IssuedAt,
			inv.CreatedAt, inv.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvoiceAlreadyExists
		}
		mapped := mapPostgresError(err)
		if errors.Is(mapped, store.ErrTenantMismatch) {
			return store.ErrTenantMismatch
		}
		return fmt.Errorf("failed to create invoice: %w", mapped)
	}

	return nil
}

// Get retrieves an invoice by ID within the active tenant.
func (s *InvoiceStore) Get(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1`

	var inv *models.Invoice
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		inv, err = scanInvoice(tx.QueryRow(ctx, query, invoiceID))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", mapPostgresError(err))
	}

	return inv, nil
}

// List returns the invoices visible under the current context.
func (s *InvoiceStore) List(ctx context.Context) ([]*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY created_at DESC`
	return s.queryInvoices(ctx, query)
}

// ListByCustomer returns the active tenant's invoices for one customer.
func (s *InvoiceStore) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE customer_id = $1 ORDER BY created_at DESC`
	return s.queryInvoices(ctx, query, customerID)
}

// Delete removes an invoice. Payments referencing it block the deletion.
func (s *InvoiceStore) Delete(ctx context.Context, invoiceID uuid.UUID) error {
	query := `DELETE FROM invoices WHERE invoice_id = $1`

	var affected int64
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query, invoiceID)
		affected = result.RowsAffected()
		return err
	})

	if err != nil {
		mapped := mapPostgresError(err)
		if errors.Is(mapped, store.ErrHasPayments) {
			return store.ErrHasPayments
		}
		return fmt.Errorf("failed to delete invoice: %w", mapped)
	}

	if affected == 0 {
		return store.ErrInvoiceNotFound
	}

	return nil
}

func (s *InvoiceStore) queryInvoices(ctx context.Context, query string, args ...any) ([]*models.Invoice, error) {
	var invoices []*models.Invoice

	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		var result []*models.Invoice
		for rows.Next() {
			inv, err := scanInvoice(rows)
			if err != nil {
				return err
			}
			result = append(result, inv)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		invoices = result
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", mapPostgresError(err))
	}

	return invoices, nil
}

// BillStore implements store.BillStore using PostgreSQL.
type BillStore struct {
	pool *pgxpool.Pool
}

// NewBillStore creates a new PostgreSQL-backed bill store.
func NewBillStore(pool *pgxpool.Pool) *BillStore {
	return &BillStore{pool: pool}
}

const billColumns = `bill_id, org_id, vendor_id, number, amount, currency, status, due_at, created_at, updated_at`

func scanBill(row pgx.Row) (*models.Bill, error) {
	var b models.Bill
	err := row.Scan(
		&b.BillID, &b.OrgID, &b.VendorID, &b.Number,
		&b.Amount, &b.Currency, &b.Status, &b.DueAt,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create creates a new bill within the active tenant.
func (s *BillStore) Create(ctx context.Context, bill *models.Bill) error {
	query := `
		INSERT INTO bills (` + billColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			bill.BillID, bill.OrgID, bill.VendorID, bill.Number,
			bill.Amount, bill.Currency, bill.Status, bill.DueAt,
			bill.CreatedAt, bill.UpdatedAt,
		)
		return err
	})

	if err != nil {
		mapped := mapPostgresError(err)
		if errors.Is(mapped, store.ErrTenantMismatch) {
			return store.ErrTenantMismatch
		}
		return fmt.Errorf("failed to create bill: %w", mapped)
	}

	return nil
}

// Get retrieves a bill by ID within the active tenant.
func (s *BillStore) Get(ctx context.Context, billID uuid.UUID) (*models.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE bill_id = $1`

	var bill *models.Bill
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		bill, err = scanBill(tx.QueryRow(ctx, query, billID))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrBillNotFound
		}
		return nil, fmt.Errorf("failed to get bill: %w", mapPostgresError(err))
	}

	return bill, nil
}

// List returns the bills visible under the current context.
func (s *BillStore) List(ctx context.Context) ([]*models.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills ORDER BY created_at DESC`
	return s.queryBills(ctx, query)
}

// ListByVendor returns the active tenant's bills from one vendor.
func (s *BillStore) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*models.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE vendor_id = $1 ORDER BY created_at DESC`
	return s.queryBills(ctx, query, vendorID)
}

// Delete removes a bill. Payments referencing it block the deletion.
func (s *BillStore) Delete(ctx context.Context, billID uuid.UUID) error {
	query := `DELETE FROM bills WHERE bill_id = $1`

	var affected int64
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query, billID)
		affected = result.RowsAffected()
		return err
	})

	if err != nil {
		mapped := mapPostgresError(err)
		if errors.Is(mapped, store.ErrHasPayments) {
			return store.ErrHasPayments
		}
		return fmt.Errorf("failed to delete bill: %w", mapped)
	}

	if affected == 0 {
		return store.ErrBillNotFound
	}

	return nil
}

func (s *BillStore) queryBills(ctx context.Context, query string, args ...any) ([]*models.Bill, error) {
	var bills []*models.Bill

	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		var result []*models.Bill
		for rows.Next() {
			bill, err := scanBill(rows)
			if err != nil {
				return err
			}
			result = append(result, bill)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		bills = result
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", mapPostgresError(err))
	}

	return bills, nil
}

// PaymentStore implements store.PaymentStore using PostgreSQL.
type PaymentStore struct {
	pool *pgxpool.Pool
}

// NewPaymentStore creates a new PostgreSQL-backed payment store.
func NewPaymentStore(pool *pgxpool.Pool) *PaymentStore {
	return &PaymentStore{pool: pool}
}

const paymentColumns = `payment_id, org_id, invoice_id, bill_id, amount, currency, processor_id, paid_at, created_at`

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.PaymentID, &p.OrgID, &p.InvoiceID, &p.BillID,
		&p.Amount, &p.Currency, &p.ProcessorID, &p.PaidAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create records a payment within the active tenant. Exactly one of
// InvoiceID/BillID must be set; the table check enforces it.
func (s *PaymentStore) Create(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			p.PaymentID, p.OrgID, p.InvoiceID, p.BillID,
			p.Amount, p.Currency, p.ProcessorID, p.PaidAt, p.CreatedAt,
		)
		return err
	})

	if err != nil {
		mapped := mapPostgresError(err)
		if errors.Is(mapped, store.ErrTenantMismatch) {
			return store.ErrTenantMismatch
		}
		return fmt.Errorf("failed to create payment: %w", mapped)
	}

	return nil
}

// Get retrieves a payment by ID within the active tenant.
func (s *PaymentStore) Get(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1`

	var p *models.Payment
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		p, err = scanPayment(tx.QueryRow(ctx, query, paymentID))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", mapPostgresError(err))
	}

	return p, nil
}

// List returns the payments visible under the current context.
func (s *PaymentStore) List(ctx context.Context) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY paid_at DESC`

	var payments []*models.Payment
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		var result []*models.Payment
		for rows.Next() {
			p, err := scanPayment(rows)
			if err != nil {
				return err
			}
			result = append(result, p)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		payments = result
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", mapPostgresError(err))
	}

	return payments, nil
}
