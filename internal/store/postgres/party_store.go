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

// CustomerStore implements store.CustomerStore using PostgreSQL.
type CustomerStore struct {
	pool *pgxpool.Pool
}

// NewCustomerStore creates a new PostgreSQL-backed customer store.
func NewCustomerStore(pool *pgxpool.Pool) *CustomerStore {
	return &CustomerStore{pool: pool}
}

// Create creates a new customer within the active tenant.
func (s *CustomerStore) Create(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers (customer_id, org_id, name, email, tax_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			c.CustomerID, c.OrgID, c.Name, c.Email, c.TaxNumber, c.CreatedAt, c.UpdatedAt,
		)
		return err
	})

	if err != nil {
		mapped := mapPostgresError(err)
		if errors.Is(mapped, store.ErrTenantMismatch) {
			return store.ErrTenantMismatch
		}
		return fmt.Errorf("failed to create customer: %w", mapped)
	}

	return nil
}

// Get retrieves a customer by ID within the active tenant.
func (s *CustomerStore) Get(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	query := `
		SELECT customer_id, org_id, name, email, tax_number, created_at, updated_at
		FROM customers
		WHERE customer_id = $1
	`

	var c models.Customer
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, query, customerID).Scan(
			&c.CustomerID, &c.OrgID, &c.Name, &c.Email, &c.TaxNumber, &c.CreatedAt, &c.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", mapPostgresError(err))
	}

	return &c, nil
}

// List returns the customers visible under the current context.
func (s *CustomerStore) List(ctx context.Context) ([]*models.Customer, error) {
	query := `
		SELECT customer_id, org_id, name, email, tax_number, created_at, updated_at
		FROM customers
		ORDER BY name
	`

	var customers []*models.Customer
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		var result []*models.Customer
		for rows.Next() {
			var c models.Customer
			if err := rows.Scan(
				&c.CustomerID, &c.OrgID, &c.Name, &c.Email, &c.TaxNumber, &c.CreatedAt, &c.UpdatedAt,
			); err != nil {
				return err
			}
			result = append(result, &c)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		customers = result
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", mapPostgresError(err))
	}

	return customers, nil
}

// Delete removes a customer. Invoices referencing the customer block the
// deletion with ErrHasFinancialRecords.
func (s *CustomerStore) Delete(ctx context.Context, customerID uuid.UUID) error {
	query := `DELETE FROM customers WHERE customer_id = $1`

	var affected int64
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query, customerID)
		affected = result.RowsAffected()
		return err
	})

	if err != nil {
		mapped := mapPostgresError(err)
		if errors.Is(mapped, store.ErrHasFinancialRecords) {
			return store.ErrHasFinancialRecords
		}
		return fmt.Errorf("failed to delete customer: %w", mapped)
	}

	if affected == 0 {
		return store.ErrCustomerNotFound
	}

	return nil
}

// VendorStore implements store.VendorStore using PostgreSQL.
type VendorStore struct {
	pool *pgxpool.Pool
}

// NewVendorStore creates a new PostgreSQL-backed vendor store.
func NewVendorStore(pool *pgxpool.Pool) *VendorStore {
	return &VendorStore{pool: pool}
}

// Create creates a new vendor within the active tenant.
func (s *VendorStore) Create(ctx context.Context, v *models.Vendor) error {
	query := `
		INSERT INTO vendors (vendor_id, org_id, name, email, tax_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			v.VendorID, v.OrgID, v.Name, v.Email, v.TaxNumber, v.CreatedAt, v.UpdatedAt,
		)
		return err
	})

	if err != nil {
		mapped := mapPostgresError(err)
		if errors.Is(mapped, store.ErrTenantMismatch) {
			return store.ErrTenantMismatch
		}
		return fmt.Errorf("failed to create vendor: %w", mapped)
	}

	return nil
}

// Get retrieves a vendor by ID within the active tenant.
func (s *VendorStore) Get(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	query := `
		SELECT vendor_id, org_id, name, email, tax_number, created_at, updated_at
		FROM vendors
		WHERE vendor_id = $1
	`

	var v models.Vendor
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, query, vendorID).Scan(
			&v.VendorID, &v.OrgID, &v.Name, &v.Email, &v.TaxNumber, &v.CreatedAt, &v.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrVendorNotFound
		}
		return nil, fmt.Errorf("failed to get vendor: %w", mapPostgresError(err))
	}

	return &v, nil
}

// List returns the vendors visible under the current context.
func (s *VendorStore) List(ctx context.Context) ([]*models.Vendor, error) {
	query := `
		SELECT vendor_id, org_id, name, email, tax_number, created_at, updated_at
		FROM vendors
		ORDER BY name
	`

	var vendors []*models.Vendor
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		var result []*models.Vendor
		for rows.Next() {
			var v models.Vendor
			if err := rows.Scan(
				&v.VendorID, &v.OrgID, &v.Name, &v.Email, &v.TaxNumber, &v.CreatedAt, &v.UpdatedAt,
			); err != nil {
				return err
			}
			result = append(result, &v)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		vendors = result
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", mapPostgresError(err))
	}

	return vendors, nil
}

// Delete removes a vendor. Bills referencing the vendor block the deletion
// with ErrHasFinancialRecords.
func (s *VendorStore) Delete(ctx context.Context, vendorID uuid.UUID) error {
	query := `DELETE FROM vendors WHERE vendor_id = $1`

	var affected int64
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query, vendorID)
		affected = result.RowsAffected()
		return err
	})

	if err != nil {
		mapped := mapPostgresError(err)
		if errors.Is(mapped, store.ErrHasFinancialRecords) {
			return store.ErrHasFinancialRecords
		}
		return fmt.Errorf("failed to delete vendor: %w", mapped)
	}

	if affected == 0 {
		return store.ErrVendorNotFound
	}

	return nil
}
