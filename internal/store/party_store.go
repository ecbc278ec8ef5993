package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/operatehq/operate/internal/models"
)

// Sentinel errors for counterparty store operations
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrVendorNotFound   = errors.New("vendor not found")
)

// CustomerStore defines the interface for customer storage. Tenant-scoped.
type CustomerStore interface {
	Create(ctx context.Context, c *models.Customer) error
	Get(ctx context.Context, customerID uuid.UUID) (*models.Customer, error)
	List(ctx context.Context) ([]*models.Customer, error)

	// Delete removes a customer. Returns ErrHasFinancialRecords while any
	// invoice still references the customer.
	Delete(ctx context.Context, customerID uuid.UUID) error
}

// VendorStore defines the interface for vendor storage. Tenant-scoped, with
// the same deletion restriction as customers (bills restrict).
type VendorStore interface {
	Create(ctx context.Context, v *models.Vendor) error
	Get(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error)
	List(ctx context.Context) ([]*models.Vendor, error)
	Delete(ctx context.Context, vendorID uuid.UUID) error
}
