package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/operatehq/operate/internal/models"
)

// Sentinel errors for financial record store operations
var (
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrInvoiceAlreadyExists = errors.New("invoice number already used in this organization")
	ErrBillNotFound         = errors.New("bill not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrHasPayments          = errors.New("document has payments recorded against it")
)

// InvoiceStore defines the interface for invoice storage. Tenant-scoped.
type InvoiceStore interface {
	Create(ctx context.Context, inv *models.Invoice) error
	Get(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context) ([]*models.Invoice, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*models.Invoice, error)

	// Delete removes a draft invoice. Returns ErrHasPayments while payments
	// reference it.
	Delete(ctx context.Context, invoiceID uuid.UUID) error
}

// BillStore defines the interface for bill storage. Tenant-scoped.
type BillStore interface {
	Create(ctx context.Context, bill *models.Bill) error
	Get(ctx context.Context, billID uuid.UUID) (*models.Bill, error)
	List(ctx context.Context) ([]*models.Bill, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*models.Bill, error)
	Delete(ctx context.Context, billID uuid.UUID) error
}

// PaymentStore defines the interface for payment storage. Tenant-scoped.
// Payments are never deleted; they settle invoices or bills.
type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	Get(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error)
	List(ctx context.Context) ([]*models.Payment, error)
}
