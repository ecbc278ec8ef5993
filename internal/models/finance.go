package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Document statuses shared by invoices and bills.
const (
	DocumentStatusDraft = "draft"
	DocumentStatusOpen  = "open"
	DocumentStatusPaid  = "paid"
	DocumentStatusVoid  = "void"
)

// Invoice is a financial record of record issued to a customer.
// Tenant-scoped. The customer reference restricts customer deletion while
// the invoice exists.
type Invoice struct {
	InvoiceID  uuid.UUID // UUIDv7
	OrgID      uuid.UUID // owning tenant
	CustomerID uuid.UUID
	Number     string // sequential per org, assigned at issue time
	Amount     decimal.Decimal
	Currency   string // ISO 4217
	Status     string
	IssuedAt   *time.Time // nil while draft
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Bill is a payable received from a vendor. Tenant-scoped, restricts vendor
// deletion while it exists.
type Bill struct {
	BillID    uuid.UUID // UUIDv7
	OrgID     uuid.UUID // owning tenant
	VendorID  uuid.UUID
	Number    string // vendor's reference
	Amount    decimal.Decimal
	Currency  string
	Status    string
	DueAt     *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Payment settles an invoice or a bill (exactly one of the two references is
// set). ProcessorID is an attribution to the user who recorded the payment;
// deleting that user clears the attribution but keeps the payment.
type Payment struct {
	PaymentID   uuid.UUID // UUIDv7
	OrgID       uuid.UUID // owning tenant
	InvoiceID   *uuid.UUID
	BillID      *uuid.UUID
	Amount      decimal.Decimal
	Currency    string
	ProcessorID *uuid.UUID // user attribution, nullable
	PaidAt      time.Time
	CreatedAt   time.Time
}
