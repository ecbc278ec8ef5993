package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a counterparty that receives invoices. Tenant-scoped.
// Customers with invoice history cannot be deleted (financial records
// restrict counterparty deletion).
type Customer struct {
	CustomerID uuid.UUID // UUIDv7
	OrgID      uuid.UUID // owning tenant
	Name       string
	Email      string
	TaxNumber  string // VAT/registration number, validated elsewhere
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Vendor is a counterparty that sends bills. Tenant-scoped, with the same
// deletion restriction as Customer.
type Vendor struct {
	VendorID  uuid.UUID // UUIDv7
	OrgID     uuid.UUID // owning tenant
	Name      string
	Email     string
	TaxNumber string
	CreatedAt time.Time
	UpdatedAt time.Time
}
