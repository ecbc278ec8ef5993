package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant in the platform. Every tenant-scoped
// record belongs to exactly one organization, and deleting an organization
// is the administrative cascade that removes all of its data.
type Organization struct {
	OrgID     uuid.UUID // UUIDv7
	Name      string
	Country   string // ISO 3166-1 alpha-2, drives tax/VAT configuration
	CreatedAt time.Time
	UpdatedAt time.Time
}
