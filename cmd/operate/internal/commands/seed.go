package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/operatehq/operate/internal/models"
	"github.com/operatehq/operate/internal/store/postgres"
)

// SeedCmd loads fixture data: a handful of organizations, each with a user,
// membership, counterparties and financial records. Useful for demos and for
// exercising the isolation policies by hand.
type SeedCmd struct {
	DSN  string `help:"PostgreSQL connection string" env:"DATABASE_URL" required:""`
	Orgs int    `help:"Number of organizations to create" default:"2"`
}

func (s *SeedCmd) Run(ctx context.Context, globals *Globals) error {
	pool, err := setup(ctx, globals, s.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	orgStore := postgres.NewOrganizationStore(pool)
	userStore := postgres.NewUserStore(pool)
	memberStore := postgres.NewMembershipStore(pool)
	customerStore := postgres.NewCustomerStore(pool)
	vendorStore := postgres.NewVendorStore(pool)
	invoiceStore := postgres.NewInvoiceStore(pool)
	billStore := postgres.NewBillStore(pool)
	paymentStore := postgres.NewPaymentStore(pool)
	auditStore := postgres.NewAuditLogStore(pool)

	for i := 0; i < s.Orgs; i++ {
		now := time.Now()
		orgID := uuid.Must(uuid.NewV7())

		user := &models.User{
			UserID:    uuid.Must(uuid.NewV7()),
			Email:     fmt.Sprintf("owner-%d@example.com", i+1),
			Name:      fmt.Sprintf("Owner %d", i+1),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := userStore.Create(ctx, user); err != nil {
			return err
		}

		err := auditStore.RunBypass(ctx, orgID, "cli", "seed fixture data", func(bctx context.Context) error {
			org := &models.Organization{
				OrgID:     orgID,
				Name:      fmt.Sprintf("Fixture Org %d", i+1),
				Country:   "DE",
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := orgStore.Create(bctx, org); err != nil {
				return err
			}

			if err := memberStore.Create(bctx, &models.Membership{
				MembershipID: uuid.Must(uuid.NewV7()),
				OrgID:        orgID,
				UserID:       user.UserID,
				Role:         models.RoleAdmin,
				CreatedAt:    now,
			}); err != nil {
				return err
			}

			customer := &models.Customer{
				CustomerID: uuid.Must(uuid.NewV7()),
				OrgID:      orgID,
				Name:       "Globex Corp",
				Email:      "ap@globex.example",
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := customerStore.Create(bctx, customer); err != nil {
				return err
			}

			vendor := &models.Vendor{
				VendorID:  uuid.Must(uuid.NewV7()),
				OrgID:     orgID,
				Name:      "Initech Supplies",
				Email:     "ar@initech.example",
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := vendorStore.Create(bctx, vendor); err != nil {
				return err
			}

			issued := now
			invoice := &models.Invoice{
				InvoiceID:  uuid.Must(uuid.NewV7()),
				OrgID:      orgID,
				CustomerID: customer.CustomerID,
				Number:     fmt.Sprintf("INV-%d-0001", i+1),
				Amount:     decimal.NewFromFloat(1250.50),
				Currency:   "EUR",
				Status:     models.DocumentStatusOpen,
				IssuedAt:   &issued,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := invoiceStore.Create(bctx, invoice); err != nil {
				return err
			}

			bill := &models.Bill{
				BillID:    uuid.Must(uuid.NewV7()),
				OrgID:     orgID,
				VendorID:  vendor.VendorID,
				Number:    fmt.Sprintf("BILL-%d-0001", i+1),
				Amount:    decimal.NewFromFloat(420.00),
				Currency:  "EUR",
				Status:    models.DocumentStatusOpen,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := billStore.Create(bctx, bill); err != nil {
				return err
			}

			return paymentStore.Create(bctx, &models.Payment{
				PaymentID:   uuid.Must(uuid.NewV7()),
				OrgID:       orgID,
				InvoiceID:   &invoice.InvoiceID,
				Amount:      decimal.NewFromFloat(1250.50),
				Currency:    "EUR",
				ProcessorID: &user.UserID,
				PaidAt:      now,
				CreatedAt:   now,
			})
		})
		if err != nil {
			return err
		}

		log.Info().Str("org_id", orgID.String()).Msg("Seeded organization")
	}

	return nil
}
