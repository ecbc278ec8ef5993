package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/operatehq/operate/internal/models"
	"github.com/operatehq/operate/internal/store"
)

// OrganizationStore implements store.OrganizationStore using PostgreSQL.
// The organizations table is row-secured like every other tenant-scoped
// table: without bypass a caller sees only its own organization.
type OrganizationStore struct {
	pool *pgxpool.Pool
}

// NewOrganizationStore creates a new PostgreSQL-backed organization store.
// It shares the connection pool with the other stores.
func NewOrganizationStore(pool *pgxpool.Pool) *OrganizationStore {
	return &OrganizationStore{pool: pool}
}

// Create creates a new organization. The row policy requires either bypass
// or a tenant context already naming this org ID; signup flows run under
// bypass.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (org_id, name, country, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			org.OrgID,
			org.Name,
			org.Country,
			org.CreatedAt,
			org.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrOrganizationAlreadyExists
		}
		return fmt.Errorf("failed to create organization: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("org_id", org.OrgID.String()).
		Str("name", org.Name).
		Msg("Created organization")

	return nil
}

// Get retrieves an organization by ID. A cross-tenant ID reports not-found
// rather than denied; existence must not leak.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	query := `
		SELECT org_id, name, country, created_at, updated_at
		FROM organizations
		WHERE org_id = $1
	`

	var org models.Organization
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, query, orgID).Scan(
			&org.OrgID,
			&org.Name,
			&org.Country,
			&org.CreatedAt,
			&org.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", mapPostgresError(err))
	}

	return &org, nil
}

// Update updates an existing organization.
func (s *OrganizationStore) Update(ctx context.Context, org *models.Organization) error {
	org.UpdatedAt = time.Now()

	query := `
		UPDATE organizations SET
			name = $2,
			country = $3,
			updated_at = $4
		WHERE org_id = $1
	`

	var affected int64
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query,
			org.OrgID,
			org.Name,
			org.Country,
			org.UpdatedAt,
		)
		affected = result.RowsAffected()
		return err
	})

	if err != nil {
		return fmt.Errorf("failed to update organization: %w", mapPostgresError(err))
	}

	if affected == 0 {
		return store.ErrOrganizationNotFound
	}

	return nil
}

// Delete removes an organization and cascades to everything it owns. This is
// the administrative cascade: run it under bypass with a reason.
func (s *OrganizationStore) Delete(ctx context.Context, orgID uuid.UUID) error {
	query := `DELETE FROM organizations WHERE org_id = $1`

	var affected int64
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query, orgID)
		affected = result.RowsAffected()
		return err
	})

	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", mapPostgresError(err))
	}

	if affected == 0 {
		return store.ErrOrganizationNotFound
	}

	log.Info().
		Str("org_id", orgID.String()).
		Msg("Deleted organization and all tenant-owned data")

	return nil
}

// List returns the organizations visible under the current context: all of
// them under bypass, at most the caller's own otherwise.
func (s *OrganizationStore) List(ctx context.Context) ([]*models.Organization, error) {
	query := `
		SELECT org_id, name, country, created_at, updated_at
		FROM organizations
		ORDER BY created_at DESC
	`

	var orgs []*models.Organization
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		var result []*models.Organization
		for rows.Next() {
			var org models.Organization
			if err := rows.Scan(
				&org.OrgID,
				&org.Name,
				&org.Country,
				&org.CreatedAt,
				&org.UpdatedAt,
			); err != nil {
				return err
			}
			result = append(result, &org)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		orgs = result
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", mapPostgresError(err))
	}

	return orgs, nil
}
