package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/operatehq/operate/internal/models"
	"github.com/operatehq/operate/internal/store"
)

// MembershipStore implements store.MembershipStore using PostgreSQL.
type MembershipStore struct {
	pool *pgxpool.Pool
}

// NewMembershipStore creates a new PostgreSQL-backed membership store.
func NewMembershipStore(pool *pgxpool.Pool) *MembershipStore {
	return &MembershipStore{pool: pool}
}

// Create adds a user to an organization. The WITH CHECK side of the row
// policy rejects an OrgID that differs from the active tenant, surfaced as
// ErrTenantMismatch.
func (s *MembershipStore) Create(ctx context.Context, m *models.Membership) error {
	query := `
		INSERT INTO memberships (membership_id, org_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			m.MembershipID,
			m.OrgID,
			m.UserID,
			m.Role,
			m.CreatedAt,
		)
		return err
	})

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrMembershipAlreadyExists
		}
		mapped := mapPostgresError(err)
		if errors.Is(mapped, store.ErrTenantMismatch) {
			return store.ErrTenantMismatch
		}
		return fmt.Errorf("failed to create membership: %w", mapped)
	}

	log.Debug().
		Str("membership_id", m.MembershipID.String()).
		Str("org_id", m.OrgID.String()).
		Str("user_id", m.UserID.String()).
		Str("role", m.Role).
		Msg("Created membership")

	return nil
}

// Get retrieves a membership by ID within the active tenant.
func (s *MembershipStore) Get(ctx context.Context, membershipID uuid.UUID) (*models.Membership, error) {
	query := `
		SELECT membership_id, org_id, user_id, role, created_at
		FROM memberships
		WHERE membership_id = $1
	`

	var m models.Membership
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, query, membershipID).Scan(
			&m.MembershipID,
			&m.OrgID,
			&m.UserID,
			&m.Role,
			&m.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", mapPostgresError(err))
	}

	return &m, nil
}

// List returns the memberships visible under the current context. With no
// tenant context and no bypass, the row policy yields an empty result.
func (s *MembershipStore) List(ctx context.Context) ([]*models.Membership, error) {
	query := `
		SELECT membership_id, org_id, user_id, role, created_at
		FROM memberships
		ORDER BY created_at
	`

	return s.queryMemberships(ctx, query)
}

// ListByUser returns a user's memberships across organizations. The query
// spans tenants, so callers need bypass to see anything beyond the active
// organization.
func (s *MembershipStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Membership, error) {
	query := `
		SELECT membership_id, org_id, user_id, role, created_at
		FROM memberships
		WHERE user_id = $1
		ORDER BY created_at
	`

	return s.queryMemberships(ctx, query, userID)
}

// Delete removes a membership within the active tenant.
func (s *MembershipStore) Delete(ctx context.Context, membershipID uuid.UUID) error {
	query := `DELETE FROM memberships WHERE membership_id = $1`

	var affected int64
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query, membershipID)
		affected = result.RowsAffected()
		return err
	})

	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", mapPostgresError(err))
	}

	if affected == 0 {
		return store.ErrMembershipNotFound
	}

	return nil
}

func (s *MembershipStore) queryMemberships(ctx context.Context, query string, args ...any) ([]*models.Membership, error) {
	var memberships []*models.Membership

	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		// Built locally and assigned on success only, so a retried
		// transaction cannot duplicate rows scanned by an earlier attempt.
		var result []*models.Membership
		for rows.Next() {
			var m models.Membership
			if err := rows.Scan(
				&m.MembershipID,
				&m.OrgID,
				&m.UserID,
				&m.Role,
				&m.CreatedAt,
			); err != nil {
				return err
			}
			result = append(result, &m)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		memberships = result
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", mapPostgresError(err))
	}

	return memberships, nil
}
