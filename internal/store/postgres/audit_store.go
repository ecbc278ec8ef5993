package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/operatehq/operate/internal/models"
	"github.com/operatehq/operate/internal/store"
	"github.com/operatehq/operate/internal/tenant"
)

// AuditLogStore implements store.AuditLogStore using PostgreSQL.
type AuditLogStore struct {
	pool *pgxpool.Pool
}

// NewAuditLogStore creates a new PostgreSQL-backed audit log store.
func NewAuditLogStore(pool *pgxpool.Pool) *AuditLogStore {
	return &AuditLogStore{pool: pool}
}

// Append writes one audit entry. The row policy's WITH CHECK rejects an
// OrgID outside the active tenant unless bypass is on.
func (s *AuditLogStore) Append(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (audit_id, org_id, actor, action, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			entry.AuditID,
			entry.OrgID,
			entry.Actor,
			entry.Action,
			entry.Detail,
			entry.CreatedAt,
		)
		return err
	})

	if err != nil {
		mapped := mapPostgresError(err)
		if errors.Is(mapped, store.ErrTenantMismatch) {
			return store.ErrTenantMismatch
		}
		return fmt.Errorf("failed to append audit entry: %w", mapped)
	}

	return nil
}

// List returns the audit entries visible under the current context, newest
// first. limit of 0 means no limit.
func (s *AuditLogStore) List(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	query := `
		SELECT audit_id, org_id, actor, action, detail, created_at
		FROM audit_logs
		ORDER BY created_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	var entries []*models.AuditLog
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		var result []*models.AuditLog
		for rows.Next() {
			var e models.AuditLog
			if err := rows.Scan(
				&e.AuditID,
				&e.OrgID,
				&e.Actor,
				&e.Action,
				&e.Detail,
				&e.CreatedAt,
			); err != nil {
				return err
			}
			result = append(result, &e)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		entries = result
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", mapPostgresError(err))
	}

	return entries, nil
}

// RunBypass executes fn with row security bypassed, first appending an audit
// entry recording why. The audit write is a precondition: if it fails, fn
// never runs. orgID names the organization being operated on, since audit
// entries are tenant-scoped.
func (s *AuditLogStore) RunBypass(ctx context.Context, orgID uuid.UUID, actor, reason string, fn func(ctx context.Context) error) error {
	return tenant.RunBypass(ctx, reason, func(bctx context.Context) error {
		entry := &models.AuditLog{
			AuditID:   uuid.Must(uuid.NewV7()),
			OrgID:     orgID,
			Actor:     actor,
			Action:    "rls.bypass",
			Detail:    reason,
			CreatedAt: time.Now(),
		}
		if err := s.Append(bctx, entry); err != nil {
			return fmt.Errorf("failed to record bypass activation: %w", err)
		}

		return fn(bctx)
	})
}
