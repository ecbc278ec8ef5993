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
)

// LeaveRequestStore implements store.LeaveRequestStore using PostgreSQL.
type LeaveRequestStore struct {
	pool *pgxpool.Pool
}

// NewLeaveRequestStore creates a new PostgreSQL-backed leave request store.
func NewLeaveRequestStore(pool *pgxpool.Pool) *LeaveRequestStore {
	return &LeaveRequestStore{pool: pool}
}

const leaveColumns = `leave_request_id, org_id, requester_id, reviewer_id, start_date, end_date, status, created_at, updated_at`

func scanLeaveRequest(row pgx.Row) (*models.LeaveRequest, error) {
	var lr models.LeaveRequest
	err := row.Scan(
		&lr.LeaveRequestID, &lr.OrgID, &lr.RequesterID, &lr.ReviewerID,
		&lr.StartDate, &lr.EndDate, &lr.Status, &lr.CreatedAt, &lr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lr, nil
}

// Create creates a new leave request within the active tenant.
func (s *LeaveRequestStore) Create(ctx context.Context, lr *models.LeaveRequest) error {
	query := `
		INSERT INTO leave_requests (` + leaveColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			lr.LeaveRequestID, lr.OrgID, lr.RequesterID, lr.ReviewerID,
			lr.StartDate, lr.EndDate, lr.Status, lr.CreatedAt, lr.UpdatedAt,
		)
		return err
	})

	if err != nil {
		mapped := mapPostgresError(err)
		if errors.Is(mapped, store.ErrTenantMismatch) {
			return store.ErrTenantMismatch
		}
		return fmt.Errorf("failed to create leave request: %w", mapped)
	}

	return nil
}

// Get retrieves a leave request by ID within the active tenant.
func (s *LeaveRequestStore) Get(ctx context.Context, leaveRequestID uuid.UUID) (*models.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE leave_request_id = $1`

	var lr *models.LeaveRequest
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		lr, err = scanLeaveRequest(tx.QueryRow(ctx, query, leaveRequestID))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrLeaveRequestNotFound
		}
		return nil, fmt.Errorf("failed to get leave request: %w", mapPostgresError(err))
	}

	return lr, nil
}

// List returns the leave requests visible under the current context.
func (s *LeaveRequestStore) List(ctx context.Context) ([]*models.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests ORDER BY created_at DESC`

	var requests []*models.LeaveRequest
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		var result []*models.LeaveRequest
		for rows.Next() {
			lr, err := scanLeaveRequest(rows)
			if err != nil {
				return err
			}
			result = append(result, lr)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		requests = result
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", mapPostgresError(err))
	}

	return requests, nil
}

// Review records a review decision and the reviewing user.
func (s *LeaveRequestStore) Review(ctx context.Context, leaveRequestID uuid.UUID, reviewerID uuid.UUID, status string) error {
	if status != models.LeaveStatusApproved && status != models.LeaveStatusRejected {
		return fmt.Errorf("invalid review status %q", status)
	}

	query := `
		UPDATE leave_requests SET
			reviewer_id = $2,
			status = $3,
			updated_at = $4
		WHERE leave_request_id = $1
	`

	var affected int64
	err := withTenantTx(ctx, s.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query, leaveRequestID, reviewerID, status, time.Now())
		affected = result.RowsAffected()
		return err
	})

	if err != nil {
		return fmt.Errorf("failed to review leave request: %w", mapPostgresError(err))
	}

	if affected == 0 {
		return store.ErrLeaveRequestNotFound
	}

	return nil
}
