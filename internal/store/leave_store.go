package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/operatehq/operate/internal/models"
)

// Sentinel errors for leave request store operations
var (
	ErrLeaveRequestNotFound = errors.New("leave request not found")
)

// LeaveRequestStore defines the interface for leave request storage.
// Tenant-scoped. The reviewer reference is an attribution that the schema
// clears to null when the reviewing user is deleted.
type LeaveRequestStore interface {
	Create(ctx context.Context, lr *models.LeaveRequest) error
	Get(ctx context.Context, leaveRequestID uuid.UUID) (*models.LeaveRequest, error)
	List(ctx context.Context) ([]*models.LeaveRequest, error)

	// Review records a review decision (approved/rejected) and the
	// reviewing user.
	Review(ctx context.Context, leaveRequestID uuid.UUID, reviewerID uuid.UUID, status string) error
}
