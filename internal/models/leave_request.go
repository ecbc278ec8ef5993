package models

import (
	"time"

	"github.com/google/uuid"
)

// Leave request statuses.
const (
	LeaveStatusPending  = "pending"
	LeaveStatusApproved = "approved"
	LeaveStatusRejected = "rejected"
)

// LeaveRequest is an HR record kept per organization. The reviewer is an
// optional attribution: deleting the reviewing user preserves the request
// and clears the reference.
type LeaveRequest struct {
	LeaveRequestID uuid.UUID // UUIDv7
	OrgID          uuid.UUID // owning tenant
	RequesterID    uuid.UUID
	ReviewerID     *uuid.UUID // nullable attribution
	StartDate      time.Time
	EndDate        time.Time
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
