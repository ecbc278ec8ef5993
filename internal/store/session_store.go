package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/operatehq/operate/internal/models"
)

// Sentinel errors for session store operations
var (
	ErrSessionNotFound = errors.New("session not found")
)

// SessionStore defines the interface for session storage. Sessions are owned
// by users, not tenants; they cascade away when their user is deleted.
type SessionStore interface {
	// Create creates a new session.
	Create(ctx context.Context, session *models.Session) error

	// Get retrieves a session by ID.
	// Returns ErrSessionNotFound if the session doesn't exist.
	Get(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)

	// Touch updates the session's last-used timestamp.
	Touch(ctx context.Context, sessionID uuid.UUID) error

	// Delete deletes a session by ID (logout).
	Delete(ctx context.Context, sessionID uuid.UUID) error

	// DeleteExpired removes all expired sessions, returning how many were
	// deleted. Intended for a background sweeper.
	DeleteExpired(ctx context.Context) (int64, error)
}
