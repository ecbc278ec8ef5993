package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/operatehq/operate/internal/models"
)

// Sentinel errors for user store operations
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserStore defines the interface for user storage. Users are not
// tenant-scoped (one user may belong to several organizations); access
// control for user rows is an application-layer concern, not a row policy.
type UserStore interface {
	// Create creates a new user.
	// Returns ErrUserAlreadyExists if the email is already registered.
	Create(ctx context.Context, user *models.User) error

	// Get retrieves a user by ID.
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *models.User) error

	// Delete deletes a user. Sessions cascade away with the user;
	// memberships do not: ErrHasMemberships is returned until they are
	// removed explicitly. Attributions (payment processor, leave reviewer)
	// are cleared to null by the schema.
	Delete(ctx context.Context, userID uuid.UUID) error
}
