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

// UserStore implements store.UserStore using PostgreSQL. The users table is
// not tenant-scoped, so these queries run outside the row policies; access
// control happens at the application layer.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgreSQL-backed user store.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Create creates a new user.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (user_id, email, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		user.UserID,
		user.Email,
		user.Name,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("user_id", user.UserID.String()).
		Msg("Created user")

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `
		SELECT user_id, email, name, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`

	var user models.User
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&user.UserID,
		&user.Email,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", mapPostgresError(err))
	}

	return &user, nil
}

// GetByEmail retrieves a user by email address.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT user_id, email, name, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user models.User
	err := s.pool.QueryRow(ctx, query, email).Scan(
		&user.UserID,
		&user.Email,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", mapPostgresError(err))
	}

	return &user, nil
}

// Update updates an existing user.
func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users SET
			email = $2,
			name = $3,
			updated_at = $4
		WHERE user_id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		user.UserID,
		user.Email,
		user.Name,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update user: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}

	return nil
}

// Delete deletes a user. Sessions cascade away; memberships block the
// deletion (ErrHasMemberships) until removed explicitly; attributions on
// payments and leave requests are cleared to null by the schema.
func (s *UserStore) Delete(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM users WHERE user_id = $1`

	result, err := s.pool.Exec(ctx, query, userID)
	if err != nil {
		mapped := mapPostgresError(err)
		if errors.Is(mapped, store.ErrHasMemberships) {
			return store.ErrHasMemberships
		}
		return fmt.Errorf("failed to delete user: %w", mapped)
	}

	if result.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}

	log.Info().
		Str("user_id", userID.String()).
		Msg("Deleted user")

	return nil
}
