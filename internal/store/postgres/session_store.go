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

// SessionStore implements store.SessionStore using PostgreSQL. Sessions are
// user-owned, not tenant-scoped, so no row policies apply here.
type SessionStore struct {
	pool *pgxpool.Pool
}

// NewSessionStore creates a new PostgreSQL-backed session store.
func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

// Create creates a new session.
func (s *SessionStore) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (
			session_id, user_id,
			created_at, expires_at, last_used_at,
			user_agent, ip_address
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := s.pool.Exec(ctx, query,
		session.SessionID,
		session.UserID,
		session.CreatedAt,
		session.ExpiresAt,
		session.LastUsedAt,
		session.UserAgent,
		session.IPAddress,
	)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", mapPostgresError(err))
	}

	return nil
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	query := `
		SELECT session_id, user_id,
		       created_at, expires_at, last_used_at,
		       user_agent, ip_address
		FROM sessions
		WHERE session_id = $1
	`

	var session models.Session
	err := s.pool.QueryRow(ctx, query, sessionID).Scan(
		&session.SessionID,
		&session.UserID,
		&session.CreatedAt,
		&session.ExpiresAt,
		&session.LastUsedAt,
		&session.UserAgent,
		&session.IPAddress,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", mapPostgresError(err))
	}

	return &session, nil
}

// Touch updates the session's last-used timestamp.
func (s *SessionStore) Touch(ctx context.Context, sessionID uuid.UUID) error {
	query := `UPDATE sessions SET last_used_at = $2 WHERE session_id = $1`

	result, err := s.pool.Exec(ctx, query, sessionID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrSessionNotFound
	}

	return nil
}

// Delete deletes a session by ID.
func (s *SessionStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	query := `DELETE FROM sessions WHERE session_id = $1`

	result, err := s.pool.Exec(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrSessionNotFound
	}

	return nil
}

// DeleteExpired removes all expired sessions.
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < now()`

	result, err := s.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", mapPostgresError(err))
	}

	deleted := result.RowsAffected()
	if deleted > 0 {
		log.Debug().Int64("count", deleted).Msg("Deleted expired sessions")
	}

	return deleted, nil
}
