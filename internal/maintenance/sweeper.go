// Package maintenance runs periodic background upkeep against the database.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"

	"github.com/operatehq/operate/internal/store"
)

// DefaultSweepInterval is how often the sweeper runs when no interval is
// configured.
const DefaultSweepInterval = 15 * time.Minute

// Sweeper removes expired sessions on a fixed interval. Session rows are not
// tenant-scoped, so the sweep needs no tenant context.
type Sweeper struct {
	sessions store.SessionStore
	interval time.Duration
}

// NewSweeper creates a sweeper over the given session store.
func NewSweeper(sessions store.SessionStore, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		sessions: sessions,
		interval: interval,
	}
}

// Run sweeps immediately, then on every interval tick until the context is
// canceled. Transient failures are retried with backoff inside each sweep;
// a sweep that still fails is logged and the loop continues.
func (s *Sweeper) Run(ctx context.Context) error {
	if err := s.sweep(ctx); err != nil {
		log.Error().Err(err).Msg("Session sweep failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				log.Error().Err(err).Msg("Session sweep failed")
			}
		}
	}
}

// SweepOnce runs a single sweep and returns how many sessions were removed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	var deleted int64

	operation := func() (struct{}, error) {
		var err error
		deleted, err = s.sessions.DeleteExpired(ctx)
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(3),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired sessions: %w", err)
	}

	return deleted, nil
}

func (s *Sweeper) sweep(ctx context.Context) error {
	deleted, err := s.SweepOnce(ctx)
	if err != nil {
		return err
	}

	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("Removed expired sessions")
	}

	return nil
}
