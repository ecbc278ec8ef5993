package commands

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/operatehq/operate/internal/maintenance"
	"github.com/operatehq/operate/internal/store/postgres"
)

type SweepCmd struct {
	DSN      string        `help:"PostgreSQL connection string" env:"DATABASE_URL" required:""`
	Interval time.Duration `help:"How often to sweep expired sessions" default:"15m"`
	Once     bool          `help:"Run a single sweep and exit"`
}

func (s *SweepCmd) Run(ctx context.Context, globals *Globals) error {
	pool, err := setup(ctx, globals, s.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	sweeper := maintenance.NewSweeper(postgres.NewSessionStore(pool), s.Interval)

	if s.Once {
		deleted, err := sweeper.SweepOnce(ctx)
		if err != nil {
			return err
		}
		log.Info().Int64("deleted", deleted).Msg("Removed expired sessions")
		return nil
	}

	return sweeper.Run(ctx)
}
