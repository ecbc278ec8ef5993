package commands

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	zlog "github.com/rs/zerolog/log"

	"github.com/operatehq/operate/internal/logger"
	"github.com/operatehq/operate/internal/store/postgres"
)

type Globals struct {
	Debug   bool
	Version string
}

// setup configures logging and opens the shared connection pool.
func setup(ctx context.Context, globals *Globals, connString string) (*pgxpool.Pool, error) {
	log := logger.Setup(globals.Debug)
	zlog.Logger = log

	pool, err := postgres.NewPool(ctx, &postgres.PoolConfig{ConnString: connString})
	if err != nil {
		return nil, err
	}

	log.Debug().Str("version", globals.Version).Msg("Connected")

	return pool, nil
}
