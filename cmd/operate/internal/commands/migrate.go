package commands

import (
	"context"

	"github.com/operatehq/operate/internal/store/postgres"
)

type MigrateCmd struct {
	DSN string `help:"PostgreSQL connection string" env:"DATABASE_URL" required:""`
}

func (m *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	pool, err := setup(ctx, globals, m.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	return postgres.Migrate(ctx, pool)
}
