package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/operatehq/operate/cmd/operate/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Migrate commands.MigrateCmd `cmd:"" help:"Apply pending database migrations"`
		Verify  commands.VerifyCmd  `cmd:"" help:"Audit the live schema against the cascade/isolation policy"`
		Seed    commands.SeedCmd    `cmd:"" help:"Load multi-organization fixture data"`
		Sweep   commands.SweepCmd   `cmd:"" help:"Remove expired sessions, once or on an interval"`
		Debug   bool                `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
