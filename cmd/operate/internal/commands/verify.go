package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/operatehq/operate/internal/schema"
	"github.com/operatehq/operate/internal/telemetry"
)

// VerifyCmd audits the live schema against the cascade/isolation policy.
// Intended as a CI gate: a conforming schema exits 0, any violation exits
// non-zero with a structured report.
type VerifyCmd struct {
	DSN       string `help:"PostgreSQL connection string" env:"DATABASE_URL" required:""`
	Checklist string `help:"YAML checklist overriding the built-in policy" type:"existingfile" optional:""`
	JSON      bool   `help:"Emit violations as JSON"`
}

func (v *VerifyCmd) Run(ctx context.Context, globals *Globals) error {
	pool, err := setup(ctx, globals, v.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	checklist := schema.DefaultChecklist()
	if v.Checklist != "" {
		checklist, err = schema.LoadChecklist(v.Checklist)
		if err != nil {
			return err
		}
	}

	catalog, err := schema.Inspect(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}

	violations := schema.Verify(catalog, checklist)
	telemetry.GetMetrics().SchemaViolations.Add(ctx, int64(len(violations)))

	if len(violations) == 0 {
		log.Info().
			Int("foreign_keys", len(catalog.ForeignKeys)).
			Int("tenant_tables", len(checklist.TenantTables)).
			Msg("Schema conforms to cascade/isolation policy")
		return nil
	}

	if v.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(violations); err != nil {
			return err
		}
	} else {
		for _, violation := range violations {
			fmt.Fprintln(os.Stdout, violation.String())
		}
	}

	return fmt.Errorf("%w: %d violation(s)", schema.ErrPolicyViolation, len(violations))
}
