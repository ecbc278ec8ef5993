package postgres

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/operatehq/operate/internal/telemetry"
	"github.com/operatehq/operate/internal/tenant"
)

// Session settings read by every row policy. Applied with transaction-local
// scope so they cannot outlive the transaction that set them.
const (
	orgSetting    = "app.current_org_id"
	bypassSetting = "app.bypass_rls"
)

// maxTxTries bounds how often one logical transaction is attempted before
// the conflict is surfaced to the caller.
const maxTxTries = 3

// withTenantTx runs fn inside a transaction whose first statement publishes
// the ambient tenant context to the row policies. The contract with the
// database is exactly two values: the acting organization's ID and the
// bypass flag.
//
// set_config(..., is_local => true) scopes both values to the transaction,
// so a connection returned to the pool never carries a previous operation's
// tenant. When no tenant is set and bypass is off, the org setting is the
// empty string and every tenant-scoped query inside fn returns zero rows -
// fail closed, silently.
//
// Serialization failures and deadlocks are retried with exponential backoff;
// everything else fails immediately.
//
// fn may run more than once. It must be idempotent with respect to any
// variables it captures: build results locally and assign on success, never
// accumulate across calls.
func withTenantTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	return withRetry(ctx, func() error {
		return runTenantTx(ctx, pool, fn)
	})
}

// withRetry runs attempt up to maxTxTries times, retrying only on
// serialization failures and deadlocks. TxRetries counts re-executions, not
// failures: the first attempt and the final exhausted one do not increment
// it.
func withRetry(ctx context.Context, attempt func() error) error {
	attempts := 0
	operation := func() (struct{}, error) {
		attempts++
		if attempts > 1 {
			telemetry.GetMetrics().TxRetries.Add(ctx, 1)
		}

		err := attempt()
		if err != nil && !isRetryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(maxTxTries),
	)
	return err
}

func runTenantTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback is safe to call after commit

	if err := applyTenantSettings(ctx, tx); err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// applyTenantSettings publishes the ambient tenant and bypass values to the
// transaction. It must run before any other statement in the transaction.
func applyTenantSettings(ctx context.Context, tx pgx.Tx) error {
	orgValue := ""
	if orgID, ok := tenant.OrgFromContext(ctx); ok {
		orgValue = orgID.String()
	}

	bypassValue := "off"
	if reason, ok := tenant.BypassFromContext(ctx); ok {
		bypassValue = "on"
		telemetry.GetMetrics().BypassActivations.Add(ctx, 1)
		log.Debug().Str("reason", reason).Msg("Row security bypass active for transaction")
	}

	if orgValue == "" && bypassValue == "off" {
		// Fail-closed path: the statements below will see no rows. Counted
		// because a hot spot here usually means a handler forgot RunAs.
		telemetry.GetMetrics().ContextMissQueries.Add(ctx, 1)
	}

	_, err := tx.Exec(ctx,
		`SELECT set_config($1, $2, true), set_config($3, $4, true)`,
		orgSetting, orgValue, bypassSetting, bypassValue,
	)
	if err != nil {
		return fmt.Errorf("failed to set tenant session values: %w", err)
	}

	return nil
}
