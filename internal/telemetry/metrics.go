// Package telemetry registers metric instruments against the global
// OpenTelemetry meter provider. Exporter wiring belongs to the embedding
// binary; without one these instruments are no-ops.
package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/operatehq/operate"

// Metrics holds the instruments the isolation layer reports on.
type Metrics struct {
	// BypassActivations counts transactions executed with row security
	// bypassed. This should track the rate of system/background jobs; a
	// spike is worth investigating.
	BypassActivations metric.Int64Counter

	// ContextMissQueries counts transactions issued with neither a tenant
	// context nor bypass. These fail closed (zero rows); a nonzero rate
	// usually means a handler forgot to establish context.
	ContextMissQueries metric.Int64Counter

	// TxRetries counts transaction retries after serialization failures or
	// deadlocks.
	TxRetries metric.Int64Counter

	// SchemaViolations counts violations reported by the schema verifier.
	SchemaViolations metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it on
// first use.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.BypassActivations, _ = meter.Int64Counter(
		"operate.rls.bypass.total",
		metric.WithDescription("Transactions executed with row security bypassed"),
		metric.WithUnit("{transaction}"),
	)

	m.ContextMissQueries, _ = meter.Int64Counter(
		"operate.rls.context_miss.total",
		metric.WithDescription("Transactions issued without tenant context or bypass"),
		metric.WithUnit("{transaction}"),
	)

	m.TxRetries, _ = meter.Int64Counter(
		"operate.store.tx_retries.total",
		metric.WithDescription("Transaction retries after serialization failure or deadlock"),
		metric.WithUnit("{retry}"),
	)

	m.SchemaViolations, _ = meter.Int64Counter(
		"operate.schema.violations.total",
		metric.WithDescription("Cascade/isolation policy violations found by the verifier"),
		metric.WithUnit("{violation}"),
	)

	return m
}
