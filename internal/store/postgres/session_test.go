package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func serializationFailure() error {
	return &pgconn.PgError{Code: pgerrcode.SerializationFailure, Message: "could not serialize access"}
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("retries serialization failures", func(t *testing.T) {
		attempts := 0
		err := withRetry(ctx, func() error {
			attempts++
			if attempts == 1 {
				return serializationFailure()
			}
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 2, attempts)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		boom := errors.New("boom")
		attempts := 0
		err := withRetry(ctx, func() error {
			attempts++
			return boom
		})
		require.ErrorIs(t, err, boom)
		require.Equal(t, 1, attempts)
	})

	t.Run("gives up after bounded attempts", func(t *testing.T) {
		attempts := 0
		err := withRetry(ctx, func() error {
			attempts++
			return serializationFailure()
		})
		require.Error(t, err)
		require.Equal(t, maxTxTries, attempts)
	})

	t.Run("assign-on-success pattern returns each row once across a retry", func(t *testing.T) {
		// Mirrors the store list closures: the attempt scans rows, fails
		// partway on the first try, and succeeds on the second. The caller
		// must see the full result exactly once, not the partial scan plus
		// the full one.
		var rows []int
		attempts := 0

		err := withRetry(ctx, func() error {
			attempts++

			var result []int
			result = append(result, 1)
			if attempts == 1 {
				return serializationFailure()
			}
			result = append(result, 2, 3)

			rows = result
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 2, attempts)
		require.Equal(t, []int{1, 2, 3}, rows)
	})
}
