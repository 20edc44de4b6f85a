package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"arbor/internal/domain/repositories"
)

// TransactionManager implements repositories.TransactionManager on pgx.
//
// Transactions run at serializable isolation: the engine's read-then-insert
// ordinal allocation (max(ordinal)+1) is otherwise racy between concurrent
// writers to the same directory.
type TransactionManager struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(pool *pgxpool.Pool, logger *slog.Logger) repositories.TransactionManager {
	return &TransactionManager{pool: pool, logger: logger}
}

// maxSerializationRetries bounds automatic retries after a 40001
// serialization failure before the error is surfaced to the caller.
const maxSerializationRetries = 3

// ExecTx executes a function within a serializable transaction. Transactions
// aborted by a serialization failure are retried from scratch; fn must
// therefore be safe to re-run.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = tm.execOnce(ctx, fn)
		if err == nil || !IsPgSerializationError(err) || attempt >= maxSerializationRetries {
			return err
		}
		tm.logger.Warn("serialization failure, retrying transaction", "attempt", attempt+1)
	}
}

func (tm *TransactionManager) execOnce(ctx context.Context, fn repositories.TxFn) error {
	tx, err := tm.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	// Defer rollback - safe even if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			tm.logger.Error("rollback failed", "error", err)
		}
	}()

	// Store transaction in context so repositories can access it
	txCtx := repositories.SetTx(ctx, tx)

	if err := fn(txCtx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
