package repositories

import "context"

// TxFn is a function executed within a transaction.
// Any error it returns forces a rollback; errors must never be swallowed
// inside a mutating path, or partially applied ordinal updates would survive.
type TxFn func(ctx context.Context) error

// TransactionManager runs a function inside one all-or-nothing transaction.
// Mutating operations acquire serializable isolation so concurrent
// max-ordinal allocation in the same directory cannot produce duplicates.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
