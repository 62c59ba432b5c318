package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. Repositories accept nil (run against the
// pool) or an infra-defined handle such as pgx.Tx.
type Tx interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying handle via `tx`. Use-case code stays free of storage
// types; repository implementations detect the handle on their side.
//
// Note that the redemption protocol itself does NOT rely on multi-statement
// transactions: its mutual exclusion comes from conditional single-row
// updates. WithTx exists for multi-read/multi-write admin paths such as
// registration (user + wallet).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
