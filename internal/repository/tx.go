package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// TxFunc is the body of a ledger transaction. It receives the open
// transaction and must perform every read and write through it.
type TxFunc func(ctx context.Context, tx *sql.Tx) error

// TxRunner executes a function inside a single database transaction. It is
// the component that gives registry operations their commit-or-abort
// semantics: when fn returns an error the transaction is rolled back and
// no partial state survives.
type TxRunner interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// SQLTxRunner runs transactions against a *sql.DB. InnoDB row locks taken
// via SELECT ... FOR UPDATE inside fn serialize conflicting operations.
type SQLTxRunner struct{ DB *sql.DB }

// NewSQLTxRunner returns a runner bound to the given database.
func NewSQLTxRunner(db *sql.DB) *SQLTxRunner { return &SQLTxRunner{DB: db} }

// WithinTx begins a transaction, invokes fn and commits. Any error from fn
// rolls the transaction back and is returned unchanged so callers can
// match sentinel errors.
func (r *SQLTxRunner) WithinTx(ctx context.Context, fn TxFunc) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
