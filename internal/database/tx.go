package database

import (
	"context"
	"database/sql"
	"fmt"
)

// WithinTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise; fn's error comes back unchanged so
// callers can keep matching on their own error types.
func WithinTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// Rollback after a successful commit is a no-op (sql.ErrTxDone).
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
