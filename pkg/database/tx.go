package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// RunInTx executes fn within a database transaction. The transaction travels
// in the context so repository reads and writes issued inside fn share it.
// Nested calls reuse the outer transaction.
func RunInTx(ctx context.Context, db *sqlx.DB, fn func(context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Queryer returns the context transaction when present, the pool otherwise.
func Queryer(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return db
}

func txFrom(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey{}).(*sqlx.Tx)
	return tx
}
