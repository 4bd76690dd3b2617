package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TxRunner runs a function inside a single database transaction: rollback
// when the function fails, commit when it succeeds.
type TxRunner interface {
	RunTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type sqlxTxRunner struct {
	db *sqlx.DB
}

func NewTxRunner(db *sqlx.DB) TxRunner {
	return &sqlxTxRunner{db: db}
}

func (r *sqlxTxRunner) RunTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
