package repository

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same query code can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Transactor runs fn inside a single database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

type sqlTransactor struct {
	db   *sql.DB
	opts *sql.TxOptions
}

// NewTransactor creates a READ COMMITTED transactor. Row locks taken with
// SELECT ... FOR UPDATE serialize writers on the same rows.
func NewTransactor(db *sql.DB) Transactor {
	return &sqlTransactor{
		db:   db,
		opts: &sql.TxOptions{Isolation: sql.LevelReadCommitted},
	}
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := t.db.BeginTx(ctx, t.opts)
	if err != nil {
		return mapError(err, "begin transaction", "")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapError(err, "commit transaction", "")
	}
	return nil
}
