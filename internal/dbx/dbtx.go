// Package dbx provides the small database/sql abstractions shared by the
// local repositories: a handle interface satisfied by *sql.DB and *sql.Tx,
// and a transaction helper.
package dbx

import (
	"context"
	"database/sql"
	"errors"
)

// DBTX is the subset of database/sql used by repositories. Both *sql.DB and
// *sql.Tx satisfy it, so a repository built on DBTX works the same inside
// and outside a transaction. Pass the *sql.Tx from WithTx to group several
// repository calls into one atomic unit.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxBeginner starts transactions. *sql.DB satisfies it; tests may pass a
// fake to simulate BeginTx failures.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// WithTx runs fn inside a transaction.
//
// Outcome:
//   - fn returns nil: the transaction is committed and the Commit error, if
//     any, is returned.
//   - fn returns an error: the transaction is rolled back and fn's error is
//     returned unchanged.
//   - fn panics: the transaction is rolled back and the panic continues.
//
// opts may be nil for the driver defaults. Example:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    repo := metadata.NewSQLiteRepository(tx)
//	    return repo.Set(ctx, "token", tok)
//	})
func WithTx(ctx context.Context, db TxBeginner, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	// the deferred block decides between commit and rollback after fn
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}

// IsNoRows reports whether err is, or wraps, sql.ErrNoRows. Repositories
// use it to turn a missing row into a (nil, nil) result.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
