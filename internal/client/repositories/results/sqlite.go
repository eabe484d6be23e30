package results

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lawdesk/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX.
// fetched_at is stored as unix milliseconds.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) (*Result, error) {
	var (
		value []byte
		ms    int64
	)
	err := r.db.QueryRowContext(ctx, `SELECT value, fetched_at FROM results WHERE key = ?`, key).Scan(&value, &ms)
	if dbx.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result[%s]: %w", key, err)
	}
	return &Result{Key: key, Value: value, FetchedAt: time.UnixMilli(ms).UTC()}, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, res Result) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO results (key, value, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, fetched_at = excluded.fetched_at
	`, res.Key, res.Value, res.FetchedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to put result[%s]: %w", res.Key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM results WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete result[%s]: %w", key, err)
	}
	return nil
}

// List returns results whose key starts with prefix, newest first.
func (r *SQLiteRepository) List(ctx context.Context, prefix string) ([]Result, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key, value, fetched_at FROM results
		WHERE substr(key, 1, length(?)) = ?
		ORDER BY fetched_at DESC, key
	`, prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var (
			res Result
			ms  int64
		)
		if err := rows.Scan(&res.Key, &res.Value, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		res.FetchedAt = time.UnixMilli(ms).UTC()
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate result rows: %w", err)
	}
	return out, nil
}

// PurgeBefore drops results fetched before t and returns how many were removed.
func (r *SQLiteRepository) PurgeBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM results WHERE fetched_at < ?`, t.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge results: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
