package metadata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/lawdesk/internal/dbx"
)

const (
	selectValue = `SELECT value FROM metadata WHERE key = ?`
	upsertValue = `INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

// SQLiteRepository works on a plain connection or inside a transaction,
// whichever DBTX it is given.
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	switch err := r.db.QueryRowContext(ctx, selectValue, key).Scan(&value); {
	case dbx.IsNoRows(err):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("read session key %q: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.ExecContext(ctx, upsertValue, key, value, r.now().UnixMilli()); err != nil {
		return fmt.Errorf("write session key %q: %w", key, err)
	}
	return nil
}

// Delete removes the given keys. Missing keys are not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, 0, len(keys))
	marks := make([]string, 0, len(keys))
	for _, k := range keys {
		args = append(args, k)
		marks = append(marks, "?")
	}
	q := "DELETE FROM metadata WHERE key IN (" + strings.Join(marks, ", ") + ")"
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("delete session keys %v: %w", keys, err)
	}
	return nil
}
