package metadata

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  updated_at INTEGER NOT NULL DEFAULT 0
)`)
	require.NoError(t, err)
	return db
}

func updatedAt(t *testing.T, db *sql.DB, key string) int64 {
	t.Helper()
	var ms int64
	require.NoError(t, db.QueryRow(`SELECT updated_at FROM metadata WHERE key = ?`, key).Scan(&ms))
	return ms
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(openDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "session.token", []byte("tok")))

	v, err := r.Get(ctx, "session.token")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok"), v)
}

func TestGet_Absent(t *testing.T) {
	r := NewSQLiteRepository(openDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSet_LastWriteWinsAndStamps(t *testing.T) {
	db := openDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	first := time.UnixMilli(1_700_000_000_000)
	r.now = func() time.Time { return first }
	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	assert.Equal(t, first.UnixMilli(), updatedAt(t, db, "k"))

	r.now = func() time.Time { return first.Add(time.Minute) }
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
	assert.Equal(t, first.Add(time.Minute).UnixMilli(), updatedAt(t, db, "k"))
}

func TestDelete_ManyKeys(t *testing.T) {
	r := NewSQLiteRepository(openDB(t))
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, r.Set(ctx, k, []byte(k)))
	}

	require.NoError(t, r.Delete(ctx, "a", "b"))
	require.NoError(t, r.Delete(ctx, "a", "b"))
	require.NoError(t, r.Delete(ctx))

	for k, want := range map[string][]byte{"a": nil, "b": nil, "c": []byte("c")} {
		v, err := r.Get(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, want, v, k)
	}
}

func TestErrorsAreWrapped(t *testing.T) {
	db := openDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, `read session key "k"`)
	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), `write session key "k"`)
	require.ErrorContains(t, r.Delete(ctx, "k"), "delete session keys")
}
