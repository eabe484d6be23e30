package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/lawdesk/internal/client/migrations"
	"github.com/dmitrijs2005/lawdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/lawdesk/internal/client/repositories/results"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Repositories bundles the durable local stores.
type Repositories struct {
	DB       *sql.DB
	Metadata metadata.Repository
	Results  results.Repository
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite file at dsn and applies pending migrations.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases shared across calls.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Repositories{
		DB:       db,
		Metadata: metadata.NewSQLiteRepository(db),
		Results:  results.NewSQLiteRepository(db),
	}, nil
}
