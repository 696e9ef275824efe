// Package sqlite is the single-file status log store used for local runs
// and tests when no Postgres instance is configured.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type Config struct {
	Path         string
	MaxConns     int
	QueryTimeout time.Duration
}

type DB struct {
	sql          *sql.DB
	queryTimeout time.Duration
}

const schema = `
CREATE TABLE IF NOT EXISTS status_logs (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    project_slug     TEXT    NOT NULL,
    route_path       TEXT    NOT NULL,
    status_code      INTEGER NOT NULL,
    response_time_ms INTEGER NOT NULL,
    checked_at       TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS status_logs_project_route_idx
    ON status_logs (project_slug, route_path, checked_at);`

// Open creates the database file if needed and applies the schema.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	dsn := "file:" + cfg.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{sql: db, queryTimeout: cfg.QueryTimeout}, nil
}

func (db *DB) Close() error { return db.sql.Close() }

func (db *DB) Ping(ctx context.Context) error { return db.sql.PingContext(ctx) }

func (db *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, db.queryTimeout)
}
