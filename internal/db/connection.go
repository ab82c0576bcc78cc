// Package db persists batch reports and their accepted MCQs in Postgres.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoDatabaseURL is returned when no connection string is configured
var ErrNoDatabaseURL = errors.New("DATABASE_URL not set")

// DB holds the database connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB connects to url and makes sure the schema exists
func NewDB(ctx context.Context, url string) (*DB, error) {
	if url == "" {
		return nil, ErrNoDatabaseURL
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}

	db := &DB{Pool: pool}
	if err := db.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS mcq_runs (
	run_id     TEXT PRIMARY KEY,
	accepted   INTEGER NOT NULL,
	rejected   INTEGER NOT NULL,
	warnings   INTEGER NOT NULL,
	rejections JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS mcqs (
	run_id     TEXT NOT NULL REFERENCES mcq_runs(run_id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	reasoning  TEXT NOT NULL,
	statement  TEXT NOT NULL,
	options    TEXT[] NOT NULL,
	answer     TEXT NOT NULL,
	confidence DOUBLE PRECISION,
	PRIMARY KEY (run_id, position)
);
`

// Migrate creates the tables if they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() {
	db.Pool.Close()
}
