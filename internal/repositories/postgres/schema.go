package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS driver_updates (
    id            TEXT PRIMARY KEY,
    from_location TEXT NOT NULL,
    to_location   TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS driver_updates_created_at_idx ON driver_updates (created_at DESC);

CREATE TABLE IF NOT EXISTS nurse_updates (
    id                    TEXT PRIMARY KEY,
    patient_name          TEXT NOT NULL,
    age                   INTEGER NOT NULL,
    notes                 TEXT NOT NULL,
    severity_score        INTEGER NOT NULL,
    condition_severity    TEXT NOT NULL,
    immediate_requirement TEXT NOT NULL,
    created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS nurse_updates_rank_idx ON nurse_updates (severity_score DESC, created_at DESC);
`

// Connect opens a pool for dsn and makes sure the tables exist.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to create schema: %w", err)
	}
	return pool, nil
}
