// Package db provides PostgreSQL persistence for journeys, their steps, and
// attachment metadata. It implements the repository contract the journey
// aggregate relies on: full-state save with optimistic versioning and a load
// that makes resuming indistinguishable from never having left.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// migrations are applied in order; every statement is idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS journeys (
		id UUID PRIMARY KEY,
		owner_id UUID NOT NULL,
		template_id TEXT NOT NULL,
		status TEXT NOT NULL,
		current_step_id TEXT NOT NULL DEFAULT '',
		version BIGINT NOT NULL DEFAULT 1,
		started_at TIMESTAMPTZ NOT NULL,
		last_activity_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_journeys_owner ON journeys (owner_id, last_activity_at DESC)`,
	`CREATE TABLE IF NOT EXISTS journey_steps (
		journey_id UUID NOT NULL REFERENCES journeys(id) ON DELETE CASCADE,
		step_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		progress_percent INT NOT NULL DEFAULT 0,
		data JSONB,
		force_completed BOOLEAN NOT NULL DEFAULT FALSE,
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		PRIMARY KEY (journey_id, step_id)
	)`,
	`CREATE TABLE IF NOT EXISTS attachments (
		id UUID PRIMARY KEY,
		journey_id UUID NOT NULL REFERENCES journeys(id) ON DELETE CASCADE,
		step_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		ref TEXT NOT NULL,
		annotations JSONB,
		related_ids JSONB,
		replaced_by UUID,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attachments_journey ON attachments (journey_id, step_id, created_at)`,
}

// Migrate applies the schema. Safe to run on every startup.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	return nil
}
