// Package postgres opens the shared database handle and applies the schema.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Schema is the full DDL for the scoring core. Submissions are the append-only
// ledger; solves and score_deltas are the derived tables rebuilt from it on
// recovery; outbox feeds the announcement worker.
const Schema = `
CREATE TABLE IF NOT EXISTS events (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	url TEXT NOT NULL DEFAULT '',
	username TEXT NOT NULL DEFAULT '',
	password TEXT NOT NULL DEFAULT '',
	team_mode BOOLEAN NOT NULL DEFAULT TRUE,
	starts_at TIMESTAMPTZ NOT NULL,
	ends_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS teams (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	token_hash TEXT NOT NULL,
	registered_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS challenges (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	points INTEGER NOT NULL CHECK (points >= 0),
	flag_hash TEXT NOT NULL,
	flag_salt TEXT NOT NULL,
	opens_at TIMESTAMPTZ NOT NULL,
	closes_at TIMESTAMPTZ NOT NULL,
	decay_enabled BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (name, category)
);

CREATE TABLE IF NOT EXISTS submissions (
	seq BIGSERIAL PRIMARY KEY,
	team_id UUID NOT NULL,
	challenge_id UUID NOT NULL,
	flag_hash TEXT NOT NULL,
	outcome TEXT NOT NULL,
	submitted_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS submissions_team_idx ON submissions (team_id, seq);
CREATE INDEX IF NOT EXISTS submissions_challenge_idx ON submissions (challenge_id, seq);

CREATE TABLE IF NOT EXISTS solves (
	team_id UUID NOT NULL,
	challenge_id UUID NOT NULL,
	solved_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (team_id, challenge_id)
);
CREATE INDEX IF NOT EXISTS solves_challenge_idx ON solves (challenge_id);

CREATE TABLE IF NOT EXISTS score_deltas (
	team_id UUID NOT NULL,
	challenge_id UUID NOT NULL,
	points INTEGER NOT NULL,
	awarded_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (team_id, challenge_id)
);
CREATE INDEX IF NOT EXISTS score_deltas_team_idx ON score_deltas (team_id);

CREATE TABLE IF NOT EXISTS assignments (
	team_id UUID NOT NULL,
	challenge_id UUID NOT NULL,
	member TEXT NOT NULL,
	claimed_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (team_id, challenge_id, member)
);

CREATE TABLE IF NOT EXISTS outbox (
	id UUID PRIMARY KEY,
	event_type TEXT NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	published_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS outbox_unpublished_idx ON outbox (created_at) WHERE published_at IS NULL;
`

// Migrate applies the schema. Idempotent, so it runs at every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
