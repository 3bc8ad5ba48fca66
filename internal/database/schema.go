package database

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id               UUID PRIMARY KEY,
		username         TEXT NOT NULL UNIQUE,
		password_hash    TEXT NOT NULL,
		role             TEXT NOT NULL DEFAULT 'user',
		stats            JSONB,
		stats_updated_at TIMESTAMPTZ,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS bets (
		id           TEXT PRIMARY KEY,
		user_id      UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date         TEXT NOT NULL DEFAULT '',
		sport        TEXT NOT NULL DEFAULT '',
		event        TEXT NOT NULL DEFAULT '',
		bet_type     TEXT NOT NULL DEFAULT '',
		odds         TEXT NOT NULL DEFAULT '',
		closing_odds TEXT NOT NULL DEFAULT '',
		stake        DOUBLE PRECISION,
		payout       DOUBLE PRECISION,
		outcome      TEXT NOT NULL,
		profit_loss  DOUBLE PRECISION,
		description  TEXT NOT NULL DEFAULT '',
		note         TEXT NOT NULL DEFAULT '',
		sportsbook   TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS bets_user_created_idx ON bets (user_id, created_at DESC)`,
}

// EnsureSchema creates the users and bets tables when they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
