package database

import (
	"context"
	"fmt"

	"github.com/yourusername/tipster-edge/internal/config"
)

// Schema creates the tables the edge services read. Statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS predictions (
	id          UUID PRIMARY KEY,
	match_id    TEXT NOT NULL,
	sport       TEXT NOT NULL DEFAULT '',
	home_team   TEXT NOT NULL DEFAULT '',
	away_team   TEXT NOT NULL DEFAULT '',
	market      TEXT NOT NULL DEFAULT '',
	selection   TEXT NOT NULL DEFAULT '',
	model_prob  DOUBLE PRECISION NOT NULL DEFAULT 0,
	entry_odds  DOUBLE PRECISION NOT NULL,
	close_odds  DOUBLE PRECISION,
	starts_at   TIMESTAMPTZ NOT NULL,
	closed_at   TIMESTAMPTZ,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_predictions_closed_at ON predictions (closed_at DESC) WHERE close_odds IS NOT NULL;

CREATE TABLE IF NOT EXISTS parlays (
	id             UUID PRIMARY KEY,
	leg_count      INTEGER NOT NULL,
	edge_pct       TEXT NOT NULL,
	adjusted_prob  DOUBLE PRECISION NOT NULL,
	implied_odds   DOUBLE PRECISION NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_parlays_created_at ON parlays (created_at DESC);
`

// Initialize creates a connection pool and, when migrate is set, applies Schema.
func Initialize(ctx context.Context, cfg *config.Config, migrate bool) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if migrate {
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

// EnsureSchema applies Schema.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
