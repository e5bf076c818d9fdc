package db

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS shows (
    id uuid PRIMARY KEY,
    show_token text NOT NULL UNIQUE,
    email text UNIQUE,
    show_subdomain text UNIQUE,
    version bigint NOT NULL,
    heartbeat_enabled boolean NOT NULL DEFAULT false,
    last_fpp_heartbeat timestamptz,
    document jsonb NOT NULL,
    created_at timestamptz NOT NULL DEFAULT now(),
    updated_at timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_shows_heartbeat
    ON shows (last_fpp_heartbeat) WHERE heartbeat_enabled;

CREATE TABLE IF NOT EXISTS notifications (
    uuid uuid PRIMARY KEY,
    type text NOT NULL,
    created_date timestamptz,
    subject text NOT NULL DEFAULT '',
    preview text NOT NULL DEFAULT '',
    message text NOT NULL DEFAULT ''
);
`

// Migrate creates the tables if they do not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	db.logger.Info("database schema applied")
	return nil
}
