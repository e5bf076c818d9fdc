package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// The show is stored as one JSON document. version, heartbeat_enabled and
// last_fpp_heartbeat are copied out of the document on every write so the
// version check and the heartbeat sweep can run in SQL.
const schema = `
CREATE TABLE IF NOT EXISTS shows (
    id TEXT PRIMARY KEY,
    show_token TEXT NOT NULL UNIQUE,
    -- NULL for shows created without an account
    email TEXT UNIQUE,
    show_subdomain TEXT UNIQUE,
    version INTEGER NOT NULL,
    heartbeat_enabled INTEGER NOT NULL DEFAULT 0,
    -- unix milliseconds, NULL when the plugin never checked in
    last_fpp_heartbeat INTEGER,
    document TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_shows_heartbeat
    ON shows(heartbeat_enabled, last_fpp_heartbeat);

CREATE TABLE IF NOT EXISTS notifications (
    uuid TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    -- unix milliseconds
    created_date INTEGER,
    subject TEXT NOT NULL DEFAULT '',
    preview TEXT NOT NULL DEFAULT '',
    message TEXT NOT NULL DEFAULT ''
);
`

// Open opens (or creates) a SQLite database and applies the schema.
// ":memory:" gives a private in-memory database.
func Open(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps an
	// in-memory database from splitting across pool connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitSchema applies the schema. Safe to call repeatedly.
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
