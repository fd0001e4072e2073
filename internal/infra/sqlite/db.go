// Package sqlite provides the durable domain.Store implementation and the
// append-only reputation event audit log, on modernc.org/sqlite (pure Go,
// no CGO) through database/sql.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle. One handle per process; SQLite serializes
// writers internally and the ledger serializes them again above us.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies all migrations.
// Use ":memory:" for an ephemeral database in tests.
func Open(path string) (*DB, error) {
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A single connection keeps :memory: databases coherent and avoids
	// SQLITE_BUSY under concurrent access.
	handle.SetMaxOpenConns(1)

	if _, err := handle.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		handle.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := handle.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		handle.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	db := &DB{db: handle}
	if err := db.migrate(); err != nil {
		handle.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying handle.
func (db *DB) Close() error {
	return db.db.Close()
}

// ─── Schema ─────────────────────────────────────────────────────────────────

// Migrations returns the schema migration statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		// One mutable record per registered identity
		`CREATE TABLE IF NOT EXISTS reputation_records (
			identity      TEXT PRIMARY KEY,
			score         INTEGER NOT NULL,
			total_ratings INTEGER NOT NULL DEFAULT 0,
			total_score   INTEGER NOT NULL DEFAULT 0,
			last_update   TEXT NOT NULL,
			last_decay    TEXT NOT NULL
		)`,

		// Append-only registration order, enumeration only
		`CREATE TABLE IF NOT EXISTS registration_ledger (
			position INTEGER PRIMARY KEY AUTOINCREMENT,
			identity TEXT NOT NULL UNIQUE
		)`,

		// Identities permitted to submit ratings
		`CREATE TABLE IF NOT EXISTS authorized_callers (
			identity   TEXT PRIMARY KEY,
			granted_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		// Single-row parameter block
		`CREATE TABLE IF NOT EXISTS params (
			id                    INTEGER PRIMARY KEY CHECK (id = 1),
			decay_enabled         INTEGER NOT NULL,
			decay_period_seconds  INTEGER NOT NULL,
			decay_rate_per_mille  INTEGER NOT NULL,
			min_rater_reputation  INTEGER NOT NULL,
			max_weight_multiplier INTEGER NOT NULL
		)`,

		// Append-only audit trail of ledger events
		`CREATE TABLE IF NOT EXISTS reputation_events (
			id        TEXT PRIMARY KEY,
			kind      TEXT NOT NULL,
			identity  TEXT NOT NULL,
			rater     TEXT NOT NULL DEFAULT '',
			old_score INTEGER NOT NULL DEFAULT 0,
			new_score INTEGER NOT NULL DEFAULT 0,
			at        TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_identity ON reputation_events(identity, at)`,
	}
}

func (db *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
