// Package sqlite persists ledger snapshots between sessions.
// Transaction history is deliberately NOT stored here — it is a
// session-scoped audit aid, not durable state.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection used for ledger persistence.
type DB struct {
	db *sql.DB
}

// Migrations returns the schema migration statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		// One row per resource type with a persisted amount
		`CREATE TABLE IF NOT EXISTS ledger_resources (
			resource TEXT PRIMARY KEY,
			amount   INTEGER NOT NULL DEFAULT 0
		)`,

		// Save metadata (saved_at_unix for offline catch-up)
		`CREATE TABLE IF NOT EXISTS ledger_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
}

// Open opens (creating if needed) the database at path and applies migrations.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// The modernc driver is not safe for concurrent writers on one file.
	conn.SetMaxOpenConns(1)

	for _, stmt := range Migrations() {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("apply migration: %w", err)
		}
	}
	return &DB{db: conn}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.db.Close()
}
