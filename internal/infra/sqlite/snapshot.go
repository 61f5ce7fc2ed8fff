package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/apex-citadels/citadel/internal/domain"
)

const savedAtKey = "saved_at_unix"

// ─── Snapshot Operations ────────────────────────────────────────────────────

// SaveSnapshot writes the floored amounts and the save timestamp in one
// transaction, so a load never observes a half-written snapshot.
func (db *DB) SaveSnapshot(amounts map[domain.Resource]int64, savedAt time.Time) error {
	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	for r, n := range amounts {
		if _, err := tx.Exec(`
			INSERT INTO ledger_resources (resource, amount) VALUES (?, ?)
			ON CONFLICT(resource) DO UPDATE SET amount = excluded.amount
		`, r.String(), n); err != nil {
			return fmt.Errorf("upsert %s: %w", r, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO ledger_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, savedAtKey, strconv.FormatInt(savedAt.Unix(), 10)); err != nil {
		return fmt.Errorf("upsert saved_at: %w", err)
	}

	return tx.Commit()
}

// LoadSnapshot reads the persisted amounts and save timestamp.
//
// Returns domain.ErrNoSnapshot when nothing has ever been saved, and
// domain.ErrSnapshotMalformed (wrapped) when the stored state cannot be
// interpreted — the caller falls back to the default seed in both cases.
// Rows naming resource types outside the closed set are skipped, not fatal:
// they are most likely from a newer build and losing them beats crashing.
func (db *DB) LoadSnapshot() (map[domain.Resource]int64, time.Time, error) {
	var raw string
	err := db.db.QueryRow(`SELECT value FROM ledger_meta WHERE key = ?`, savedAtKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, domain.ErrNoSnapshot
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read saved_at: %w", err)
	}

	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: saved_at %q", domain.ErrSnapshotMalformed, raw)
	}
	savedAt := time.Unix(unix, 0)

	rows, err := db.db.Query(`SELECT resource, amount FROM ledger_resources`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read resources: %w", err)
	}
	defer rows.Close()

	amounts := make(map[domain.Resource]int64)
	for rows.Next() {
		var name string
		var amount int64
		if err := rows.Scan(&name, &amount); err != nil {
			return nil, time.Time{}, fmt.Errorf("%w: %v", domain.ErrSnapshotMalformed, err)
		}
		r, err := domain.ParseResource(name)
		if err != nil {
			continue
		}
		amounts[r] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("read resources: %w", err)
	}
	return amounts, savedAt, nil
}
