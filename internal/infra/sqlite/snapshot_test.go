package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/apex-citadels/citadel/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSnapshot_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	savedAt := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	amounts := map[domain.Resource]int64{
		domain.Stone: 1234,
		domain.Gold:  500,
		domain.Gems:  0,
	}

	if err := db.SaveSnapshot(amounts, savedAt); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}

	got, gotSavedAt, err := db.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if !gotSavedAt.Equal(savedAt) {
		t.Errorf("savedAt = %v, want %v", gotSavedAt, savedAt)
	}
	if len(got) != len(amounts) {
		t.Fatalf("loaded %d resources, want %d", len(got), len(amounts))
	}
	for r, n := range amounts {
		if got[r] != n {
			t.Errorf("amount[%s] = %d, want %d", r, got[r], n)
		}
	}
}

func TestSnapshot_Overwrite(t *testing.T) {
	db := newTestDB(t)
	first := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	if err := db.SaveSnapshot(map[domain.Resource]int64{domain.Stone: 100}, first); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveSnapshot(map[domain.Resource]int64{domain.Stone: 250}, second); err != nil {
		t.Fatal(err)
	}

	got, savedAt, err := db.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if got[domain.Stone] != 250 {
		t.Errorf("amount[stone] = %d, want 250", got[domain.Stone])
	}
	if !savedAt.Equal(second) {
		t.Errorf("savedAt = %v, want %v", savedAt, second)
	}
}

func TestSnapshot_NoSnapshot(t *testing.T) {
	db := newTestDB(t)

	_, _, err := db.LoadSnapshot()
	if !errors.Is(err, domain.ErrNoSnapshot) {
		t.Errorf("LoadSnapshot() error = %v, want ErrNoSnapshot", err)
	}
}

func TestSnapshot_MalformedSavedAt(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.db.Exec(
		`INSERT INTO ledger_meta (key, value) VALUES (?, ?)`, savedAtKey, "yesterday-ish",
	); err != nil {
		t.Fatal(err)
	}

	_, _, err := db.LoadSnapshot()
	if !errors.Is(err, domain.ErrSnapshotMalformed) {
		t.Errorf("LoadSnapshot() error = %v, want ErrSnapshotMalformed", err)
	}
}

func TestSnapshot_SkipsUnknownResources(t *testing.T) {
	// A row from a newer build with an extra resource type must not break
	// loading for everything else.
	db := newTestDB(t)
	if err := db.SaveSnapshot(map[domain.Resource]int64{domain.Stone: 10}, time.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err := db.db.Exec(
		`INSERT INTO ledger_resources (resource, amount) VALUES (?, ?)`, "mithril", 999,
	); err != nil {
		t.Fatal(err)
	}

	got, _, err := db.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if got[domain.Stone] != 10 {
		t.Errorf("amount[stone] = %d, want 10", got[domain.Stone])
	}
	if len(got) != 1 {
		t.Errorf("loaded %d resources, want 1 (unknown skipped)", len(got))
	}
}
