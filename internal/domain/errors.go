package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. Note that a rejected
// spend is NOT an error: it is a normal outcome reported via boolean return,
// event, and audit transaction.

var (
	// Resource errors
	ErrUnknownResource = errors.New("unknown resource type")

	// Persistence errors
	ErrNoSnapshot        = errors.New("no persisted ledger snapshot")
	ErrSnapshotMalformed = errors.New("persisted ledger snapshot is malformed")
)
