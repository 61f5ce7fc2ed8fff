package ledger

import "github.com/apex-citadels/citadel/internal/domain"

// ─── Transaction History ────────────────────────────────────────────────────

// History is a bounded, newest-first sequence of transactions. When full, the
// oldest entry is evicted. History is session-scoped — it is an audit/UI aid,
// not durable state, and is never persisted.
type History struct {
	max     int
	entries []domain.Transaction // index 0 is the most recent
}

// NewHistory creates a history bounded at max entries (minimum 1).
func NewHistory(max int) *History {
	if max < 1 {
		max = 1
	}
	return &History{max: max}
}

// Push records tx as the most recent entry, evicting the oldest if full.
func (h *History) Push(tx domain.Transaction) {
	if len(h.entries) == h.max {
		h.entries = h.entries[:h.max-1]
	}
	h.entries = append([]domain.Transaction{tx}, h.entries...)
}

// Recent returns up to n transactions, newest first.
func (h *History) Recent(n int) []domain.Transaction {
	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]domain.Transaction, n)
	copy(out, h.entries[:n])
	return out
}

// Len returns the number of recorded entries.
func (h *History) Len() int { return len(h.entries) }
