package domain

import (
	"time"

	"github.com/google/uuid"
)

// ─── Transaction Types ──────────────────────────────────────────────────────

// TransactionKind is the direction of a ledger operation.
type TransactionKind string

const (
	TxSpend  TransactionKind = "SPEND"
	TxEarn   TransactionKind = "EARN"
	TxRefund TransactionKind = "REFUND"
)

// Transaction is an immutable audit record of one spend/earn/refund attempt.
// Failed spend attempts are recorded with Success=false even though no ledger
// state changed.
type Transaction struct {
	ID        string          `json:"id"`
	Kind      TransactionKind `json:"kind"`
	Reason    string          `json:"reason"`
	Cost      Cost            `json:"cost"`
	Timestamp time.Time       `json:"timestamp"`
	Success   bool            `json:"success"`
}

// NewTransaction builds a transaction with a fresh unique id.
// The cost is cloned so later mutation of the caller's map cannot
// rewrite history.
func NewTransaction(kind TransactionKind, reason string, cost Cost, at time.Time, success bool) Transaction {
	return Transaction{
		ID:        uuid.NewString(),
		Kind:      kind,
		Reason:    reason,
		Cost:      cost.Clone(),
		Timestamp: at,
		Success:   success,
	}
}
