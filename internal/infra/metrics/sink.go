package metrics

import (
	"strconv"

	"github.com/apex-citadels/citadel/internal/domain"
)

// Sink feeds ledger events into the Prometheus series. Stateless; register
// it alongside the UI sinks in the event multicast.
type Sink struct{}

func (Sink) ResourceChanged(r domain.Resource, _, newAmount, _ int64, _ string) {
	ResourceAmount.WithLabelValues(r.String()).Set(float64(newAmount))
}

func (Sink) ResourcesLoaded() {}

func (Sink) TransactionComplete(tx domain.Transaction) {
	TransactionsTotal.WithLabelValues(string(tx.Kind), strconv.FormatBool(tx.Success)).Inc()
}

func (Sink) ResourceDepleted(r domain.Resource) {
	ResourceDepletions.WithLabelValues(r.String()).Inc()
}

func (Sink) ResourceMaxed(r domain.Resource) {
	ResourceMaxouts.WithLabelValues(r.String()).Inc()
}

func (Sink) InsufficientResources(domain.Cost) {
	RejectedSpends.Inc()
}

// SetAmounts primes the amount gauges from a full ledger snapshot. Bulk
// credits (offline catch-up) bypass change events, so the daemon calls this
// after load.
func SetAmounts(amounts map[domain.Resource]int64) {
	for r, n := range amounts {
		ResourceAmount.WithLabelValues(r.String()).Set(float64(n))
	}
}
