package domain

// ─── Ledger Events ──────────────────────────────────────────────────────────
// The ledger notifies consumers through this interface; it never knows about
// the UI (or metrics, or transport) types on the other side. Depleted/Maxed
// are edge-triggered: they fire once per crossing, not on every mutation that
// stays at the edge.

// EventSink receives ledger change notifications.
type EventSink interface {
	// ResourceChanged fires on every per-type mutation outside bulk loads.
	ResourceChanged(r Resource, oldAmount, newAmount, delta int64, reason string)

	// ResourcesLoaded fires once after a load completes, including after
	// offline catch-up has been credited.
	ResourcesLoaded()

	// TransactionComplete fires after every recorded transaction,
	// success or failure.
	TransactionComplete(tx Transaction)

	// ResourceDepleted fires once when a deduction drives a type to zero.
	ResourceDepleted(r Resource)

	// ResourceMaxed fires once when a type first reaches its capacity.
	ResourceMaxed(r Resource)

	// InsufficientResources fires when a spend is rejected, carrying the
	// full requested cost.
	InsufficientResources(cost Cost)
}

// NopEvents is an EventSink that ignores everything.
type NopEvents struct{}

func (NopEvents) ResourceChanged(Resource, int64, int64, int64, string) {}
func (NopEvents) ResourcesLoaded()                                      {}
func (NopEvents) TransactionComplete(Transaction)                       {}
func (NopEvents) ResourceDepleted(Resource)                             {}
func (NopEvents) ResourceMaxed(Resource)                                {}
func (NopEvents) InsufficientResources(Cost)                            {}

// Multicast fans events out to several sinks in order.
type Multicast []EventSink

func (m Multicast) ResourceChanged(r Resource, oldAmount, newAmount, delta int64, reason string) {
	for _, s := range m {
		s.ResourceChanged(r, oldAmount, newAmount, delta, reason)
	}
}

func (m Multicast) ResourcesLoaded() {
	for _, s := range m {
		s.ResourcesLoaded()
	}
}

func (m Multicast) TransactionComplete(tx Transaction) {
	for _, s := range m {
		s.TransactionComplete(tx)
	}
}

func (m Multicast) ResourceDepleted(r Resource) {
	for _, s := range m {
		s.ResourceDepleted(r)
	}
}

func (m Multicast) ResourceMaxed(r Resource) {
	for _, s := range m {
		s.ResourceMaxed(r)
	}
}

func (m Multicast) InsufficientResources(cost Cost) {
	for _, s := range m {
		s.InsufficientResources(cost)
	}
}
