// Package ledger implements the resource economy core: per-type amounts,
// storage capacities, passive generation, a bounded transaction history, and
// snapshot/restore with offline catch-up.
//
// The ledger is the only writer of its own state — all mutation funnels
// through Spend/Earn/Refund/Tick and the capacity/rate setters. No operation
// returns an error under normal use: a rejected spend is a reported outcome
// (boolean + event + audit transaction), invalid configuration is clamped,
// and unknown resource types read as zero.
package ledger

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/apex-citadels/citadel/internal/domain"
)

// ─── Configuration ──────────────────────────────────────────────────────────

// Config carries the designer tuning values for a ledger. All of these are
// configuration defaults, not fixed constants.
type Config struct {
	// StartingAmounts seed the ledger when no snapshot exists.
	StartingAmounts map[domain.Resource]int64

	// Capacities are explicit per-type storage caps. Types absent here use
	// DefaultCapacity.
	Capacities map[domain.Resource]int64

	// GenerationRates are passive accrual rates in amount per minute. Types
	// absent (or zero) only change via explicit earn/spend.
	GenerationRates map[domain.Resource]float64

	// DefaultCapacity caps types without an explicit capacity.
	DefaultCapacity int64

	// MaxHistory bounds the in-memory transaction history.
	MaxHistory int

	// OfflineCap bounds how much wall-clock time offline catch-up will
	// credit, to bound the reward size.
	OfflineCap time.Duration
}

// DefaultConfig returns the stock game-balance tuning.
func DefaultConfig() Config {
	return Config{
		StartingAmounts: map[domain.Resource]int64{
			domain.Stone: 1000,
			domain.Wood:  1000,
			domain.Gold:  500,
			domain.Food:  500,
		},
		Capacities: map[domain.Resource]int64{},
		GenerationRates: map[domain.Resource]float64{
			domain.Stone: 10,
			domain.Wood:  10,
			domain.Food:  5,
		},
		DefaultCapacity: 10_000,
		MaxHistory:      100,
		OfflineCap:      8 * time.Hour,
	}
}

// ─── Ledger ─────────────────────────────────────────────────────────────────

// Ledger owns all resource quantities for one session. Construct one at
// application start and hand it to every consumer; there is no ambient
// global instance.
//
// The mutex serializes the tick loop against API callers. Event sinks are
// invoked with the lock held and must not call back into the ledger.
type Ledger struct {
	mu sync.Mutex

	// current is the fractional internal accumulator; the externally
	// visible amount is its floor. Nothing outside this package reads it.
	current  map[domain.Resource]float64
	capacity map[domain.Resource]int64
	rate     map[domain.Resource]float64

	history *History
	events  domain.EventSink
	log     *log.Logger

	// Edge latches so depleted/maxed fire once per crossing.
	atCapacity map[domain.Resource]bool
	atZero     map[domain.Resource]bool

	defaultCapacity int64
	offlineCap      time.Duration
	dirty           bool

	now func() time.Time // injectable clock for tests
}

// New creates a ledger seeded with the configured starting amounts.
// A nil sink disables notifications; negative tuning values clamp to zero.
func New(cfg Config, sink domain.EventSink, logger *log.Logger) *Ledger {
	if sink == nil {
		sink = domain.NopEvents{}
	}
	if logger == nil {
		logger = log.New(log.Writer(), "ledger: ", log.LstdFlags)
	}
	if cfg.DefaultCapacity < 0 {
		cfg.DefaultCapacity = 0
	}
	if cfg.OfflineCap < 0 {
		cfg.OfflineCap = 0
	}

	l := &Ledger{
		current:         make(map[domain.Resource]float64),
		capacity:        make(map[domain.Resource]int64),
		rate:            make(map[domain.Resource]float64),
		history:         NewHistory(cfg.MaxHistory),
		events:          sink,
		log:             logger,
		atCapacity:      make(map[domain.Resource]bool),
		atZero:          make(map[domain.Resource]bool),
		defaultCapacity: cfg.DefaultCapacity,
		offlineCap:      cfg.OfflineCap,
		now:             time.Now,
	}

	for r, c := range cfg.Capacities {
		if !r.Valid() {
			continue
		}
		if c < 0 {
			c = 0
		}
		l.capacity[r] = c
	}
	for r, rate := range cfg.GenerationRates {
		if !r.Valid() || rate <= 0 {
			continue
		}
		l.rate[r] = rate
	}
	for r, n := range cfg.StartingAmounts {
		if !r.Valid() || n <= 0 {
			continue
		}
		l.current[r] = math.Min(float64(n), float64(l.capLocked(r)))
	}

	// Latch the edge states so seeding at zero or at capacity does not
	// count as a crossing.
	for _, r := range domain.AllResources() {
		cap := l.capLocked(r)
		l.atCapacity[r] = cap > 0 && l.amountLocked(r) >= cap
		l.atZero[r] = l.amountLocked(r) == 0
	}
	return l
}

// ─── Queries ────────────────────────────────────────────────────────────────

// Amount returns the externally visible (floored) amount of r.
func (l *Ledger) Amount(r domain.Resource) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.amountLocked(r)
}

// Amounts returns the floored amount of every resource type.
func (l *Ledger) Amounts() map[domain.Resource]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[domain.Resource]int64, len(l.current))
	for _, r := range domain.AllResources() {
		out[r] = l.amountLocked(r)
	}
	return out
}

// Capacity returns the storage cap of r.
func (l *Ledger) Capacity(r domain.Resource) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.capLocked(r)
}

// GenerationRate returns the passive accrual rate of r in amount per minute.
func (l *Ledger) GenerationRate(r domain.Resource) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rate[r]
}

// FillRatio returns amount/capacity in [0, 1]; zero-capacity types read 0.
func (l *Ledger) FillRatio(r domain.Resource) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	cap := l.capLocked(r)
	if cap <= 0 {
		return 0
	}
	return float64(l.amountLocked(r)) / float64(cap)
}

// CanAfford reports whether every positive component of cost is covered by
// the current floored amounts. Pure query, no side effects.
func (l *Ledger) CanAfford(cost domain.Cost) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.canAffordLocked(cost)
}

// Missing returns max(0, required−held) per type; a zero vector when cost is
// fully affordable.
func (l *Ledger) Missing(cost domain.Cost) domain.Cost {
	l.mu.Lock()
	defer l.mu.Unlock()
	missing := domain.Cost{}
	for r, need := range cost {
		if need <= 0 {
			continue
		}
		if held := l.amountLocked(r); held < need {
			missing[r] = need - held
		}
	}
	return missing
}

// Recent returns up to n transactions, newest first.
func (l *Ledger) Recent(n int) []domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.history.Recent(n)
}

// Dirty reports whether state has changed since the last MarkSaved.
func (l *Ledger) Dirty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

// ─── Generation ─────────────────────────────────────────────────────────────

// Tick advances passive generation by dt of elapsed time. Accrual is
// continuous and never fails; a type at capacity silently stops accumulating
// (excess is discarded, not banked) and fires a maxed notification once on
// the crossing. Change notifications fire only when the visible (floored)
// amount moves.
func (l *Ledger) Tick(dt time.Duration) {
	if dt <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	minutes := dt.Minutes()
	for r, rate := range l.rate {
		if rate <= 0 {
			continue
		}
		l.creditLocked(r, rate*minutes, "generation", true)
	}
}

// ─── Spend / Earn / Refund ──────────────────────────────────────────────────

// Spend deducts cost from the ledger. If the cost is unaffordable no state
// changes: a failed transaction is recorded for audit, an insufficient
// resources notification fires with the original cost, and Spend returns
// false.
func (l *Ledger) Spend(cost domain.Cost, reason string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.canAffordLocked(cost) {
		tx := domain.NewTransaction(domain.TxSpend, reason, cost, l.now(), false)
		l.history.Push(tx)
		l.events.InsufficientResources(cost.Clone())
		l.events.TransactionComplete(tx)
		return false
	}

	for r, n := range cost {
		if n <= 0 {
			continue
		}
		l.debitLocked(r, float64(n), reason)
	}

	tx := domain.NewTransaction(domain.TxSpend, reason, cost, l.now(), true)
	l.history.Push(tx)
	l.events.TransactionComplete(tx)
	l.dirty = true
	return true
}

// Earn credits every positive component of reward, clamped to capacity —
// overflow past the cap is discarded, never banked. One earn transaction is
// recorded for the whole vector.
func (l *Ledger) Earn(reward domain.Cost, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.earnLocked(reward, domain.TxEarn, reason, true)
}

// Refund credits floor(originalCost×ratio) per type via the earn path. The
// recorded transaction carries the actually credited amounts, not the
// original cost — the audit-visible distinction between what was asked for
// and what was returned.
func (l *Ledger) Refund(originalCost domain.Cost, ratio float64, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.earnLocked(originalCost.Scale(ratio), domain.TxRefund, reason, true)
}

// ─── Capacity & Rate Mutation ───────────────────────────────────────────────

// SetCapacity updates the storage cap of r. Negative caps clamp to zero. If
// the current amount exceeds the new cap it is clamped down immediately —
// the excess is discarded, not converted.
func (l *Ledger) SetCapacity(r domain.Resource, newMax int64) {
	if !r.Valid() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if newMax < 0 {
		newMax = 0
	}
	l.capacity[r] = newMax
	l.dirty = true

	if old := l.amountLocked(r); l.current[r] > float64(newMax) {
		l.current[r] = float64(newMax)
		if now := l.amountLocked(r); now != old {
			l.events.ResourceChanged(r, old, now, now-old, "capacity change")
		}
	}
	l.updateEdgesLocked(r, true)
}

// IncreaseCapacity raises the cap of r by delta.
func (l *Ledger) IncreaseCapacity(r domain.Resource, delta int64) {
	l.SetCapacity(r, l.Capacity(r)+delta)
}

// SetGenerationRate sets the passive accrual rate of r in amount per minute.
// Negative rates clamp to zero.
func (l *Ledger) SetGenerationRate(r domain.Resource, perMinute float64) {
	if !r.Valid() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if perMinute < 0 {
		perMinute = 0
	}
	l.rate[r] = perMinute
	l.dirty = true
}

// IncreaseGenerationRate raises the accrual rate of r by delta per minute.
func (l *Ledger) IncreaseGenerationRate(r domain.Resource, delta float64) {
	l.SetGenerationRate(r, l.GenerationRate(r)+delta)
}

// ─── Persistence Hooks ──────────────────────────────────────────────────────

// Snapshot returns the floored amounts of every type, for serialization.
// The in-memory state copy keeps a deferred store write consistent.
func (l *Ledger) Snapshot() map[domain.Resource]int64 {
	return l.Amounts()
}

// MarkSaved clears the dirty flag after a successful store write.
func (l *Ledger) MarkSaved() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dirty = false
}

// RestoreSnapshot overwrites the seeded amounts with a persisted snapshot and
// credits offline catch-up: wall-clock time since savedAt (bounded by the
// offline cap) times each generation rate, applied without per-type change
// notifications. The bulk credit is recorded as a single earn transaction.
// Types absent from the snapshot keep their seeded starting amounts.
func (l *Ledger) RestoreSnapshot(amounts map[domain.Resource]int64, savedAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for r, n := range amounts {
		if !r.Valid() {
			continue
		}
		if n < 0 {
			n = 0
		}
		l.current[r] = math.Min(float64(n), float64(l.capLocked(r)))
		l.updateEdgesLocked(r, false)
	}

	elapsed := l.now().Sub(savedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > l.offlineCap {
		elapsed = l.offlineCap
	}
	if elapsed > 0 {
		minutes := elapsed.Minutes()
		credited := domain.Cost{}
		for r, rate := range l.rate {
			if rate <= 0 {
				continue
			}
			old := l.amountLocked(r)
			l.creditLocked(r, rate*minutes, "offline generation", false)
			if gained := l.amountLocked(r) - old; gained > 0 {
				credited[r] = gained
			}
		}
		if !credited.IsZero() {
			l.log.Printf("offline catch-up: credited %s for %s away", credited, elapsed.Round(time.Second))
			tx := domain.NewTransaction(domain.TxEarn, "offline generation", credited, l.now(), true)
			l.history.Push(tx)
			l.events.TransactionComplete(tx)
		}
	}
	l.dirty = true
}

// Loaded announces that initialization (including any offline catch-up) is
// complete. The host calls this once per session, after either a snapshot
// restore or a default seed.
func (l *Ledger) Loaded() {
	l.events.ResourcesLoaded()
}

// ─── Internals (callers hold l.mu) ──────────────────────────────────────────

func (l *Ledger) amountLocked(r domain.Resource) int64 {
	return int64(math.Floor(l.current[r]))
}

// capLocked treats valid types without an explicit cap as DefaultCapacity
// and unknown types as zero.
func (l *Ledger) capLocked(r domain.Resource) int64 {
	if c, ok := l.capacity[r]; ok {
		return c
	}
	if r.Valid() {
		return l.defaultCapacity
	}
	return 0
}

func (l *Ledger) canAffordLocked(cost domain.Cost) bool {
	for r, need := range cost {
		if need > 0 && l.amountLocked(r) < need {
			return false
		}
	}
	return true
}

// creditLocked adds amount to r, clamped to capacity. With notify set it
// fires a change notification when the visible amount moves; edge events
// fire (or latch silently, when notify is false) either way.
func (l *Ledger) creditLocked(r domain.Resource, amount float64, reason string, notify bool) {
	if amount <= 0 {
		return
	}
	old := l.amountLocked(r)
	next := l.current[r] + amount
	if cap := float64(l.capLocked(r)); next > cap {
		next = cap
	}
	if next == l.current[r] {
		return
	}
	l.current[r] = next
	l.dirty = true

	if now := l.amountLocked(r); notify && now != old {
		l.events.ResourceChanged(r, old, now, now-old, reason)
	}
	l.updateEdgesLocked(r, notify)
}

// debitLocked removes amount from r, clamped at zero. The zero clamp should
// be unreachable behind an affordability check.
func (l *Ledger) debitLocked(r domain.Resource, amount float64, reason string) {
	if amount <= 0 {
		return
	}
	old := l.amountLocked(r)
	next := l.current[r] - amount
	if next < 0 {
		next = 0
	}
	l.current[r] = next
	l.dirty = true

	if now := l.amountLocked(r); now != old {
		l.events.ResourceChanged(r, old, now, now-old, reason)
	}
	l.updateEdgesLocked(r, true)
}

// earnLocked is the shared credit path for Earn, Refund, and bulk credits.
func (l *Ledger) earnLocked(reward domain.Cost, kind domain.TransactionKind, reason string, notify bool) {
	for r, n := range reward {
		if n <= 0 {
			continue
		}
		l.creditLocked(r, float64(n), reason, notify)
	}
	tx := domain.NewTransaction(kind, reason, reward, l.now(), true)
	l.history.Push(tx)
	l.events.TransactionComplete(tx)
	l.dirty = true
}

// updateEdgesLocked maintains the depleted/maxed latches for r, firing the
// edge events once per crossing.
func (l *Ledger) updateEdgesLocked(r domain.Resource, notify bool) {
	cap := l.capLocked(r)
	amount := l.amountLocked(r)

	atCap := cap > 0 && amount >= cap
	if atCap && !l.atCapacity[r] {
		l.atCapacity[r] = true
		if notify {
			l.events.ResourceMaxed(r)
		}
	} else if !atCap {
		l.atCapacity[r] = false
	}

	atZero := amount == 0
	if atZero && !l.atZero[r] {
		l.atZero[r] = true
		if notify {
			l.events.ResourceDepleted(r)
		}
	} else if !atZero {
		l.atZero[r] = false
	}
}
