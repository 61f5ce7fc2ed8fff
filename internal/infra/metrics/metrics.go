// Package metrics exposes Prometheus metrics for the economy core.
// The ledger itself stays metrics-unaware: a Sink implementing the domain
// event interface feeds the per-resource series.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Ledger Metrics ─────────────────────────────────────────────────────────

// TransactionsTotal counts recorded transactions by kind and outcome.
var TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "citadel",
	Subsystem: "ledger",
	Name:      "transactions_total",
	Help:      "Total recorded transactions by kind and outcome.",
}, []string{"kind", "success"})

// RejectedSpends counts spend attempts rejected for insufficient resources.
var RejectedSpends = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "citadel",
	Subsystem: "ledger",
	Name:      "rejected_spends_total",
	Help:      "Total spend attempts rejected for insufficient resources.",
})

// ResourceAmount tracks the externally visible amount per resource type.
var ResourceAmount = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "citadel",
	Subsystem: "ledger",
	Name:      "resource_amount",
	Help:      "Current visible amount per resource type.",
}, []string{"resource"})

// ResourceDepletions counts depleted-edge crossings per resource type.
var ResourceDepletions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "citadel",
	Subsystem: "ledger",
	Name:      "resource_depletions_total",
	Help:      "Times a resource was driven to zero.",
}, []string{"resource"})

// ResourceMaxouts counts capacity-edge crossings per resource type.
var ResourceMaxouts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "citadel",
	Subsystem: "ledger",
	Name:      "resource_maxouts_total",
	Help:      "Times a resource first reached its storage capacity.",
}, []string{"resource"})

// ─── Daemon Metrics ─────────────────────────────────────────────────────────

// TickDuration tracks how long one generation tick takes.
var TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "citadel",
	Subsystem: "daemon",
	Name:      "tick_duration_seconds",
	Help:      "Wall time of one generation tick.",
	Buckets:   []float64{.000_01, .000_05, .000_1, .000_5, .001, .005, .01},
})

// Autosaves counts snapshot writes by trigger.
var Autosaves = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "citadel",
	Subsystem: "daemon",
	Name:      "snapshot_saves_total",
	Help:      "Total snapshot writes by trigger (interval or shutdown).",
}, []string{"trigger"})

// SaveFailures counts snapshot writes that failed.
var SaveFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "citadel",
	Subsystem: "daemon",
	Name:      "snapshot_save_failures_total",
	Help:      "Total snapshot writes that returned an error.",
})
