// Package metrics exposes Prometheus counters for the entry lifecycle and
// the balance bookkeeping behind it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntriesCreated counts successfully recorded expense entries.
	EntriesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roomledger_entries_created_total",
		Help: "Number of expense entries created.",
	})

	// EntriesSettled counts per-member share settlements.
	EntriesSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roomledger_entries_settled_total",
		Help: "Number of member shares marked paid.",
	})

	// EntriesDeleted counts entry deletions (balance reversals).
	EntriesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roomledger_entries_deleted_total",
		Help: "Number of expense entries deleted.",
	})

	// BalanceUpdateFailures counts entry mutations whose balance deltas
	// could not be applied. Every failure here aborted its transaction,
	// but a non-zero rate still points at integrity or storage trouble.
	BalanceUpdateFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roomledger_balance_update_failures_total",
		Help: "Number of failed ledger balance updates.",
	})

	// BalanceUpdateDuration tracks how long entry mutations (including
	// their balance transaction) take.
	BalanceUpdateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "roomledger_balance_update_duration_seconds",
		Help:    "Duration of entry mutations including their balance transaction.",
		Buckets: prometheus.DefBuckets,
	})
)
