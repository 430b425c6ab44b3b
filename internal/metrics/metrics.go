// Package metrics declares the reconciler's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreLoadFailures counts stores that failed to load and contributed nothing
	StoreLoadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciler_store_load_failures_total",
		Help: "Stores that failed to load and were treated as empty",
	}, []string{"store"})

	// RecordsRejected counts raw elements dropped before merging
	RecordsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciler_records_rejected_total",
		Help: "Raw store elements rejected before merging, by reason",
	}, []string{"reason"})

	// RecordsMerged tracks the size of each reconciliation pass
	RecordsMerged = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reconciler_records_merged",
		Help:    "Orders produced per reconciliation pass",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 to ~16k
	})

	// GuardActivations counts terminal statuses restored after derivation
	GuardActivations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciler_terminal_guard_activations_total",
		Help: "Terminal statuses restored after status derivation tried to change them",
	}, []string{"original_status"})

	// ReconcileDuration tracks pass latency
	ReconcileDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reconciler_pass_duration_seconds",
		Help:    "Duration of reconcile and audit passes",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"operation"})
)
