package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wise_academy"

var (
	// FetchResults counts platform fetch outcomes: ok or unavailable.
	FetchResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetcher",
			Name:      "results_total",
			Help:      "External platform fetch outcomes",
		},
		[]string{"platform", "kind", "outcome"},
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "stats",
			Name:      "sync_duration_seconds",
			Help:      "Duration of a single-user aggregate sync",
			Buckets:   prometheus.DefBuckets,
		},
	)

	StatsUpserts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stats",
			Name:      "upserts_total",
			Help:      "UserStats upserts by outcome",
		},
		[]string{"outcome"},
	)

	ReconciledProblems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "reconciled_total",
			Help:      "Catalog problems newly marked solved by reconciliation",
		},
		[]string{"platform"},
	)

	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)
