package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Snapshot collection metrics
	collectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "devicescope_snapshot_collection_duration_seconds",
			Help:    "Time taken to collect and merge a complete snapshot",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	collectionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devicescope_snapshot_collection_total",
			Help: "Total number of snapshot collections",
		},
		[]string{"status"}, // success or error
	)

	providerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devicescope_provider_duration_seconds",
			Help:    "Time taken by individual providers",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"provider"},
	)

	providerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devicescope_provider_failures_total",
			Help: "Provider queries that fell back to their error entries",
		},
		[]string{"provider"},
	)

	refreshCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "devicescope_refresh_coalesced_total",
			Help: "Refresh calls that shared an in-flight collection",
		},
	)

	snapshotAttributes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "devicescope_snapshot_attributes",
			Help: "Number of attributes in the last collected snapshot",
		},
	)
)
