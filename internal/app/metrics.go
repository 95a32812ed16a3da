package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshThrottled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "devicescope_refresh_throttled_total",
			Help: "Refresh requests answered with the current snapshot because of rate limiting",
		},
	)

	persistFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devicescope_persist_failures_total",
			Help: "Failed writes to the history store",
		},
		[]string{"kind"}, // snapshot, offline, performance, search
	)
)
