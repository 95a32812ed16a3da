package sampler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	samplesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "devicescope_sampler_samples_total",
			Help: "Samples pushed into the performance window",
		},
	)

	skippedTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "devicescope_sampler_skipped_ticks_total",
			Help: "Sampler ticks skipped after a recovered panic",
		},
	)

	currentFPS = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "devicescope_sampler_fps",
			Help: "Latest frame-rate estimate",
		},
	)

	currentMemory = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "devicescope_sampler_memory_megabytes",
			Help: "Latest memory estimate in megabytes",
		},
	)
)
