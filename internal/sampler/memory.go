package sampler

import (
	"math"
	"math/rand/v2"
	"time"
)

// MemoryModel produces the synthetic memory estimate: a base value, a slow
// sine oscillation and bounded uniform jitter, never below zero. It is a
// stand-in for a real memory read, not a measurement.
type MemoryModel struct {
	BaseMB      float64
	AmplitudeMB float64
	Period      time.Duration
	JitterMB    float64

	// Rand returns a uniform value in [0, 1). Nil uses math/rand/v2.
	Rand func() float64
}

// DefaultMemoryModel returns the 250MB ± 50MB, 10s, ±10MB model.
func DefaultMemoryModel() MemoryModel {
	return MemoryModel{BaseMB: 250, AmplitudeMB: 50, Period: 10 * time.Second, JitterMB: 10}
}

// Estimate returns the memory estimate at elapsed time t.
func (m MemoryModel) Estimate(t time.Duration) float64 {
	var wave float64
	if m.Period > 0 {
		wave = m.AmplitudeMB * math.Sin(float64(t)/float64(m.Period))
	}
	rnd := m.Rand
	if rnd == nil {
		rnd = rand.Float64
	}
	jitter := (rnd()*2 - 1) * m.JitterMB
	return math.Max(m.BaseMB+wave+jitter, 0)
}

// Bounds returns the range every estimate falls in.
func (m MemoryModel) Bounds() (lo, hi float64) {
	spread := math.Abs(m.AmplitudeMB) + math.Abs(m.JitterMB)
	return math.Max(m.BaseMB-spread, 0), math.Max(m.BaseMB+spread, 0)
}
