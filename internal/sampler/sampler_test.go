package sampler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/Guliveer/devicescope/internal/events"
	"github.com/Guliveer/devicescope/internal/lifecycle"
)

var epoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestSampler(t *testing.T, interval time.Duration, model *MemoryModel) (*Sampler, *testingclock.FakeClock) {
	t.Helper()
	clk := testingclock.NewFakeClock(epoch)
	s := New(Options{Interval: interval, Clock: clk, Memory: model})
	t.Cleanup(s.Stop)
	return s, clk
}

// step advances the clock by d and waits until the window holds want samples.
func step(t *testing.T, s *Sampler, clk *testingclock.FakeClock, d time.Duration, want int) {
	t.Helper()
	clk.Step(d)
	require.Eventually(t, func() bool { return s.CurrentWindow().Len() == want },
		time.Second, time.Millisecond, "window length never reached %d", want)
}

func TestSampler_ProducesSamples(t *testing.T) {
	s, clk := newTestSampler(t, time.Second, nil)
	s.Start()
	s.Start()
	require.True(t, s.Running())

	for i := 1; i <= 3; i++ {
		step(t, s, clk, time.Second, i)
	}

	w := s.CurrentWindow()
	lo, hi := DefaultMemoryModel().Bounds()
	for _, sm := range w.Samples() {
		assert.GreaterOrEqual(t, sm.FPS, 0.0)
		assert.LessOrEqual(t, sm.FPS, 60.0)
		assert.GreaterOrEqual(t, sm.MemoryMB, lo)
		assert.LessOrEqual(t, sm.MemoryMB, hi)
	}
	latest, _ := w.Latest()
	assert.Equal(t, epoch.Add(3*time.Second), latest.Timestamp)
}

func TestSampler_FrameRate(t *testing.T) {
	s, clk := newTestSampler(t, time.Second, nil)
	s.Start()

	for i := 0; i < 29; i++ {
		s.MarkFrame()
	}
	step(t, s, clk, time.Second, 1)
	assert.Equal(t, 30.0, s.AverageMetrics().CurrentFPS)

	for i := 0; i < 200; i++ {
		s.MarkFrame()
	}
	step(t, s, clk, time.Second, 2)
	assert.Equal(t, 60.0, s.AverageMetrics().CurrentFPS, "rate is clamped to 60")
}

func TestSampler_RateCarriedBetweenRecomputations(t *testing.T) {
	s, clk := newTestSampler(t, 500*time.Millisecond, nil)
	s.Start()

	step(t, s, clk, 500*time.Millisecond, 1)
	assert.Equal(t, 60.0, s.AverageMetrics().CurrentFPS, "initial rate carried until a second elapses")

	step(t, s, clk, 500*time.Millisecond, 2)
	assert.Equal(t, 2.0, s.AverageMetrics().CurrentFPS)

	step(t, s, clk, 500*time.Millisecond, 3)
	assert.Equal(t, 2.0, s.AverageMetrics().CurrentFPS)
}

func TestSampler_StopIsSynchronousAndIdempotent(t *testing.T) {
	s, clk := newTestSampler(t, time.Second, nil)
	s.Start()
	step(t, s, clk, time.Second, 1)

	s.Stop()
	s.Stop()
	assert.False(t, s.Running())

	clk.Step(5 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, s.CurrentWindow().Len())
}

func TestSampler_PanickingTickIsSkipped(t *testing.T) {
	var calls atomic.Int32
	model := DefaultMemoryModel()
	model.Rand = func() float64 {
		if calls.Add(1) == 2 {
			panic("entropy exhausted")
		}
		return 0.5
	}
	s, clk := newTestSampler(t, time.Second, &model)
	s.Start()

	step(t, s, clk, time.Second, 1)
	before := s.CurrentWindow().Samples()
	skipped := testutil.ToFloat64(skippedTicks)

	clk.Step(time.Second)
	require.Eventually(t, func() bool { return testutil.ToFloat64(skippedTicks) == skipped+1 },
		time.Second, time.Millisecond)
	assert.Equal(t, before, s.CurrentWindow().Samples(), "window unchanged by the failed tick")
	assert.True(t, s.Running())

	step(t, s, clk, time.Second, 2)
}

func TestSampler_BackgroundStops(t *testing.T) {
	s, clk := newTestSampler(t, time.Second, nil)
	s.Start()
	step(t, s, clk, time.Second, 1)

	s.OnAppStateChange(lifecycle.Inactive)
	assert.True(t, s.Running())

	s.OnAppStateChange(lifecycle.Background)
	assert.False(t, s.Running())

	s.OnAppStateChange(lifecycle.Active)
	assert.False(t, s.Running(), "resume is the caller's job")
}

func TestSampler_RestartKeepsWindowResetClears(t *testing.T) {
	s, clk := newTestSampler(t, time.Second, nil)
	s.Start()
	step(t, s, clk, time.Second, 1)
	s.Stop()

	s.Start()
	step(t, s, clk, time.Second, 2)

	s.Reset()
	assert.Equal(t, 0, s.CurrentWindow().Len())
	assert.Equal(t, 20, s.CurrentWindow().Cap())
	step(t, s, clk, time.Second, 1)
}

func TestSampler_AverageMetricsEmpty(t *testing.T) {
	s := New(Options{})
	m := s.AverageMetrics()
	assert.Zero(t, m.AvgFPS)
	assert.Zero(t, m.AvgMemory)
	assert.Zero(t, m.CurrentFPS)
	assert.Zero(t, m.CurrentMemory)
}

func TestSampler_PublishesSamples(t *testing.T) {
	bus := events.New()
	ch, cancel := bus.Subscribe()
	defer cancel()
	clk := testingclock.NewFakeClock(epoch)
	s := New(Options{Clock: clk, Bus: bus})
	defer s.Stop()

	s.Start()
	e := <-ch
	assert.Equal(t, events.SamplerStateChanged, e.Kind)
	assert.True(t, e.Enabled)

	clk.Step(time.Second)
	e = <-ch
	assert.Equal(t, events.SampleAdded, e.Kind)
	assert.Equal(t, epoch.Add(time.Second), e.Sample.Timestamp)
}

func TestSampler_CurrentWindowIsDetachedCopy(t *testing.T) {
	s, clk := newTestSampler(t, time.Second, nil)
	s.Start()
	step(t, s, clk, time.Second, 1)

	snapshot := s.CurrentWindow()
	assert.Equal(t, 1, s.CurrentWindow().Len())
	assert.Equal(t, s.AverageMetrics(), s.CurrentWindow().Averages())

	step(t, s, clk, time.Second, 2)
	assert.Equal(t, 1, snapshot.Len(), "copy does not follow later samples")
	assert.Len(t, snapshot.Samples(), 1)
}
