// Package sampler runs the periodic performance sampler: every interval it
// derives a frame-rate estimate from a tick counter and a memory estimate from
// MemoryModel, and pushes the sample into a bounded window.
package sampler

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/Guliveer/devicescope/internal/events"
	"github.com/Guliveer/devicescope/internal/lifecycle"
	"github.com/Guliveer/devicescope/internal/models"
)

// DefaultInterval is the sampling period.
const DefaultInterval = time.Second

// rateWindow is the minimum time between frame-rate recomputations.
const rateWindow = time.Second

// Options configures a Sampler. Zero values select the defaults.
type Options struct {
	Interval   time.Duration
	WindowSize int
	Memory     *MemoryModel
	Clock      clock.WithTicker
	Bus        *events.Bus
	Logger     *zap.Logger
}

// Sampler produces synthetic performance samples on a fixed period.
type Sampler struct {
	interval time.Duration
	memory   MemoryModel
	clock    clock.WithTicker
	bus      *events.Bus
	logger   *zap.Logger

	mu         sync.Mutex
	running    bool
	generation uint64
	stop       chan struct{}
	window     *Window
	origin     time.Time

	// Frame-rate state: frames counted since anchor, and the carried rate.
	frames int
	anchor time.Time
	fps    float64
}

// New creates a stopped sampler with an empty window.
func New(opts Options) *Sampler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	memory := DefaultMemoryModel()
	if opts.Memory != nil {
		memory = *opts.Memory
	}
	return &Sampler{
		interval: opts.Interval,
		memory:   memory,
		clock:    opts.Clock,
		bus:      opts.Bus,
		logger:   opts.Logger,
		window:   NewWindow(opts.WindowSize),
		origin:   opts.Clock.Now(),
		fps:      models.MaxFPS,
	}
}

// Start begins sampling. Starting a running sampler is a no-op. The window
// is kept across Stop/Start; use Reset to clear it.
func (s *Sampler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.generation++
	s.anchor = s.clock.Now()
	s.frames = 0

	ticker := s.clock.NewTicker(s.interval)
	s.stop = make(chan struct{})
	go s.loop(s.generation, ticker, s.stop)

	s.logger.Info("Sampler started", zap.Duration("interval", s.interval))
	s.bus.Publish(events.Event{Kind: events.SamplerStateChanged, Enabled: true})
}

// Stop halts sampling. It is idempotent, and no sample is pushed after it
// returns.
func (s *Sampler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.generation++
	close(s.stop)
	s.stop = nil

	s.logger.Info("Sampler stopped")
	s.bus.Publish(events.Event{Kind: events.SamplerStateChanged, Enabled: false})
}

// Running reports whether the sampler is active.
func (s *Sampler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// CurrentWindow returns a copy of the sample window.
func (s *Sampler) CurrentWindow() Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.clone()
}

// AverageMetrics returns the window averages and the latest sample's values.
func (s *Sampler) AverageMetrics() models.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Averages()
}

// Reset clears the window and the frame-rate state.
func (s *Sampler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window.Reset()
	s.frames = 0
	s.anchor = s.clock.Now()
	s.fps = models.MaxFPS
}

// MarkFrame records a rendered frame between ticks.
func (s *Sampler) MarkFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.frames++
	}
}

// OnAppStateChange stops the sampler when the application leaves the
// foreground. Returning to Active does not restart it.
func (s *Sampler) OnAppStateChange(state lifecycle.State) {
	if state == lifecycle.Background {
		s.logger.Debug("Application in background, stopping sampler")
		s.Stop()
	}
}

func (s *Sampler) loop(gen uint64, ticker clock.Ticker, stop <-chan struct{}) {
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			if !s.tick(gen) {
				return
			}
		}
	}
}

// tick takes one sample. It runs under mu, so Stop either happens before the
// generation check or waits for the push to finish. A panic skips the tick
// and leaves the window unchanged. It returns false once gen is stale.
func (s *Sampler) tick(gen uint64) (alive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.generation != gen {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			skippedTicks.Inc()
			s.logger.Error("Sampler tick failed, skipping", zap.Any("panic", r))
			alive = true
		}
	}()

	sample := s.sample(s.clock.Now())
	s.window.Push(sample)
	samplesTotal.Inc()
	currentFPS.Set(sample.FPS)
	currentMemory.Set(sample.MemoryMB)
	s.bus.Publish(events.Event{Kind: events.SampleAdded, Sample: sample})
	return true
}

// sample computes the next estimates. The frame rate is recomputed once at
// least a second has passed since the anchor and carried forward otherwise.
func (s *Sampler) sample(now time.Time) models.Sample {
	s.frames++
	if elapsed := now.Sub(s.anchor); elapsed >= rateWindow {
		ms := float64(elapsed) / float64(time.Millisecond)
		rate := math.Round(float64(s.frames) * 1000 / ms)
		s.fps = math.Min(math.Max(rate, 0), models.MaxFPS)
		s.frames = 0
		s.anchor = now
	}
	return models.Sample{
		Timestamp: now,
		FPS:       s.fps,
		MemoryMB:  s.memory.Estimate(now.Sub(s.origin)),
	}
}
