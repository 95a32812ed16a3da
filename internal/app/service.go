// Package app wires the collector, sampler, search engine and persistence
// into the Service consumed by presentation layers.
package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"k8s.io/utils/clock"

	"github.com/Guliveer/devicescope/internal/category"
	"github.com/Guliveer/devicescope/internal/collector"
	"github.com/Guliveer/devicescope/internal/config"
	"github.com/Guliveer/devicescope/internal/events"
	"github.com/Guliveer/devicescope/internal/history"
	"github.com/Guliveer/devicescope/internal/lifecycle"
	"github.com/Guliveer/devicescope/internal/models"
	"github.com/Guliveer/devicescope/internal/provider"
	"github.com/Guliveer/devicescope/internal/sampler"
	"github.com/Guliveer/devicescope/internal/scheduler"
	"github.com/Guliveer/devicescope/internal/search"
	"github.com/Guliveer/devicescope/internal/store"
	"github.com/Guliveer/devicescope/internal/theme"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// InstallationIDKey is the store key holding the per-install identifier.
const InstallationIDKey = "installation_id"

// Options configures a Service.
type Options struct {
	Config *config.Config
	Logger *zap.Logger
	Clock  clock.WithTicker

	// KV overrides the store selected by Config.Storage.
	KV store.KV

	// Providers replaces DefaultProviders. The installation ID is still
	// created when missing.
	Providers []provider.Provider

	// SystemDark reports the terminal background for the system theme.
	SystemDark func() bool
}

// Service is the presentation-facing facade over the telemetry core.
type Service struct {
	cfg    *config.Config
	logger *zap.Logger
	clock  clock.WithTicker

	bus       *events.Bus
	collector *collector.Collector
	sampler   *sampler.Sampler
	engine    *search.Engine
	tracker   *lifecycle.Tracker
	limiter   *rate.Limiter

	kv       store.KV
	history  *history.Manager
	theme    *theme.Manager
	searchMu sync.Mutex
	searches *search.History

	installationID string
	resume         atomic.Bool
	closeOnce      sync.Once
}

// New assembles a service. It opens the configured store, restores the theme
// and search history and registers the providers. No collection runs until
// Refresh or SetLiveMode is called.
func New(ctx context.Context, opts Options) (*Service, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	kv := opts.KV
	if kv == nil {
		kv = store.Open(cfg.Storage.Driver, cfg.Storage.Path, logger)
	}

	s := &Service{
		cfg:     cfg,
		logger:  logger,
		clock:   clk,
		bus:     events.New(),
		tracker: &lifecycle.Tracker{},
		kv:      kv,
		history: history.NewManager(kv, cfg.Storage.HistoryLimit, logger.Named("history")),
		theme:   theme.NewManager(kv, opts.SystemDark, logger.Named("theme")),
		engine:  search.New(category.Default()),
	}

	s.limiter = rate.NewLimiter(rate.Inf, 0)
	if every := cfg.Collection.RefreshRate.Duration; every > 0 {
		s.limiter = rate.NewLimiter(rate.Every(every), max(cfg.Collection.RefreshBurst, 1))
	}

	s.theme.Load(ctx)
	s.searches = search.NewHistory(search.DefaultHistoryLimit, s.history.SearchHistory(ctx)...)

	id, err := s.loadInstallationID(ctx)
	if err != nil {
		logger.Warn("Failed to persist installation ID", zap.Error(err))
	}
	s.installationID = id

	s.collector = collector.New(collector.Options{
		LiveInterval:    cfg.Collection.LiveInterval.Duration,
		ProviderTimeout: cfg.Collection.ProviderTimeout.Duration,
		Clock:           clk,
		Bus:             s.bus,
		Logger:          logger.Named("collector"),
	})
	providers := opts.Providers
	if providers == nil {
		providers = DefaultProviders(cfg, id, func() string { return s.tracker.Current().String() }, logger.Named("provider"))
	}
	for _, p := range providers {
		if err := s.collector.Register(p); err != nil {
			return nil, fmt.Errorf("register provider %s: %w", p.Name(), err)
		}
	}

	s.sampler = sampler.New(sampler.Options{
		Interval:   cfg.Sampler.Interval.Duration,
		WindowSize: cfg.Sampler.WindowSize,
		Memory: &sampler.MemoryModel{
			BaseMB:      cfg.Sampler.BaseMemoryMB,
			AmplitudeMB: cfg.Sampler.AmplitudeMB,
			Period:      cfg.Sampler.OscillationTime.Duration,
			JitterMB:    cfg.Sampler.JitterMB,
		},
		Clock:  clk,
		Bus:    s.bus,
		Logger: logger.Named("sampler"),
	})

	s.tracker.OnChange(s.onStateChange)

	logger.Info("Service ready",
		zap.Int("providers", len(s.collector.Providers())),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("theme", string(s.theme.Mode())))
	return s, nil
}

func (s *Service) loadInstallationID(ctx context.Context) (string, error) {
	data, ok, err := s.kv.Load(ctx, InstallationIDKey)
	if err == nil && ok {
		var id string
		if json.Unmarshal(data, &id) == nil && id != "" {
			return id, nil
		}
	}
	id := uuid.NewString()
	encoded, err := json.Marshal(id)
	if err != nil {
		return id, err
	}
	return id, s.kv.Save(ctx, InstallationIDKey, encoded)
}

// InstallationID returns the persisted per-install identifier.
func (s *Service) InstallationID() string { return s.installationID }

// CurrentSnapshot returns the latest snapshot, or nil before the first
// collection.
func (s *Service) CurrentSnapshot() *models.Snapshot { return s.collector.Current() }

// Refresh collects a new snapshot. Requests beyond the configured rate are
// answered with the current snapshot when one exists.
func (s *Service) Refresh(ctx context.Context) *models.Snapshot {
	if !s.limiter.Allow() {
		if current := s.collector.Current(); current != nil {
			refreshThrottled.Inc()
			s.logger.Debug("Refresh throttled")
			return current
		}
	}
	return s.collector.Refresh(ctx)
}

// Filter evaluates q against the current snapshot.
func (s *Service) Filter(q search.Query) []category.Match {
	return s.engine.Filter(s.collector.Current(), q)
}

// Suggest returns search suggestions for text.
func (s *Service) Suggest(text string) []string {
	return s.engine.Suggest(s.collector.Current(), text)
}

// Corrections returns attribute keys spelled close to text.
func (s *Service) Corrections(text string) []string {
	return s.engine.Corrections(s.collector.Current(), text)
}

// Categories returns the category index used for filtering.
func (s *Service) Categories() *category.Index { return s.engine.Index() }

// RecordSearch adds term to the recent searches and persists them.
func (s *Service) RecordSearch(ctx context.Context, term string) {
	s.searchMu.Lock()
	s.searches.Add(term)
	terms := s.searches.Terms()
	s.searchMu.Unlock()
	if err := s.history.SaveSearchHistory(ctx, terms); err != nil {
		persistFailures.WithLabelValues("search").Inc()
		s.logger.Warn("Failed to save search history", zap.Error(err))
	}
}

// RecentSearches returns recent search terms, newest first.
func (s *Service) RecentSearches() []string {
	s.searchMu.Lock()
	defer s.searchMu.Unlock()
	return s.searches.Terms()
}

// CurrentWindow returns a copy of the sample window.
func (s *Service) CurrentWindow() sampler.Window { return s.sampler.CurrentWindow() }

// AverageMetrics summarises the sample window.
func (s *Service) AverageMetrics() models.Metrics { return s.sampler.AverageMetrics() }

// Subscribe returns a channel of change notifications and its cancel func.
func (s *Service) Subscribe() (<-chan events.Event, func()) { return s.bus.Subscribe() }

// SetLiveMode starts or stops periodic collection.
func (s *Service) SetLiveMode(enabled bool) { s.collector.SetLiveMode(enabled) }

// LiveMode reports whether periodic collection is on.
func (s *Service) LiveMode() bool { return s.collector.LiveMode() }

// StartSampler starts the performance sampler.
func (s *Service) StartSampler() { s.sampler.Start() }

// StopSampler stops the performance sampler.
func (s *Service) StopSampler() { s.sampler.Stop() }

// SamplerRunning reports whether the sampler is running.
func (s *Service) SamplerRunning() bool { return s.sampler.Running() }

// MarkFrame records a rendered frame for the frame-rate estimate.
func (s *Service) MarkFrame() { s.sampler.MarkFrame() }

// AppStateChanged records a lifecycle transition. Entering the background
// stops the sampler; returning to Active restarts it if it was running.
func (s *Service) AppStateChanged(state lifecycle.State) { s.tracker.Set(state) }

// Lifecycle returns the state tracker, for OS signal watchers.
func (s *Service) Lifecycle() *lifecycle.Tracker { return s.tracker }

func (s *Service) onStateChange(state lifecycle.State) {
	switch state {
	case lifecycle.Background:
		s.resume.Store(s.sampler.Running())
		s.sampler.OnAppStateChange(state)
	case lifecycle.Active:
		if s.resume.Swap(false) {
			s.sampler.Start()
		}
	}
	s.logger.Debug("App state changed", zap.Stringer("state", state))
}

// History returns the persistence manager.
func (s *Service) History() *history.Manager { return s.history }

// Theme returns the theme manager.
func (s *Service) Theme() *theme.Manager { return s.theme }

// Run persists snapshots and sample windows until ctx is cancelled, flushing
// every storage flush interval and once more on return.
func (s *Service) Run(ctx context.Context) {
	ch, cancel := s.bus.Subscribe()
	defer cancel()

	sched := scheduler.New(s.cfg.Storage.FlushInterval.Duration, s.clock, s.logger.Named("scheduler"))
	sched.OnBatchReady(func(b scheduler.Batch) { s.persist(context.WithoutCancel(ctx), b) })
	sched.Start(ctx, ch)
}

// persist writes one batch. Snapshots taken while disconnected also go to
// the offline queue.
func (s *Service) persist(ctx context.Context, b scheduler.Batch) {
	for _, snap := range b.Snapshots {
		if _, err := s.history.SaveSnapshot(ctx, snap); err != nil {
			persistFailures.WithLabelValues("snapshot").Inc()
			s.logger.Warn("Failed to save snapshot", zap.Error(err))
		}
		if v, ok := snap.Get("Is Connected"); ok && v.String() == "No" {
			if err := s.history.SaveOffline(ctx, snap); err != nil {
				persistFailures.WithLabelValues("offline").Inc()
				s.logger.Warn("Failed to queue offline snapshot", zap.Error(err))
			}
		}
	}
	if len(b.Samples) > 0 {
		if err := s.savePerformance(ctx); err != nil {
			s.logger.Warn("Failed to save performance data", zap.Error(err))
		}
	}
}

func (s *Service) savePerformance(ctx context.Context) error {
	window := s.sampler.CurrentWindow()
	if window.Len() == 0 {
		return nil
	}
	if err := s.history.SavePerformance(ctx, window.Samples(), window.Averages()); err != nil {
		persistFailures.WithLabelValues("performance").Inc()
		return err
	}
	return nil
}

// Close stops live mode and the sampler, saves the sample window and closes
// the store. Call it after Run has returned. It is safe to call more than
// once.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.collector.Close()
		s.sampler.Stop()
		s.bus.Close()
		err = multierr.Append(s.savePerformance(context.Background()), s.kv.Close())
		s.logger.Info("Service stopped")
	})
	return err
}
