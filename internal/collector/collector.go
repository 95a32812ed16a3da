// Package collector merges the output of independent attribute providers into
// one immutable snapshot. Providers run concurrently; a failing, slow or
// panicking provider contributes its fallback entries and never aborts the
// collection. The collector also owns the live-mode timer that refreshes the
// snapshot periodically.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"k8s.io/utils/clock"

	"github.com/Guliveer/devicescope/internal/events"
	"github.com/Guliveer/devicescope/internal/models"
	"github.com/Guliveer/devicescope/internal/provider"
)

var (
	// ErrKeyCollision is returned by Register when a provider declares a key
	// that another registered provider already owns.
	ErrKeyCollision = errors.New("collector: attribute key already owned by another provider")

	// ErrDuplicateProvider is returned by Register for a repeated provider name.
	ErrDuplicateProvider = errors.New("collector: provider already registered")

	// ErrCollectionFailed marks a collection that could not be merged.
	ErrCollectionFailed = errors.New("collector: failed to collect device information")
)

const (
	// DefaultLiveInterval is the live-mode refresh period.
	DefaultLiveInterval = 5 * time.Second
	// DefaultProviderTimeout bounds a single provider query.
	DefaultProviderTimeout = 10 * time.Second

	collectionErrorMessage = "Failed to collect device information"
)

// Options configures a Collector. Zero values select the defaults.
type Options struct {
	LiveInterval    time.Duration
	ProviderTimeout time.Duration
	Clock           clock.WithTicker
	Bus             *events.Bus
	Logger          *zap.Logger
}

// Collector queries registered providers and keeps the latest snapshot.
type Collector struct {
	liveInterval    time.Duration
	providerTimeout time.Duration
	clock           clock.WithTicker
	bus             *events.Bus
	logger          *zap.Logger

	regMu     sync.RWMutex
	providers []provider.Provider
	owners    map[string]string // attribute key -> provider name

	snapMu  sync.RWMutex
	current *models.Snapshot

	flight singleflight.Group

	liveMu     sync.Mutex
	live       bool
	generation uint64
	stopLive   chan struct{}
	liveDone   chan struct{}
}

// New creates a collector with no providers.
func New(opts Options) *Collector {
	if opts.LiveInterval <= 0 {
		opts.LiveInterval = DefaultLiveInterval
	}
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = DefaultProviderTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Collector{
		liveInterval:    opts.LiveInterval,
		providerTimeout: opts.ProviderTimeout,
		clock:           opts.Clock,
		bus:             opts.Bus,
		logger:          opts.Logger,
		owners:          map[string]string{models.LastUpdatedKey: "collector"},
	}
}

// Register adds a provider if it's available on the current platform.
// Unavailable providers are logged and skipped. A provider whose declared
// keys overlap another provider's keys is rejected with ErrKeyCollision.
func (c *Collector) Register(p provider.Provider) error {
	if !p.IsAvailable() {
		c.logger.Warn("Provider not available, skipping", zap.String("name", p.Name()))
		return nil
	}

	c.regMu.Lock()
	defer c.regMu.Unlock()
	for _, existing := range c.providers {
		if existing.Name() == p.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicateProvider, p.Name())
		}
	}
	keys := p.Keys()
	for _, k := range keys {
		if owner, ok := c.owners[k]; ok {
			return fmt.Errorf("%w: %q claimed by %s and %s", ErrKeyCollision, k, owner, p.Name())
		}
	}
	for _, k := range keys {
		c.owners[k] = p.Name()
	}
	c.providers = append(c.providers, p)
	c.logger.Info("Registered provider", zap.String("name", p.Name()), zap.Int("keys", len(keys)))
	return nil
}

// Providers returns a copy of all registered providers in registration order.
func (c *Collector) Providers() []provider.Provider {
	c.regMu.RLock()
	defer c.regMu.RUnlock()
	result := make([]provider.Provider, len(c.providers))
	copy(result, c.providers)
	return result
}

// Collect queries every provider concurrently and merges the results in
// registration order. It never fails: provider failures become fallback
// entries and a merge failure yields a minimal error snapshot. The result
// replaces the current snapshot.
func (c *Collector) Collect(ctx context.Context) *models.Snapshot {
	start := c.clock.Now()
	providers := c.Providers()
	results := make([]models.ProviderResult, len(providers))

	// Every goroutine returns nil, so one failure never cancels the others.
	var g errgroup.Group
	for i, p := range providers {
		g.Go(func() error {
			results[i] = c.query(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	snap, err := c.merge(providers, results)
	if err != nil {
		collectionTotal.WithLabelValues("error").Inc()
		c.logger.Error("Snapshot merge failed", zap.Error(err))
	} else {
		collectionTotal.WithLabelValues("success").Inc()
	}
	collectionDuration.Observe(c.clock.Since(start).Seconds())
	snapshotAttributes.Set(float64(snap.Len()))

	c.snapMu.Lock()
	c.current = snap
	c.snapMu.Unlock()

	c.logger.Debug("Collected snapshot",
		zap.Int("attributes", snap.Len()),
		zap.Duration("took", c.clock.Since(start)))
	c.bus.Publish(events.Event{Kind: events.SnapshotUpdated, Snapshot: snap})
	return snap
}

// Refresh runs a collection, sharing it with any refresh already in flight.
// The shared collection ignores the cancellation of individual callers.
func (c *Collector) Refresh(ctx context.Context) *models.Snapshot {
	return c.awaitRefresh(c.startRefresh(ctx))
}

// startRefresh joins the in-flight collection or starts a new one.
func (c *Collector) startRefresh(ctx context.Context) <-chan singleflight.Result {
	return c.flight.DoChan("collect", func() (interface{}, error) {
		return c.Collect(context.WithoutCancel(ctx)), nil
	})
}

func (c *Collector) awaitRefresh(ch <-chan singleflight.Result) *models.Snapshot {
	res := <-ch
	if res.Shared {
		refreshCoalesced.Inc()
	}
	return res.Val.(*models.Snapshot)
}

// Current returns the latest snapshot, or nil before the first collection.
func (c *Collector) Current() *models.Snapshot {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	return c.current
}

// query runs one provider under the per-provider timeout. The provider runs
// on its own goroutine so a provider ignoring its context cannot stall the
// whole collection; its late result is discarded.
func (c *Collector) query(ctx context.Context, p provider.Provider) models.ProviderResult {
	ctx, cancel := context.WithTimeout(ctx, c.providerTimeout)
	defer cancel()

	type outcome struct {
		result models.ProviderResult
		err    error
	}
	done := make(chan outcome, 1)
	start := c.clock.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: &provider.PanicError{Value: r}}
			}
		}()
		res, err := p.Query(ctx)
		done <- outcome{result: res, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out = outcome{err: ctx.Err()}
	}
	providerDuration.WithLabelValues(p.Name()).Observe(c.clock.Since(start).Seconds())

	if out.err == nil {
		return out.result
	}
	perr := &provider.Error{Provider: p.Name(), Err: out.err}
	providerFailures.WithLabelValues(p.Name()).Inc()
	c.logger.Warn("Provider failed, using fallback", zap.Error(perr))
	return c.fallback(p, out.err)
}

// fallback guards against a Fallback implementation that itself panics.
func (c *Collector) fallback(p provider.Provider, cause error) (result models.ProviderResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Provider fallback panicked", zap.String("provider", p.Name()), zap.Any("panic", r))
			result = models.ErrorResult(cases.Title(language.English).String(p.Name())+" Error", fmt.Sprint(cause))
		}
	}()
	return p.Fallback(cause)
}

// merge folds the results into a snapshot in registration order and stamps
// "Last Updated". A panic here produces the minimal error snapshot.
func (c *Collector) merge(providers []provider.Provider, results []models.ProviderResult) (snap *models.Snapshot, err error) {
	now := c.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCollectionFailed, r)
			snap = minimalSnapshot(fmt.Sprint(r), now)
		}
	}()

	b := models.NewSnapshotBuilder()
	for i, result := range results {
		for _, key := range b.Merge(result) {
			c.logger.Warn("Duplicate attribute key, later provider wins",
				zap.String("key", key),
				zap.String("provider", providers[i].Name()))
		}
	}
	b.Set(models.LastUpdatedKey, models.Text(now.Format(models.TimestampLayout)))
	return b.Build(now), nil
}

func minimalSnapshot(message string, now time.Time) *models.Snapshot {
	b := models.NewSnapshotBuilder()
	b.Set("Error", models.Text(collectionErrorMessage))
	b.Set("Error Message", models.Text(message))
	b.Set(models.LastUpdatedKey, models.Text(now.Format(models.TimestampLayout)))
	return b.Build(now)
}
