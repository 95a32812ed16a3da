// Package scheduler batches snapshot and sample notifications from the event
// bus and hands them to a persistence callback on a fixed interval. The
// scheduler does NOT write anything itself; it invokes a callback when a
// batch is ready.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/Guliveer/devicescope/internal/events"
	"github.com/Guliveer/devicescope/internal/models"
)

// Batch holds the notifications received since the last flush.
type Batch struct {
	Snapshots []*models.Snapshot
	Samples   []models.Sample
}

// Empty reports whether the batch carries nothing.
func (b Batch) Empty() bool { return len(b.Snapshots) == 0 && len(b.Samples) == 0 }

// Scheduler accumulates events and flushes them periodically.
type Scheduler struct {
	interval time.Duration
	clock    clock.WithTicker
	logger   *zap.Logger

	batch   Batch
	batchMu sync.Mutex

	onBatchReady func(Batch)
}

// New creates a scheduler flushing every interval. A nil clock uses the
// real clock.
func New(interval time.Duration, clk clock.WithTicker, logger *zap.Logger) *Scheduler {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{interval: interval, clock: clk, logger: logger}
}

// OnBatchReady sets the callback invoked with each non-empty batch.
func (s *Scheduler) OnBatchReady(fn func(Batch)) {
	s.onBatchReady = fn
}

// Start consumes events until ctx is cancelled or the channel closes,
// flushing on every tick. On shutdown it flushes any remaining batch.
func (s *Scheduler) Start(ctx context.Context, ch <-chan events.Event) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Flush()
			return
		case ev, ok := <-ch:
			if !ok {
				s.Flush()
				return
			}
			s.add(ev)
		case <-ticker.C():
			s.Flush()
		}
	}
}

func (s *Scheduler) add(ev events.Event) {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	switch ev.Kind {
	case events.SnapshotUpdated:
		if ev.Snapshot != nil {
			s.batch.Snapshots = append(s.batch.Snapshots, ev.Snapshot)
		}
	case events.SampleAdded:
		s.batch.Samples = append(s.batch.Samples, ev.Sample)
	}
}

// Flush sends the current batch via the callback and resets it.
func (s *Scheduler) Flush() {
	s.batchMu.Lock()
	if s.batch.Empty() {
		s.batchMu.Unlock()
		return
	}
	batch := s.batch
	s.batch = Batch{}
	s.batchMu.Unlock()

	s.logger.Debug("Flushing batch",
		zap.Int("snapshots", len(batch.Snapshots)),
		zap.Int("samples", len(batch.Samples)))

	if s.onBatchReady != nil {
		s.onBatchReady(batch)
	}
}
