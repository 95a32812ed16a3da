package collector

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Guliveer/devicescope/internal/events"
)

// SetLiveMode starts or stops periodic refreshes. Enabling while enabled is a
// no-op. After SetLiveMode(false) returns no new collection starts; one
// already running completes and still replaces the current snapshot.
func (c *Collector) SetLiveMode(enabled bool) {
	c.liveMu.Lock()
	defer c.liveMu.Unlock()
	if c.live == enabled {
		return
	}
	c.live = enabled
	c.generation++

	if enabled {
		ticker := c.clock.NewTicker(c.liveInterval)
		stop := make(chan struct{})
		done := make(chan struct{})
		c.stopLive, c.liveDone = stop, done
		go c.liveLoop(c.generation, ticker.C(), ticker.Stop, stop, done)
		c.logger.Info("Live mode enabled", zap.Duration("interval", c.liveInterval))
	} else {
		close(c.stopLive)
		c.stopLive = nil
		c.logger.Info("Live mode disabled")
	}
	c.bus.Publish(events.Event{Kind: events.LiveModeChanged, Enabled: enabled})
}

// LiveMode reports whether periodic refreshes are enabled.
func (c *Collector) LiveMode() bool {
	c.liveMu.Lock()
	defer c.liveMu.Unlock()
	return c.live
}

// Close disables live mode and waits for the live loop, including any
// collection it is running, to finish.
func (c *Collector) Close() {
	c.SetLiveMode(false)
	c.liveMu.Lock()
	done := c.liveDone
	c.liveMu.Unlock()
	if done != nil {
		<-done
	}
}

// liveLoop refreshes on every tick. Ticks that arrive while a refresh is
// running are dropped by the ticker.
func (c *Collector) liveLoop(gen uint64, ticks <-chan time.Time, stopTicker func(), stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer stopTicker()
	for {
		select {
		case <-stop:
			return
		case <-ticks:
			ch, ok := c.beginTick(gen)
			if !ok {
				return
			}
			c.awaitRefresh(ch)
		}
	}
}

// beginTick starts the tick's refresh if gen is still the active live
// generation. The check and the start both run under liveMu, so a collection
// either starts before SetLiveMode(false) takes the lock or not at all.
func (c *Collector) beginTick(gen uint64) (<-chan singleflight.Result, bool) {
	c.liveMu.Lock()
	defer c.liveMu.Unlock()
	if !c.live || c.generation != gen {
		return nil, false
	}
	return c.startRefresh(context.Background()), true
}
