// Package events delivers change notifications from the collector and the
// sampler to presentation layers. Delivery is best effort: a subscriber whose
// buffer is full misses the event and picks up state on its next read.
package events

import (
	"sync"

	"github.com/Guliveer/devicescope/internal/models"
)

// Kind identifies what changed.
type Kind int

const (
	SnapshotUpdated Kind = iota + 1
	LiveModeChanged
	SampleAdded
	SamplerStateChanged
)

func (k Kind) String() string {
	switch k {
	case SnapshotUpdated:
		return "snapshot"
	case LiveModeChanged:
		return "live-mode"
	case SampleAdded:
		return "sample"
	case SamplerStateChanged:
		return "sampler-state"
	default:
		return "unknown"
	}
}

// Event is a single notification. Only the field matching Kind is set.
type Event struct {
	Kind     Kind
	Snapshot *models.Snapshot
	Sample   models.Sample
	Enabled  bool // LiveModeChanged, SamplerStateChanged
}

const subscriberBuffer = 64

// Bus fans events out to subscribers. The zero value is not usable; call New.
type Bus struct {
	mu          sync.Mutex
	subscribers map[int]chan Event
	next        int
	closed      bool
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subscribers: make(map[int]chan Event)}
}

// Subscribe returns a channel of future events and a function that
// unsubscribes and closes the channel. On a closed bus the channel is
// returned already closed.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subscribers[id]; ok {
				delete(b.subscribers, id)
				close(c)
			}
		})
	}
}

// Publish delivers e to every subscriber without blocking. A nil bus
// discards the event.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
		}
	}
}

// Close closes every subscriber channel. Later Publish calls are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}
