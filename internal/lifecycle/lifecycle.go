// Package lifecycle tracks whether the application is in the foreground.
// Foreground loss stops the sampler; the caller restarts it on resume.
package lifecycle

import (
	"sync"
	"sync/atomic"
)

// State is the application's foreground state.
type State int32

const (
	Active State = iota
	Inactive
	Background
)

var stateNames = [...]string{
	Active:     "Active",
	Inactive:   "Inactive",
	Background: "Background",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Tracker holds the current state and notifies listeners on transitions.
// The zero value is Active with no listeners.
type Tracker struct {
	state     atomic.Int32
	mu        sync.Mutex
	listeners []func(State)
}

// Current returns the current state.
func (t *Tracker) Current() State { return State(t.state.Load()) }

// OnChange registers fn to be called after every state transition.
func (t *Tracker) OnChange(fn func(State)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Set records s and notifies listeners if it differs from the current state.
// It reports whether a transition happened.
func (t *Tracker) Set(s State) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if State(t.state.Swap(int32(s))) == s {
		return false
	}
	for _, fn := range t.listeners {
		fn(s)
	}
	return true
}
