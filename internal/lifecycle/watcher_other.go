//go:build !unix

package lifecycle

import "go.uber.org/zap"

// Watcher is a no-op where the OS has no job-control signals.
type Watcher struct{}

// Watch returns a watcher that never changes the state.
func Watch(*Tracker, *zap.Logger) *Watcher { return &Watcher{} }

// Stop does nothing.
func (w *Watcher) Stop() {}
