//go:build unix

package lifecycle

import (
	"os"
	"os/signal"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Watcher maps job-control signals onto a Tracker: SIGTSTP moves the
// application to Background before suspending it, SIGCONT makes it Active.
type Watcher struct {
	tracker *Tracker
	logger  *zap.Logger
	sigs    chan os.Signal
	done    chan struct{}
}

// Watch starts translating signals into state changes on t.
func Watch(t *Tracker, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{
		tracker: t,
		logger:  logger,
		sigs:    make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
	signal.Notify(w.sigs, unix.SIGTSTP, unix.SIGCONT)
	go w.loop()
	return w
}

func (w *Watcher) loop() {
	defer close(w.done)
	for sig := range w.sigs {
		switch sig {
		case unix.SIGTSTP:
			w.logger.Info("Moving to background")
			w.tracker.Set(Background)
			// Handling SIGTSTP cancels the default stop; suspend explicitly.
			if err := unix.Kill(os.Getpid(), unix.SIGSTOP); err != nil {
				w.logger.Warn("Failed to suspend process", zap.Error(err))
			}
		case unix.SIGCONT:
			w.logger.Info("Resumed to foreground")
			w.tracker.Set(Active)
		}
	}
}

// Stop stops signal delivery and waits for the watcher goroutine to exit.
func (w *Watcher) Stop() {
	signal.Stop(w.sigs)
	close(w.sigs)
	<-w.done
}
