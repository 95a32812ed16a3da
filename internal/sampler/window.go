package sampler

import "github.com/Guliveer/devicescope/internal/models"

// DefaultWindowSize is the number of samples kept for averaging.
const DefaultWindowSize = 20

// Window is a fixed-capacity FIFO of samples. Pushing onto a full window
// evicts the oldest sample. A Window returned by Sampler.CurrentWindow is a
// copy and may be used freely.
type Window struct {
	buf   []models.Sample
	start int
	n     int
}

// NewWindow creates an empty window holding at most capacity samples.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	return &Window{buf: make([]models.Sample, capacity)}
}

// Push appends s, evicting the oldest sample when full.
func (w *Window) Push(s models.Sample) {
	if w.n < len(w.buf) {
		w.buf[(w.start+w.n)%len(w.buf)] = s
		w.n++
		return
	}
	w.buf[w.start] = s
	w.start = (w.start + 1) % len(w.buf)
}

// Samples returns the samples oldest first.
func (w Window) Samples() []models.Sample {
	out := make([]models.Sample, w.n)
	for i := range out {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}

// Latest returns the most recent sample.
func (w Window) Latest() (models.Sample, bool) {
	if w.n == 0 {
		return models.Sample{}, false
	}
	return w.buf[(w.start+w.n-1)%len(w.buf)], true
}

// Len returns the number of samples held.
func (w Window) Len() int { return w.n }

// Cap returns the window capacity.
func (w Window) Cap() int { return len(w.buf) }

// Reset drops every sample.
func (w *Window) Reset() {
	w.start, w.n = 0, 0
}

// Averages returns the mean of each metric and the latest values. An empty
// window yields all zeros.
func (w Window) Averages() models.Metrics {
	latest, ok := w.Latest()
	if !ok {
		return models.Metrics{}
	}
	var fps, mem float64
	for i := 0; i < w.n; i++ {
		s := w.buf[(w.start+i)%len(w.buf)]
		fps += s.FPS
		mem += s.MemoryMB
	}
	return models.Metrics{
		AvgMemory:     mem / float64(w.n),
		AvgFPS:        fps / float64(w.n),
		CurrentMemory: latest.MemoryMB,
		CurrentFPS:    latest.FPS,
	}
}

func (w Window) clone() Window {
	buf := make([]models.Sample, len(w.buf))
	copy(buf, w.Samples())
	return Window{buf: buf, n: w.n}
}
