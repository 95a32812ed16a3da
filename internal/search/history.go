package search

import (
	"strings"
	"sync"
)

// DefaultHistoryLimit is the number of recent search terms kept.
const DefaultHistoryLimit = 5

// History keeps the most recent distinct search terms, newest first.
type History struct {
	mu    sync.Mutex
	limit int
	terms []string
}

// NewHistory creates a history holding up to limit terms, seeded with terms
// (newest first), for example from persisted state.
func NewHistory(limit int, terms ...string) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	h := &History{limit: limit}
	for i := len(terms) - 1; i >= 0; i-- {
		h.Add(terms[i])
	}
	return h
}

// Add moves term to the front. Blank terms are ignored.
func (h *History) Add(term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	next := make([]string, 0, h.limit)
	next = append(next, term)
	for _, t := range h.terms {
		if t != term && len(next) < h.limit {
			next = append(next, t)
		}
	}
	h.terms = next
}

// Terms returns the terms newest first.
func (h *History) Terms() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.terms...)
}

// Clear forgets every term.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.terms = nil
}
