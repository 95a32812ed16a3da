// Package search filters a snapshot by free text and category bucket and
// offers search suggestions. Matching is case-insensitive using Unicode case
// folding. Filtering is a pure function of its inputs.
package search

import (
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/Guliveer/devicescope/internal/category"
	"github.com/Guliveer/devicescope/internal/models"
)

// MaxSuggestions is the number of suggestions returned by Suggest.
const MaxSuggestions = 6

// maxEditDistance bounds fuzzy suggestions.
const maxEditDistance = 2

// PopularTerms are offered when the query is empty or matches nothing.
var PopularTerms = []string{
	"battery", "memory", "screen", "cpu", "network", "storage",
	"device", "platform", "browser", "location", "performance",
}

// Query is a filter request. An empty Bucket selects every category.
type Query struct {
	Text   string
	Bucket category.Bucket
}

// Engine evaluates queries against a category index.
type Engine struct {
	index *category.Index
}

// New creates an engine over index.
func New(index *category.Index) *Engine {
	return &Engine{index: index}
}

// Index returns the category index the engine filters with.
func (e *Engine) Index() *category.Index { return e.index }

// Filter returns the eligible categories with their matching keys. A key
// matches when its value is non-empty and, for non-empty text, the key or
// the stringified value contains the text ignoring case. Categories and keys
// keep their declared order; categories with no match are dropped.
func (e *Engine) Filter(snap *models.Snapshot, q Query) []category.Match {
	bucket := q.Bucket
	if bucket == "" {
		bucket = category.All
	}
	if q.Text == "" {
		return e.index.Select(snap, bucket, func(string, models.Value) bool { return true })
	}

	// A Caser is stateful; each call gets its own.
	fold := cases.Fold()
	needle := fold.String(q.Text)
	return e.index.Select(snap, bucket, func(key string, v models.Value) bool {
		return strings.Contains(fold.String(key), needle) ||
			strings.Contains(fold.String(v.String()), needle)
	})
}

// Count returns the total number of matched attributes.
func Count(results []category.Match) int {
	n := 0
	for _, m := range results {
		n += len(m.Keys)
	}
	return n
}

// Suggest returns up to MaxSuggestions snapshot keys containing text, in
// snapshot order. For empty text, or when no key contains it, the popular
// terms are returned.
func (e *Engine) Suggest(snap *models.Snapshot, text string) []string {
	if text == "" {
		return popular()
	}
	fold := cases.Fold()
	needle := fold.String(text)

	var out []string
	for _, k := range snap.Keys() {
		if strings.Contains(fold.String(k), needle) {
			out = append(out, k)
			if len(out) == MaxSuggestions {
				break
			}
		}
	}
	if len(out) == 0 {
		return popular()
	}
	return out
}

// Corrections returns up to MaxSuggestions snapshot keys within a small edit
// distance of text (or whose words are), closest first. Text shorter than
// three runes has no corrections.
func (e *Engine) Corrections(snap *models.Snapshot, text string) []string {
	fold := cases.Fold()
	return fuzzyMatches(fold, snap.Keys(), fold.String(text))
}

type scored struct {
	key  string
	dist int
}

func fuzzyMatches(fold cases.Caser, keys []string, needle string) []string {
	limit := editBudget(needle)
	if limit == 0 {
		return nil
	}
	var hits []scored
	for _, k := range keys {
		folded := fold.String(k)
		best := levenshtein.ComputeDistance(needle, folded)
		for _, word := range strings.Fields(folded) {
			best = min(best, levenshtein.ComputeDistance(needle, word))
		}
		if best <= limit {
			hits = append(hits, scored{key: k, dist: best})
		}
	}
	slices.SortStableFunc(hits, func(a, b scored) int { return a.dist - b.dist })

	out := make([]string, 0, min(len(hits), MaxSuggestions))
	for _, h := range hits[:min(len(hits), MaxSuggestions)] {
		out = append(out, h.key)
	}
	return out
}

// editBudget scales the allowed distance with the text length so short
// inputs do not match everything.
func editBudget(needle string) int {
	switch n := len([]rune(needle)); {
	case n < 3:
		return 0
	case n < 5:
		return 1
	default:
		return maxEditDistance
	}
}

func popular() []string {
	return slices.Clone(PopularTerms[:MaxSuggestions])
}
