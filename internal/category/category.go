// Package category groups snapshot attributes into named, ordered categories
// and maps the coarse filter buckets of the search UI onto them. An Index is
// immutable after construction and safe for concurrent use.
package category

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Guliveer/devicescope/internal/models"
)

// Bucket is a coarse filter over categories.
type Bucket string

const (
	All      Bucket = "all"
	Hardware Bucket = "hardware"
	Software Bucket = "software"
	Network  Bucket = "network"
	Battery  Bucket = "battery"
	Display  Bucket = "display"
)

// Category is a named group of attribute keys with display metadata.
type Category struct {
	ID    string
	Name  string
	Icon  string
	Color string // hex, e.g. "#3B82F6"
	Keys  []string
}

// Match is a category together with the keys that survived a filter, in the
// category's declared order.
type Match struct {
	Category *Category
	Keys     []string
}

// ErrDuplicateID is returned by New when two categories share an ID.
var ErrDuplicateID = errors.New("category: duplicate category id")

// ErrUnknownCategory is returned by New when a bucket names a missing category.
var ErrUnknownCategory = errors.New("category: bucket references unknown category")

// Index is the read-only category catalog.
type Index struct {
	categories []*Category
	byID       map[string]*Category
	keyOwner   map[string]*Category
	buckets    map[Bucket][]string
	bucketList []Bucket
}

// New builds an index. A key listed by more than one category stays with the
// first one. buckets maps each bucket (other than All) to category IDs; All
// always selects every category.
func New(categories []Category, buckets map[Bucket][]string) (*Index, error) {
	idx := &Index{
		byID:     make(map[string]*Category, len(categories)),
		keyOwner: make(map[string]*Category),
		buckets:  make(map[Bucket][]string, len(buckets)),
	}
	for i := range categories {
		src := categories[i]
		if _, dup := idx.byID[src.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, src.ID)
		}
		c := &Category{ID: src.ID, Name: src.Name, Icon: src.Icon, Color: src.Color}
		for _, k := range src.Keys {
			if _, owned := idx.keyOwner[k]; owned {
				continue
			}
			idx.keyOwner[k] = c
			c.Keys = append(c.Keys, k)
		}
		idx.categories = append(idx.categories, c)
		idx.byID[c.ID] = c
	}

	idx.bucketList = append(idx.bucketList, All)
	for _, b := range bucketOrder(buckets) {
		for _, id := range buckets[b] {
			if _, ok := idx.byID[id]; !ok {
				return nil, fmt.Errorf("%w: bucket %s names %q", ErrUnknownCategory, b, id)
			}
		}
		idx.buckets[b] = append([]string(nil), buckets[b]...)
		idx.bucketList = append(idx.bucketList, b)
	}
	return idx, nil
}

// bucketOrder lists the well-known buckets first, then any others sorted.
func bucketOrder(buckets map[Bucket][]string) []Bucket {
	known := []Bucket{Hardware, Software, Network, Battery, Display}
	var out []Bucket
	seen := make(map[Bucket]bool)
	for _, b := range known {
		if _, ok := buckets[b]; ok {
			out = append(out, b)
			seen[b] = true
		}
	}
	var extra []Bucket
	for b := range buckets {
		if !seen[b] && b != All {
			extra = append(extra, b)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

// Categories returns the categories in declaration order. Callers must not
// modify them.
func (x *Index) Categories() []*Category {
	return append([]*Category(nil), x.categories...)
}

// Buckets returns the available filter buckets, All first.
func (x *Index) Buckets() []Bucket {
	return append([]Bucket(nil), x.bucketList...)
}

// Eligible returns the set of category IDs selected by bucket. The second
// result is false for an unknown bucket, whose set is empty.
func (x *Index) Eligible(bucket Bucket) (map[string]bool, bool) {
	set := make(map[string]bool)
	if bucket == All {
		for _, c := range x.categories {
			set[c.ID] = true
		}
		return set, true
	}
	ids, ok := x.buckets[bucket]
	for _, id := range ids {
		set[id] = true
	}
	return set, ok
}

// CategoryOf returns the category that owns key.
func (x *Index) CategoryOf(key string) (*Category, bool) {
	c, ok := x.keyOwner[key]
	return c, ok
}

// Lookup returns the category with the given ID.
func (x *Index) Lookup(id string) (*Category, bool) {
	c, ok := x.byID[id]
	return c, ok
}

// CategoriesContaining returns, in declaration order, every category with at
// least one key present in snap with a non-empty value.
func (x *Index) CategoriesContaining(snap *models.Snapshot) []Match {
	return x.Select(snap, All, func(string, models.Value) bool { return true })
}

// Select is the shared filter walk: categories eligible under bucket, keys
// present and non-empty in snap and accepted by keep. Empty categories are
// dropped and declared order is preserved.
func (x *Index) Select(snap *models.Snapshot, bucket Bucket, keep func(key string, v models.Value) bool) []Match {
	eligible, _ := x.Eligible(bucket)
	var out []Match
	for _, c := range x.categories {
		if !eligible[c.ID] {
			continue
		}
		var keys []string
		for _, k := range c.Keys {
			v, ok := snap.Get(k)
			if !ok || v.IsEmpty() || !keep(k, v) {
				continue
			}
			keys = append(keys, k)
		}
		if len(keys) > 0 {
			out = append(out, Match{Category: c, Keys: keys})
		}
	}
	return out
}
