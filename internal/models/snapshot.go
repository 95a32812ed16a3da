// Package models defines the data structures shared by the collector,
// sampler, search engine and persistence layers.
// Snapshots are serialized to JSON for the history store.
package models

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/zeebo/xxh3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// LastUpdatedKey is the synthetic key stamped on every snapshot.
	LastUpdatedKey = "Last Updated"

	// TimestampLayout formats the Last Updated value.
	TimestampLayout = time.DateTime
)

// Attribute is a single key/value pair of a snapshot or provider result.
type Attribute struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
}

// ProviderResult is the ordered partial mapping returned by one provider call.
type ProviderResult []Attribute

// Add appends a value under key.
func (r *ProviderResult) Add(key string, v Value) {
	*r = append(*r, Attribute{Key: key, Value: v})
}

// AddText appends a string value under key.
func (r *ProviderResult) AddText(key, text string) {
	r.Add(key, Text(text))
}

// ErrorResult builds the single-entry result used as a provider fallback.
func ErrorResult(key, message string) ProviderResult {
	return ProviderResult{{Key: key, Value: Text(message)}}
}

// Snapshot is an immutable, ordered set of device attributes stamped with the
// time it was collected. Build one with SnapshotBuilder.
type Snapshot struct {
	attrs       []Attribute
	index       map[string]int
	collectedAt time.Time
}

// Get returns the value stored under key.
func (s *Snapshot) Get(key string) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	i, ok := s.index[key]
	if !ok {
		return Value{}, false
	}
	return s.attrs[i].Value, true
}

// Has reports whether key is present with a non-empty value.
func (s *Snapshot) Has(key string) bool {
	v, ok := s.Get(key)
	return ok && !v.IsEmpty()
}

// Keys returns the attribute keys in insertion order.
func (s *Snapshot) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, len(s.attrs))
	for i, a := range s.attrs {
		keys[i] = a.Key
	}
	return keys
}

// Attributes returns a copy of the attributes in insertion order.
func (s *Snapshot) Attributes() []Attribute {
	if s == nil {
		return nil
	}
	out := make([]Attribute, len(s.attrs))
	copy(out, s.attrs)
	return out
}

// Len returns the number of attributes.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.attrs)
}

// CollectedAt returns the collection time.
func (s *Snapshot) CollectedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.collectedAt
}

// Fingerprint hashes the snapshot content, ignoring the Last Updated stamp,
// so that two collections of an unchanged device hash equally.
func (s *Snapshot) Fingerprint() uint64 {
	if s == nil {
		return 0
	}
	var buf []byte
	for _, a := range s.attrs {
		if a.Key == LastUpdatedKey {
			continue
		}
		buf = append(buf, a.Key...)
		buf = append(buf, 0)
		buf = append(buf, a.Value.String()...)
		buf = append(buf, 0)
	}
	return xxh3.Hash(buf)
}

type snapshotJSON struct {
	CollectedAt time.Time   `json:"collected_at"`
	Attributes  []Attribute `json:"attributes"`
}

// MarshalJSON implements json.Marshaler.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{CollectedAt: s.collectedAt, Attributes: s.attrs})
}

// UnmarshalJSON implements json.Unmarshaler. Duplicate keys keep the last value.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw snapshotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}
	b := NewSnapshotBuilder()
	for _, a := range raw.Attributes {
		b.Set(a.Key, a.Value)
	}
	*s = *b.Build(raw.CollectedAt)
	return nil
}

// SnapshotBuilder accumulates attributes for a new Snapshot.
// It is not safe for concurrent use.
type SnapshotBuilder struct {
	attrs []Attribute
	index map[string]int
}

// NewSnapshotBuilder creates an empty builder.
func NewSnapshotBuilder() *SnapshotBuilder {
	return &SnapshotBuilder{index: make(map[string]int)}
}

// Set stores v under key. An existing key keeps its position and takes the
// new value; the return value reports whether that happened.
func (b *SnapshotBuilder) Set(key string, v Value) bool {
	if i, ok := b.index[key]; ok {
		b.attrs[i].Value = v
		return true
	}
	b.index[key] = len(b.attrs)
	b.attrs = append(b.attrs, Attribute{Key: key, Value: v})
	return false
}

// Merge adds every attribute of r and returns the keys that replaced an
// earlier value.
func (b *SnapshotBuilder) Merge(r ProviderResult) []string {
	var replaced []string
	for _, a := range r {
		if b.Set(a.Key, a.Value) {
			replaced = append(replaced, a.Key)
		}
	}
	return replaced
}

// Len returns the number of attributes added so far.
func (b *SnapshotBuilder) Len() int { return len(b.attrs) }

// Build produces the Snapshot. The builder may be reused afterwards without
// affecting the returned value.
func (b *SnapshotBuilder) Build(collectedAt time.Time) *Snapshot {
	attrs := make([]Attribute, len(b.attrs))
	copy(attrs, b.attrs)
	index := make(map[string]int, len(attrs))
	for i, a := range attrs {
		index[a.Key] = i
	}
	return &Snapshot{attrs: attrs, index: index, collectedAt: collectedAt}
}
