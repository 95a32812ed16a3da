package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotBuilder_LastSetWinsInPlace(t *testing.T) {
	b := NewSnapshotBuilder()
	b.Set("A", Text("1"))
	b.Set("B", Text("2"))
	replaced := b.Merge(ProviderResult{{Key: "A", Value: Text("3")}, {Key: "C", Value: Text("4")}})

	snap := b.Build(time.Unix(0, 0))
	assert.Equal(t, []string{"A"}, replaced)
	assert.Equal(t, []string{"A", "B", "C"}, snap.Keys())
	v, ok := snap.Get("A")
	require.True(t, ok)
	assert.Equal(t, "3", v.String())
}

func TestSnapshot_BuildIsIsolatedFromBuilder(t *testing.T) {
	b := NewSnapshotBuilder()
	b.Set("A", Text("1"))
	snap := b.Build(time.Now())

	b.Set("A", Text("changed"))
	b.Set("B", Text("new"))

	v, _ := snap.Get("A")
	assert.Equal(t, "1", v.String())
	assert.Equal(t, 1, snap.Len())
}

func TestSnapshot_FingerprintIgnoresLastUpdated(t *testing.T) {
	build := func(stamp string) *Snapshot {
		b := NewSnapshotBuilder()
		b.Set("Brand", Text("Acme"))
		b.Set(LastUpdatedKey, Text(stamp))
		return b.Build(time.Now())
	}
	assert.Equal(t, build("t1").Fingerprint(), build("t2").Fingerprint())

	b := NewSnapshotBuilder()
	b.Set("Brand", Text("Other"))
	assert.NotEqual(t, build("t1").Fingerprint(), b.Build(time.Now()).Fingerprint())
}

func TestSnapshot_JSONRoundTripKeepsOrderAndRecords(t *testing.T) {
	b := NewSnapshotBuilder()
	b.Set("Z", Text("last"))
	b.Set("Coords", Record(map[string]any{"lat": "1.0"}))
	b.Set("A", Text("first"))
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	data, err := json.Marshal(b.Build(at))
	require.NoError(t, err)

	var got Snapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []string{"Z", "Coords", "A"}, got.Keys())
	assert.True(t, got.CollectedAt().Equal(at))
	v, _ := got.Get("Coords")
	assert.True(t, v.IsRecord())
	assert.Equal(t, `{"lat":"1.0"}`, v.String())
}

func TestValue_IsEmpty(t *testing.T) {
	assert.True(t, Text("").IsEmpty())
	assert.True(t, Record(map[string]any{}).IsEmpty())
	assert.True(t, Record(nil).IsEmpty())
	assert.False(t, Text("x").IsEmpty())
	assert.False(t, Record(map[string]any{"k": 1}).IsEmpty())
}

func TestNilSnapshotAccessors(t *testing.T) {
	var s *Snapshot
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Keys())
	assert.False(t, s.Has("x"))
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{DeviceTablet.String(), "Tablet"},
		{DeviceType(42).String(), "Unknown"},
		{BatteryCharging.String(), "Charging"},
		{BatteryState(-1).String(), "Unknown"},
		{PowerLow.String(), "Low Power Mode"},
		{OrientationLandscapeRight.String(), "Landscape Right"},
		{ParseOrientation("portrait").String(), "Portrait Up"},
		{ParseOrientation("sideways").String(), "Unknown"},
		{ParseDeviceType("tv").String(), "TV"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
