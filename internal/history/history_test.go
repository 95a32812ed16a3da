package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guliveer/devicescope/internal/models"
	"github.com/Guliveer/devicescope/internal/store"
)

func snapshot(level string, at time.Time) *models.Snapshot {
	b := models.NewSnapshotBuilder()
	b.Set("Battery Level", models.Text(level))
	b.Set(models.LastUpdatedKey, models.Text(at.Format(models.TimestampLayout)))
	return b.Build(at)
}

func newManager(t *testing.T, limit int) (*Manager, store.KV) {
	t.Helper()
	kv := store.NewMemory()
	t.Cleanup(func() { kv.Close() })
	m := NewManager(kv, limit, nil)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return m, kv
}

func TestSaveSnapshot_NewestFirstAndCapped(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, 3)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, level := range []string{"10%", "20%", "30%", "40%"} {
		added, err := m.SaveSnapshot(ctx, snapshot(level, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
		assert.True(t, added)
	}

	history := m.History(ctx)
	require.Len(t, history, 3)
	var levels []string
	for _, e := range history {
		v, _ := e.Data.Get("Battery Level")
		levels = append(levels, v.String())
	}
	assert.Equal(t, []string{"40%", "30%", "20%"}, levels)
	assert.Greater(t, history[0].Timestamp, history[1].Timestamp)
}

func TestSaveSnapshot_SkipsUnchangedContent(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, 0)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	added, err := m.SaveSnapshot(ctx, snapshot("50%", base))
	require.NoError(t, err)
	require.True(t, added)

	// Only the Last Updated stamp differs.
	added, err = m.SaveSnapshot(ctx, snapshot("50%", base.Add(5*time.Second)))
	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, m.History(ctx), 1)

	added, err = m.SaveSnapshot(ctx, nil)
	require.NoError(t, err)
	assert.False(t, added)
}

func TestCorruptValuesDegradeToEmpty(t *testing.T) {
	ctx := context.Background()
	m, kv := newManager(t, 0)
	for _, k := range ManagedKeys {
		require.NoError(t, kv.Save(ctx, k, []byte("{not json")))
	}

	assert.Empty(t, m.History(ctx))
	assert.Nil(t, m.Performance(ctx))
	assert.Equal(t, map[string]any{}, m.Preferences(ctx))
	assert.Empty(t, m.Offline(ctx))
	assert.Empty(t, m.SearchHistory(ctx))

	// A corrupt history is replaced by the next save.
	added, err := m.SaveSnapshot(ctx, snapshot("1%", time.Now()))
	require.NoError(t, err)
	assert.True(t, added)
	assert.Len(t, m.History(ctx), 1)
}

func TestPartiallyDecodableValuesDegradeToEmpty(t *testing.T) {
	ctx := context.Background()
	m, kv := newManager(t, 0)
	// Valid leading fields followed by a type mismatch.
	require.NoError(t, kv.Save(ctx, KeyPerformanceData, []byte(`{"saved_at":5,"samples":"oops"}`)))
	require.NoError(t, kv.Save(ctx, KeyUserPreferences, []byte(`{"theme":"dark","font":`)))
	require.NoError(t, kv.Save(ctx, KeySearchHistory, []byte(`["cpu",7]`)))

	assert.Nil(t, m.Performance(ctx))
	assert.Equal(t, map[string]any{}, m.Preferences(ctx))
	assert.Nil(t, m.SearchHistory(ctx))
}

func TestOfflineQueueCapped(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, 0)
	for i := 0; i < OfflineLimit+3; i++ {
		require.NoError(t, m.SaveOffline(ctx, snapshot("5%", time.Now())))
	}
	queue := m.Offline(ctx)
	assert.Len(t, queue, OfflineLimit)
	assert.Greater(t, queue[0].Timestamp, queue[len(queue)-1].Timestamp)
}

func TestPerformanceAndPreferences(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, 0)

	samples := []models.Sample{
		{Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), FPS: 60, MemoryMB: 250},
		{Timestamp: time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC), FPS: 58, MemoryMB: 260},
	}
	metrics := models.Metrics{AvgMemory: 255, AvgFPS: 59, CurrentMemory: 260, CurrentFPS: 58}
	require.NoError(t, m.SavePerformance(ctx, samples, metrics))

	perf := m.Performance(ctx)
	require.NotNil(t, perf)
	assert.Equal(t, metrics, perf.Metrics)
	require.Len(t, perf.Samples, 2)
	assert.True(t, samples[1].Timestamp.Equal(perf.Samples[1].Timestamp))

	require.NoError(t, m.SavePreferences(ctx, map[string]any{"live_mode": true}))
	assert.Equal(t, map[string]any{"live_mode": true}, m.Preferences(ctx))

	require.NoError(t, m.SaveSearchHistory(ctx, []string{"battery", "wifi"}))
	assert.Equal(t, []string{"battery", "wifi"}, m.SearchHistory(ctx))
}

func TestInfoCountsManagedKeysOnly(t *testing.T) {
	ctx := context.Background()
	m, kv := newManager(t, 0)

	info := m.Info(ctx)
	assert.Zero(t, info.TotalKeys)
	assert.Equal(t, []string{}, info.Keys)

	require.NoError(t, kv.Save(ctx, "theme", []byte(`"dark"`)))
	require.NoError(t, m.SavePreferences(ctx, map[string]any{"a": 1}))
	require.NoError(t, m.SaveSearchHistory(ctx, []string{"cpu"}))

	info = m.Info(ctx)
	assert.Equal(t, 2, info.TotalKeys)
	assert.Equal(t, []string{KeySearchHistory, KeyUserPreferences}, info.Keys)
	assert.Equal(t, int64(len(`{"a":1}`)+len(`["cpu"]`)), info.EstimatedSize)
	assert.Equal(t, "14 B", info.HumanSize())
}

func TestClearAllKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	m, kv := newManager(t, 0)
	require.NoError(t, kv.Save(ctx, "theme", []byte(`"dark"`)))
	_, err := m.SaveSnapshot(ctx, snapshot("1%", time.Now()))
	require.NoError(t, err)
	require.NoError(t, m.SaveOffline(ctx, snapshot("1%", time.Now())))

	require.NoError(t, m.ClearAll(ctx))

	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"theme"}, keys)
	assert.Empty(t, m.History(ctx))
}

func TestExportAll(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, 0)
	_, err := m.SaveSnapshot(ctx, snapshot("77%", time.Now()))
	require.NoError(t, err)

	export := m.ExportAll(ctx)
	assert.NotZero(t, export.ExportTimestamp)
	require.Len(t, export.DeviceInfoHistory, 1)
	assert.Nil(t, export.PerformanceData)
	assert.Equal(t, 1, export.StorageInfo.TotalKeys)

	data, err := json.Marshal(export)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"deviceInfoHistory"`)
	assert.Contains(t, string(data), `77%`)
}

type failingKV struct{ store.KV }

func (failingKV) Save(context.Context, string, []byte) error { return errors.New("disk full") }
func (failingKV) Load(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("io error")
}
func (failingKV) Keys(context.Context) ([]string, error) { return nil, errors.New("io error") }

func TestBackendFailures(t *testing.T) {
	ctx := context.Background()
	m := NewManager(failingKV{store.NewMemory()}, 0, nil)

	_, err := m.SaveSnapshot(ctx, snapshot("1%", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.Empty(t, m.History(ctx))
	assert.Zero(t, m.Info(ctx).TotalKeys)
}
