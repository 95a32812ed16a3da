// Package history persists snapshots, performance windows, preferences,
// queued offline records and recent searches in a store.KV. Read failures
// degrade to empty results with a logged warning; only writes report errors.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/Guliveer/devicescope/internal/models"
	"github.com/Guliveer/devicescope/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Storage keys.
const (
	KeyDeviceInfoHistory = "device_info_history"
	KeyPerformanceData   = "performance_data"
	KeyUserPreferences   = "user_preferences"
	KeyOfflineData       = "offline_data"
	KeySearchHistory     = "search_history"
)

// ManagedKeys lists every key owned by the manager.
var ManagedKeys = []string{
	KeyDeviceInfoHistory, KeyPerformanceData, KeyUserPreferences, KeyOfflineData, KeySearchHistory,
}

const (
	// DefaultHistoryLimit caps the snapshot history.
	DefaultHistoryLimit = 50
	// OfflineLimit caps the offline queue.
	OfflineLimit = 10
)

// Entry is one stored snapshot.
type Entry struct {
	Timestamp   int64            `json:"timestamp"` // Unix milliseconds
	Fingerprint uint64           `json:"fingerprint"`
	Data        *models.Snapshot `json:"data"`
}

// OfflineRecord is a snapshot captured while the device had no connection.
type OfflineRecord struct {
	Timestamp int64            `json:"timestamp"`
	Data      *models.Snapshot `json:"data"`
}

// PerformanceData is the persisted sample window.
type PerformanceData struct {
	SavedAt int64           `json:"saved_at"`
	Samples []models.Sample `json:"samples"`
	Metrics models.Metrics  `json:"metrics"`
}

// Info describes what the manager currently stores.
type Info struct {
	TotalKeys     int      `json:"totalKeys"`
	Keys          []string `json:"keys"`
	EstimatedSize int64    `json:"estimatedSize"`
}

// HumanSize returns EstimatedSize formatted for display, e.g. "1.2 kB".
func (i Info) HumanSize() string { return humanize.Bytes(uint64(i.EstimatedSize)) }

// Export is the full dump produced by ExportAll.
type Export struct {
	ExportTimestamp   int64            `json:"exportTimestamp"`
	DeviceInfoHistory []Entry          `json:"deviceInfoHistory"`
	PerformanceData   *PerformanceData `json:"performanceData"`
	UserPreferences   map[string]any   `json:"userPreferences"`
	OfflineData       []OfflineRecord  `json:"offlineData"`
	SearchHistory     []string         `json:"searchHistory"`
	StorageInfo       Info             `json:"storageInfo"`
}

// Manager reads and writes the managed keys.
type Manager struct {
	kv     store.KV
	limit  int
	now    func() time.Time
	logger *zap.Logger
}

// NewManager creates a manager over kv keeping at most limit snapshots.
func NewManager(kv store.KV, limit int, logger *zap.Logger) *Manager {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{kv: kv, limit: limit, now: time.Now, logger: logger}
}

// SaveSnapshot prepends snap to the history. A snapshot whose content equals
// the newest entry is skipped; the return value reports whether it was added.
func (m *Manager) SaveSnapshot(ctx context.Context, snap *models.Snapshot) (bool, error) {
	if snap == nil {
		return false, nil
	}
	history := m.History(ctx)
	fp := snap.Fingerprint()
	if len(history) > 0 && history[0].Fingerprint == fp {
		m.logger.Debug("Snapshot unchanged, not saved")
		return false, nil
	}
	entry := Entry{Timestamp: m.now().UnixMilli(), Fingerprint: fp, Data: snap}
	history = append([]Entry{entry}, history[:min(len(history), m.limit-1)]...)
	if err := m.put(ctx, KeyDeviceInfoHistory, history); err != nil {
		return false, err
	}
	return true, nil
}

// History returns stored snapshots, newest first.
func (m *Manager) History(ctx context.Context) []Entry {
	return get[[]Entry](ctx, m, KeyDeviceInfoHistory)
}

// SavePerformance stores the sample window and its averages.
func (m *Manager) SavePerformance(ctx context.Context, samples []models.Sample, metrics models.Metrics) error {
	return m.put(ctx, KeyPerformanceData, PerformanceData{
		SavedAt: m.now().UnixMilli(),
		Samples: samples,
		Metrics: metrics,
	})
}

// Performance returns the stored window, or nil when none is stored.
func (m *Manager) Performance(ctx context.Context) *PerformanceData {
	return get[*PerformanceData](ctx, m, KeyPerformanceData)
}

// SavePreferences replaces the stored preferences.
func (m *Manager) SavePreferences(ctx context.Context, prefs map[string]any) error {
	return m.put(ctx, KeyUserPreferences, prefs)
}

// Preferences returns the stored preferences, never nil.
func (m *Manager) Preferences(ctx context.Context) map[string]any {
	prefs := get[map[string]any](ctx, m, KeyUserPreferences)
	if prefs == nil {
		prefs = map[string]any{}
	}
	return prefs
}

// SaveOffline prepends snap to the offline queue, keeping OfflineLimit records.
func (m *Manager) SaveOffline(ctx context.Context, snap *models.Snapshot) error {
	queue := m.Offline(ctx)
	rec := OfflineRecord{Timestamp: m.now().UnixMilli(), Data: snap}
	queue = append([]OfflineRecord{rec}, queue[:min(len(queue), OfflineLimit-1)]...)
	return m.put(ctx, KeyOfflineData, queue)
}

// Offline returns the offline queue, newest first.
func (m *Manager) Offline(ctx context.Context) []OfflineRecord {
	return get[[]OfflineRecord](ctx, m, KeyOfflineData)
}

// SaveSearchHistory stores recent search terms, newest first.
func (m *Manager) SaveSearchHistory(ctx context.Context, terms []string) error {
	return m.put(ctx, KeySearchHistory, terms)
}

// SearchHistory returns the stored search terms.
func (m *Manager) SearchHistory(ctx context.Context) []string {
	return get[[]string](ctx, m, KeySearchHistory)
}

// ClearAll removes every managed key.
func (m *Manager) ClearAll(ctx context.Context) error {
	if err := m.kv.RemoveAll(ctx, ManagedKeys...); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Info counts the managed keys present and their total encoded size.
func (m *Manager) Info(ctx context.Context) Info {
	info := Info{Keys: []string{}}
	keys, err := m.kv.Keys(ctx)
	if err != nil {
		m.logger.Warn("Failed to list stored keys", zap.Error(err))
		return info
	}
	managed := make(map[string]bool, len(ManagedKeys))
	for _, k := range ManagedKeys {
		managed[k] = true
	}
	for _, k := range keys {
		if !managed[k] {
			continue
		}
		info.Keys = append(info.Keys, k)
		value, ok, err := m.kv.Load(ctx, k)
		if err != nil {
			m.logger.Warn("Failed to size stored key", zap.String("key", k), zap.Error(err))
			continue
		}
		if ok {
			info.EstimatedSize += int64(len(value))
		}
	}
	info.TotalKeys = len(info.Keys)
	return info
}

// ExportAll gathers everything the manager stores.
func (m *Manager) ExportAll(ctx context.Context) Export {
	return Export{
		ExportTimestamp:   m.now().UnixMilli(),
		DeviceInfoHistory: m.History(ctx),
		PerformanceData:   m.Performance(ctx),
		UserPreferences:   m.Preferences(ctx),
		OfflineData:       m.Offline(ctx),
		SearchHistory:     m.SearchHistory(ctx),
		StorageInfo:       m.Info(ctx),
	}
}

func (m *Manager) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := m.kv.Save(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// get decodes key into a fresh T. An absent or unreadable key yields the
// zero T; a partial decode is never returned.
func get[T any](ctx context.Context, m *Manager, key string) T {
	var zero T
	data, found, err := m.kv.Load(ctx, key)
	if err != nil {
		m.logger.Warn("Failed to load stored value", zap.String("key", key), zap.Error(err))
		return zero
	}
	if !found || len(data) == 0 {
		return zero
	}
	var decoded T
	if err := json.Unmarshal(data, &decoded); err != nil {
		m.logger.Warn("Failed to parse stored value, ignoring", zap.String("key", key), zap.Error(err))
		return zero
	}
	return decoded
}
