// Package theme holds the light and dark palettes and the persisted theme
// mode. In system mode the palette follows the terminal background.
package theme

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/lipgloss"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/Guliveer/devicescope/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StorageKey is the key the selected mode is saved under.
const StorageKey = "theme"

// Mode selects the palette.
type Mode string

const (
	Light  Mode = "light"
	Dark   Mode = "dark"
	System Mode = "system"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Light, Dark, System:
		return m, nil
	}
	return "", fmt.Errorf("unknown theme %q (want light, dark or system)", s)
}

// Next returns the mode that follows m in the toggle cycle
// light, dark, system.
func (m Mode) Next() Mode {
	switch m {
	case Light:
		return Dark
	case Dark:
		return System
	default:
		return Light
	}
}

// Palette is a set of semantic colors.
type Palette struct {
	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Background    lipgloss.Color
	Surface       lipgloss.Color
	Text          lipgloss.Color
	TextSecondary lipgloss.Color
	Border        lipgloss.Color
	Success       lipgloss.Color
	Warning       lipgloss.Color
	Error         lipgloss.Color
	Info          lipgloss.Color
}

// LightPalette is used on light backgrounds.
var LightPalette = Palette{
	Primary:       "#3B82F6",
	Secondary:     "#6B7280",
	Background:    "#F9FAFB",
	Surface:       "#FFFFFF",
	Text:          "#111827",
	TextSecondary: "#6B7280",
	Border:        "#E5E7EB",
	Success:       "#10B981",
	Warning:       "#F59E0B",
	Error:         "#EF4444",
	Info:          "#3B82F6",
}

// DarkPalette is used on dark backgrounds.
var DarkPalette = Palette{
	Primary:       "#60A5FA",
	Secondary:     "#9CA3AF",
	Background:    "#111827",
	Surface:       "#1F2937",
	Text:          "#F9FAFB",
	TextSecondary: "#9CA3AF",
	Border:        "#374151",
	Success:       "#34D399",
	Warning:       "#FBBF24",
	Error:         "#F87171",
	Info:          "#60A5FA",
}

// Manager tracks the selected mode and persists changes.
type Manager struct {
	kv         store.KV
	systemDark func() bool
	logger     *zap.Logger

	mu   sync.RWMutex
	mode Mode
}

// NewManager creates a manager in System mode. systemDark reports the
// terminal's background; nil uses lipgloss detection.
func NewManager(kv store.KV, systemDark func() bool, logger *zap.Logger) *Manager {
	if systemDark == nil {
		systemDark = lipgloss.HasDarkBackground
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{kv: kv, systemDark: systemDark, logger: logger, mode: System}
}

// Load restores the saved mode. Missing or invalid values leave System.
func (m *Manager) Load(ctx context.Context) Mode {
	mode := System
	defer func() {
		m.mu.Lock()
		m.mode = mode
		m.mu.Unlock()
	}()

	data, ok, err := m.kv.Load(ctx, StorageKey)
	if err != nil {
		m.logger.Warn("Failed to load theme", zap.Error(err))
		return mode
	}
	if !ok {
		return mode
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		m.logger.Warn("Ignoring unreadable theme", zap.Error(err))
		return mode
	}
	parsed, err := ParseMode(name)
	if err != nil {
		m.logger.Warn("Ignoring saved theme", zap.Error(err))
		return mode
	}
	mode = parsed
	return mode
}

// Mode returns the selected mode.
func (m *Manager) Mode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// Set selects mode and saves it. The in-memory mode changes even when
// saving fails.
func (m *Manager) Set(ctx context.Context, mode Mode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}
	m.mu.Lock()
	m.mode = mode
	m.mu.Unlock()

	data, err := json.Marshal(string(mode))
	if err != nil {
		return err
	}
	if err := m.kv.Save(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// Toggle advances to the next mode in the cycle and saves it.
func (m *Manager) Toggle(ctx context.Context) (Mode, error) {
	next := m.Mode().Next()
	return next, m.Set(ctx, next)
}

// IsDark reports whether the dark palette is in effect.
func (m *Manager) IsDark() bool {
	switch m.Mode() {
	case Dark:
		return true
	case Light:
		return false
	default:
		return m.systemDark()
	}
}

// Palette returns the palette in effect.
func (m *Manager) Palette() Palette {
	if m.IsDark() {
		return DarkPalette
	}
	return LightPalette
}
