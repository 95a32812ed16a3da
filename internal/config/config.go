// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: CLI flags > environment variables > config file > embedded > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "1s", "5s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all application configuration.
type Config struct {
	Collection CollectionConfig `yaml:"collection"`
	Sampler    SamplerConfig    `yaml:"sampler"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
	Device     DeviceConfig     `yaml:"device"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// CollectionConfig holds snapshot collection settings.
type CollectionConfig struct {
	LiveInterval    Duration `yaml:"live_interval"`
	ProviderTimeout Duration `yaml:"provider_timeout"`
	RefreshRate     Duration `yaml:"refresh_rate"`
	RefreshBurst    int      `yaml:"refresh_burst"`
}

// SamplerConfig holds performance sampler settings.
type SamplerConfig struct {
	Interval        Duration `yaml:"interval"`
	WindowSize      int      `yaml:"window_size"`
	BaseMemoryMB    float64  `yaml:"base_memory_mb"`
	AmplitudeMB     float64  `yaml:"amplitude_mb"`
	OscillationTime Duration `yaml:"oscillation_period"`
	JitterMB        float64  `yaml:"jitter_mb"`
}

// StorageConfig selects the key-value backend used for history and preferences.
type StorageConfig struct {
	Driver        string   `yaml:"driver"` // memory, file, sqlite, pebble
	Path          string   `yaml:"path"`
	HistoryLimit  int      `yaml:"history_limit"`
	FlushInterval Duration `yaml:"flush_interval"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DeviceConfig describes facts the host cannot discover on its own.
type DeviceConfig struct {
	AppName    string         `yaml:"app_name"`
	DeviceName string         `yaml:"device_name"`
	DeviceType string         `yaml:"device_type"`
	Language   string         `yaml:"language"`
	Display    DisplayConfig  `yaml:"display"`
	Location   LocationConfig `yaml:"location"`
}

// DisplayConfig describes the screen geometry reported by the display provider.
type DisplayConfig struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	Scale       float64 `yaml:"scale"`
	FontScale   float64 `yaml:"font_scale"`
	Orientation string  `yaml:"orientation"`
}

// LocationConfig holds a fixed position fix and the permission flag gating it.
type LocationConfig struct {
	Permitted bool     `yaml:"permitted"`
	Latitude  float64  `yaml:"latitude"`
	Longitude float64  `yaml:"longitude"`
	Accuracy  float64  `yaml:"accuracy"`
	Altitude  *float64 `yaml:"altitude,omitempty"`
	Heading   *float64 `yaml:"heading,omitempty"`
	Speed     *float64 `yaml:"speed,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Collection: CollectionConfig{
			LiveInterval:    Duration{5 * time.Second},
			ProviderTimeout: Duration{10 * time.Second},
			RefreshRate:     Duration{time.Second},
			RefreshBurst:    3,
		},
		Sampler: SamplerConfig{
			Interval:        Duration{time.Second},
			WindowSize:      20,
			BaseMemoryMB:    250,
			AmplitudeMB:     50,
			OscillationTime: Duration{10 * time.Second},
			JitterMB:        10,
		},
		Storage: StorageConfig{
			Driver:        "sqlite",
			Path:          "./devicescope.db",
			HistoryLimit:  50,
			FlushInterval: Duration{30 * time.Second},
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
		Device: DeviceConfig{
			AppName:    "DeviceScope",
			DeviceType: "desktop",
			Display: DisplayConfig{
				Width:       1920,
				Height:      1080,
				Scale:       1,
				FontScale:   1,
				Orientation: "landscape-left",
			},
		},
	}
}

// LoadFromBytes parses YAML configuration from a byte slice and merges with defaults.
// Environment variables take highest precedence and override values from the byte slice.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config data: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// Load reads configuration from a YAML file and merges with defaults.
// If path is empty or the file does not exist, only defaults and environment
// variables are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromBytes(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return LoadFromBytes(nil)
	}

	return LoadFromBytes(data)
}

// CLIOverrides holds values from command-line flags.
// Zero values are treated as "not set" and skipped.
type CLIOverrides struct {
	LogLevel       string
	StorageDriver  string
	StoragePath    string
	LiveInterval   time.Duration
	SampleInterval time.Duration
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > external YAML file > embedded bytes > defaults.
//
// An optional configPath argument controls external-file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value  → use that path ("" means no external file)
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	if len(embedded) > 0 {
		if err := yaml.Unmarshal(embedded, cfg); err != nil {
			return nil, fmt.Errorf("parsing embedded config: %w", err)
		}
	}

	var filePath string
	if len(configPath) > 0 {
		filePath = configPath[0]
	} else {
		filePath = Locate()
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.StorageDriver != "" {
		cfg.Storage.Driver = cli.StorageDriver
	}
	if cli.StoragePath != "" {
		cfg.Storage.Path = cli.StoragePath
	}
	if cli.LiveInterval > 0 {
		cfg.Collection.LiveInterval.Duration = cli.LiveInterval
	}
	if cli.SampleInterval > 0 {
		cfg.Sampler.Interval.Duration = cli.SampleInterval
	}

	return cfg, nil
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if level := os.Getenv("DS_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if driver := os.Getenv("DS_STORAGE_DRIVER"); driver != "" {
		cfg.Storage.Driver = driver
	}
	if path := os.Getenv("DS_STORAGE_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if name := os.Getenv("DS_DEVICE_NAME"); name != "" {
		cfg.Device.DeviceName = name
	}
	if v := os.Getenv("DS_LOCATION_PERMITTED"); v != "" {
		if ok, err := strconv.ParseBool(v); err == nil {
			cfg.Device.Location.Permitted = ok
		}
	}
	if addr := os.Getenv("DS_METRICS_LISTEN"); addr != "" {
		cfg.Metrics.Listen = addr
	}
}

var validDrivers = map[string]bool{
	"memory": true,
	"file":   true,
	"sqlite": true,
	"pebble": true,
}

// Validate checks that intervals, sizes and the storage driver are usable.
func (c *Config) Validate() error {
	if c.Collection.LiveInterval.Duration <= 0 {
		return fmt.Errorf("collection live_interval must be positive")
	}
	if c.Collection.ProviderTimeout.Duration <= 0 {
		return fmt.Errorf("collection provider_timeout must be positive")
	}
	if c.Sampler.Interval.Duration <= 0 {
		return fmt.Errorf("sampler interval must be positive")
	}
	if c.Sampler.WindowSize <= 0 {
		return fmt.Errorf("sampler window_size must be positive (got: %d)", c.Sampler.WindowSize)
	}
	if c.Sampler.OscillationTime.Duration <= 0 {
		return fmt.Errorf("sampler oscillation_period must be positive")
	}
	if !validDrivers[c.Storage.Driver] {
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver != "memory" && c.Storage.Path == "" {
		return fmt.Errorf("storage path is required for driver %q", c.Storage.Driver)
	}
	if c.Storage.HistoryLimit <= 0 {
		return fmt.Errorf("storage history_limit must be positive")
	}
	if c.Storage.FlushInterval.Duration <= 0 {
		return fmt.Errorf("storage flush_interval must be positive")
	}
	if c.Collection.RefreshRate.Duration < 0 || c.Collection.RefreshBurst < 0 {
		return fmt.Errorf("collection refresh_rate and refresh_burst must not be negative")
	}
	return nil
}
