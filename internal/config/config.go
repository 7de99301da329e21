// Package config loads and validates bigpick widget configuration.
//
// Configuration is layered:
//  1. Built-in defaults
//  2. YAML file (explicit path or .bigpick.yaml in the working directory)
//  3. BIGPICK_* environment variables (highest priority)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	lerr "github.com/bigpick/bigpick/internal/errors"
)

// DefaultMaxDatasetSize bounds Fenwick/bitset memory; 16M rows costs ~130MB
// for the index structures alone.
const DefaultMaxDatasetSize = 16 << 20

// Config represents the complete bigpick configuration.
type Config struct {
	Version  int            `yaml:"version" json:"version"`
	List     ListConfig     `yaml:"list" json:"list"`
	Search   SearchConfig   `yaml:"search" json:"search"`
	Log      LogConfig      `yaml:"log" json:"log"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
}

// ListConfig configures viewport and pool behavior.
type ListConfig struct {
	// Overscan is the number of extra positions rendered beyond each edge
	// of the viewport to reduce pop-in during fast scrolling.
	Overscan int `yaml:"overscan" json:"overscan"`

	// ItemExtent is the fixed item extent estimate in cells/pixels.
	ItemExtent int `yaml:"item_extent" json:"item_extent"`

	// MinItemExtent floors measured row extents and sizes the node pool
	// in variable-extent mode. 0 means item_extent.
	MinItemExtent int `yaml:"min_item_extent" json:"min_item_extent"`

	// VariableExtents enables the measured-extent cache for rows whose
	// real rendered extent differs from the estimate.
	VariableExtents bool `yaml:"variable_extents" json:"variable_extents"`

	// MaxDatasetSize caps the dataset size accepted by the filter index.
	MaxDatasetSize int `yaml:"max_dataset_size" json:"max_dataset_size"`
}

// SearchConfig configures query evaluation.
type SearchConfig struct {
	// Matcher selects the match strategy: "substring" or "fuzzy".
	Matcher string `yaml:"matcher" json:"matcher"`

	// FuzzyThreshold is the minimum fuzzy score for a match (fuzzy only).
	FuzzyThreshold int `yaml:"fuzzy_threshold" json:"fuzzy_threshold"`

	// DebounceWindow collapses keystroke bursts; only the last query in a
	// window is dispatched for evaluation.
	DebounceWindow time.Duration `yaml:"debounce_window" json:"debounce_window"`

	// Workers is the number of background evaluation workers.
	// 0 means synchronous evaluation only.
	Workers int `yaml:"workers" json:"workers"`
}

// UnmarshalYAML decodes the search section, accepting duration strings
// like "30ms" for debounce_window. Absent keys keep their current values.
func (s *SearchConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Matcher        *string `yaml:"matcher"`
		FuzzyThreshold *int    `yaml:"fuzzy_threshold"`
		DebounceWindow *string `yaml:"debounce_window"`
		Workers        *int    `yaml:"workers"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Matcher != nil {
		s.Matcher = *raw.Matcher
	}
	if raw.FuzzyThreshold != nil {
		s.FuzzyThreshold = *raw.FuzzyThreshold
	}
	if raw.Workers != nil {
		s.Workers = *raw.Workers
	}
	if raw.DebounceWindow != nil {
		d, err := time.ParseDuration(*raw.DebounceWindow)
		if err != nil {
			return lerr.ConfigError(
				fmt.Sprintf("invalid debounce_window %q", *raw.DebounceWindow), err)
		}
		s.DebounceWindow = d
	}
	return nil
}

// MarshalYAML emits debounce_window as a duration string.
func (s SearchConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Matcher        string `yaml:"matcher"`
		FuzzyThreshold int    `yaml:"fuzzy_threshold"`
		DebounceWindow string `yaml:"debounce_window"`
		Workers        int    `yaml:"workers"`
	}{s.Matcher, s.FuzzyThreshold, s.DebounceWindow.String(), s.Workers}, nil
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// MetricsConfig configures local telemetry collection.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	// QueryCacheSize bounds the per-query stats LRU.
	QueryCacheSize int `yaml:"query_cache_size" json:"query_cache_size"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	workers := runtime.GOMAXPROCS(0)
	if workers > 4 {
		workers = 4
	}
	return &Config{
		Version: 1,
		List: ListConfig{
			Overscan:       5,
			ItemExtent:     1,
			MaxDatasetSize: DefaultMaxDatasetSize,
		},
		Search: SearchConfig{
			Matcher:        "substring",
			FuzzyThreshold: 0,
			DebounceWindow: 30 * time.Millisecond,
			Workers:        workers,
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:        true,
			QueryCacheSize: 256,
		},
	}
}

// Load reads configuration from the given path, layering defaults and
// environment overrides. An empty path loads defaults plus env only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, lerr.New(lerr.ErrCodeConfigNotFound,
					fmt.Sprintf("config file not found: %s", path), err)
			}
			return nil, lerr.ConfigError("reading config file", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, lerr.ConfigError("parsing config file", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies BIGPICK_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BIGPICK_OVERSCAN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.List.Overscan = n
		}
	}
	if v := os.Getenv("BIGPICK_ITEM_EXTENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.List.ItemExtent = n
		}
	}
	if v := os.Getenv("BIGPICK_MIN_ITEM_EXTENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.List.MinItemExtent = n
		}
	}
	if v := os.Getenv("BIGPICK_MAX_DATASET_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.List.MaxDatasetSize = n
		}
	}
	if v := os.Getenv("BIGPICK_MATCHER"); v != "" {
		c.Search.Matcher = v
	}
	if v := os.Getenv("BIGPICK_DEBOUNCE_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Search.DebounceWindow = d
		}
	}
	if v := os.Getenv("BIGPICK_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.Workers = n
		}
	}
	if v := os.Getenv("BIGPICK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.List.Overscan < 0 {
		return lerr.ConfigError(
			fmt.Sprintf("overscan must be >= 0, got %d", c.List.Overscan), nil)
	}
	if c.List.ItemExtent <= 0 {
		return lerr.ConfigError(
			fmt.Sprintf("item_extent must be > 0, got %d", c.List.ItemExtent), nil)
	}
	if c.List.MinItemExtent < 0 {
		return lerr.ConfigError(
			fmt.Sprintf("min_item_extent must be >= 0, got %d", c.List.MinItemExtent), nil)
	}
	if c.List.MinItemExtent > c.List.ItemExtent {
		return lerr.ConfigError(
			fmt.Sprintf("min_item_extent %d exceeds item_extent %d",
				c.List.MinItemExtent, c.List.ItemExtent), nil)
	}
	if c.List.MaxDatasetSize <= 0 {
		return lerr.ConfigError(
			fmt.Sprintf("max_dataset_size must be > 0, got %d", c.List.MaxDatasetSize), nil)
	}
	switch c.Search.Matcher {
	case "substring", "fuzzy":
	default:
		return lerr.ConfigError(
			fmt.Sprintf("unknown matcher %q (use: substring, fuzzy)", c.Search.Matcher), nil)
	}
	if c.Search.DebounceWindow < 0 {
		return lerr.ConfigError("debounce_window must not be negative", nil)
	}
	if c.Search.Workers < 0 {
		return lerr.ConfigError(
			fmt.Sprintf("workers must be >= 0, got %d", c.Search.Workers), nil)
	}
	if c.Metrics.QueryCacheSize <= 0 && c.Metrics.Enabled {
		return lerr.ConfigError("query_cache_size must be > 0 when metrics are enabled", nil)
	}
	return nil
}

// UserConfigDir returns the user configuration directory, honoring
// XDG_CONFIG_HOME.
func UserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "bigpick")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "bigpick")
	}
	return filepath.Join(home, ".config", "bigpick")
}

// UserConfigPath returns the user configuration file path.
func UserConfigPath() string {
	return filepath.Join(UserConfigDir(), "config.yaml")
}

// UserConfigExists reports whether the user configuration file exists.
func UserConfigExists() bool {
	_, err := os.Stat(UserConfigPath())
	return err == nil
}
