package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lerr "github.com/bigpick/bigpick/internal/errors"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.List.Overscan)
	assert.Equal(t, "substring", cfg.Search.Matcher)
	assert.Greater(t, cfg.Search.Workers, 0)
}

func TestLoad_MissingFileReturnsNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.Equal(t, lerr.ErrCodeConfigNotFound, lerr.GetCode(err))
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	// Given: a config file overriding a subset of fields
	path := filepath.Join(t.TempDir(), ".bigpick.yaml")
	body := `
version: 1
list:
  overscan: 8
  item_extent: 48
  min_item_extent: 12
search:
  matcher: fuzzy
  fuzzy_threshold: 10
  debounce_window: 50ms
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	// When: loading
	cfg, err := Load(path)
	require.NoError(t, err)

	// Then: overridden fields stick, untouched fields keep defaults
	assert.Equal(t, 8, cfg.List.Overscan)
	assert.Equal(t, 48, cfg.List.ItemExtent)
	assert.Equal(t, 12, cfg.List.MinItemExtent)
	assert.Equal(t, "fuzzy", cfg.Search.Matcher)
	assert.Equal(t, 50*time.Millisecond, cfg.Search.DebounceWindow)
	assert.Equal(t, DefaultMaxDatasetSize, cfg.List.MaxDatasetSize)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".bigpick.yaml")
	require.NoError(t, os.WriteFile(path, []byte("list:\n  overscan: 3\n"), 0o644))
	t.Setenv("BIGPICK_OVERSCAN", "11")
	t.Setenv("BIGPICK_WORKERS", "2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 11, cfg.List.Overscan)
	assert.Equal(t, 2, cfg.Search.Workers)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative overscan", func(c *Config) { c.List.Overscan = -1 }},
		{"zero item extent", func(c *Config) { c.List.ItemExtent = 0 }},
		{"negative min item extent", func(c *Config) { c.List.MinItemExtent = -1 }},
		{"min extent above estimate", func(c *Config) {
			c.List.ItemExtent = 10
			c.List.MinItemExtent = 20
		}},
		{"zero max dataset", func(c *Config) { c.List.MaxDatasetSize = 0 }},
		{"unknown matcher", func(c *Config) { c.Search.Matcher = "regex" }},
		{"negative debounce", func(c *Config) { c.Search.DebounceWindow = -time.Second }},
		{"negative workers", func(c *Config) { c.Search.Workers = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var le *lerr.ListError
			require.True(t, stderrors.As(err, &le))
			assert.Equal(t, lerr.CategoryConfig, le.Category)
		})
	}
}

func TestLoad_MalformedYAMLIsConfigError(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".bigpick.yaml")
	require.NoError(t, os.WriteFile(path, []byte("list: [broken"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, lerr.ErrCodeConfigInvalid, lerr.GetCode(err))
}
