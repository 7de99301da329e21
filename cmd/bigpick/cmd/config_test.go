package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bigpick/bigpick/internal/config"
)

// withConfigHome points XDG_CONFIG_HOME at a temp dir for the test.
func withConfigHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestConfigInitCmd_CreatesTemplate(t *testing.T) {
	// Given: no existing config
	home := withConfigHome(t)

	cmd := newConfigInitCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	// When: initializing
	require.NoError(t, cmd.Execute())

	// Then: the template landed at the XDG path and parses
	path := filepath.Join(home, "bigpick", "config.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, "substring", cfg.Search.Matcher)
	assert.Equal(t, 5, cfg.List.Overscan)
}

func TestConfigInitCmd_RefusesOverwrite(t *testing.T) {
	withConfigHome(t)

	first := newConfigInitCmd()
	first.SetOut(&bytes.Buffer{})
	require.NoError(t, first.Execute())

	second := newConfigInitCmd()
	second.SetOut(&bytes.Buffer{})
	err := second.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestConfigShowCmd_MergesEnvOverrides(t *testing.T) {
	// Given: an env override on top of defaults
	withConfigHome(t)
	t.Setenv("BIGPICK_OVERSCAN", "9")

	cmd := newConfigShowCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	// When: showing the effective config
	require.NoError(t, cmd.Execute())

	// Then: the override is visible in the YAML
	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &cfg))
	assert.Equal(t, 9, cfg.List.Overscan)
}

func TestConfigPathCmd_HonorsXDG(t *testing.T) {
	home := withConfigHome(t)

	cmd := newConfigPathCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), filepath.Join(home, "bigpick", "config.yaml"))
}

func TestConfigExampleCmd_TemplateIsValidYAML(t *testing.T) {
	cmd := newConfigExampleCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	require.NoError(t, cmd.Execute())

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &cfg))
	require.NoError(t, cfg.Validate())
}
