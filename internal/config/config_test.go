package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entropycopy/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("USERPROFILE", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, resolved)
	assert.False(t, exists, "expected config file to be absent in temp HOME")

	assert.Equal(t, filepath.Join(tempHome, "Documents", "entropy"), cfg.Paths.DestinationDir)
	assert.Equal(t, filepath.Join(tempHome, ".local", "share", "entropycopy", "logs"), cfg.Paths.LogDir)
	assert.Equal(t, "copyfiletoentropyfile", cfg.Channel.Name)
	assert.Equal(t, time.Second, cfg.ConnectTimeout())
	assert.Equal(t, config.RequestMax, cfg.Channel.RequestMax)
	assert.Equal(t, config.ResponseMax, cfg.Channel.ResponseMax)
	assert.Equal(t, filepath.Join(cfg.Paths.LogDir, "history.db"), cfg.History.Path)
	assert.True(t, cfg.History.Enabled)
}

func TestLoadFromFileClampsWireBounds(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "dest")
	payload := map[string]any{
		"paths": map[string]any{
			"destination_dir": dest,
			"log_dir":         filepath.Join(dir, "logs"),
		},
		"channel": map[string]any{
			"name":               "  custompipe ",
			"connect_timeout_ms": 250,
			"request_max":        4096,
			"response_max":       64,
		},
		"logging": map[string]any{
			"format": "JSON",
			"level":  "Debug",
		},
	}
	data, err := toml.Marshal(payload)
	require.NoError(t, err)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, resolved, exists, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, path, resolved)
	assert.Equal(t, dest, cfg.Paths.DestinationDir)
	assert.Equal(t, "custompipe", cfg.Channel.Name)
	assert.Equal(t, 250*time.Millisecond, cfg.ConnectTimeout())
	assert.Equal(t, config.RequestMax, cfg.Channel.RequestMax, "request bound must not exceed protocol maximum")
	assert.Equal(t, 64, cfg.Channel.ResponseMax)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[paths]\nlog_dir = \"" + filepath.ToSlash(filepath.Join(dir, "logs")) + "\"\n[logging]\nformat = \"xml\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, _, _, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
}

func TestWithChannelNameOverridesOnlyWhenSet(t *testing.T) {
	cfg := config.Default()

	same := cfg.WithChannelName("   ")
	assert.Equal(t, cfg.Channel.Name, same.Channel.Name)

	override := cfg.WithChannelName("other")
	assert.Equal(t, "other", override.Channel.Name)
	assert.Equal(t, "copyfiletoentropyfile", cfg.Channel.Name, "original config must not be mutated")
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("USERPROFILE", os.Getenv("HOME"))
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, config.CreateSample(path))

	cfg, _, exists, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "copyfiletoentropyfile", cfg.Channel.Name)
	assert.Equal(t, 1000, cfg.History.Keep)
}
