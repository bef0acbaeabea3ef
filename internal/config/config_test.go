package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{"server": {"port": "8080"}}`))

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "./static", cfg.Server.StaticDir)
	assert.Equal(t, "platecheck.db", cfg.Database.Path)
	assert.Equal(t, "gemini", cfg.ML.Type)
	assert.Equal(t, int64(DefaultMaxUploadBytes), cfg.Upload.MaxSizeBytes)
	assert.Zero(t, cfg.RateLimit.PerMinute)
}

func TestLoadConfig_MissingPort(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `{}`))

	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))

	assert.Error(t, err)
}

func TestLoadConfig_Explicit(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{
		"server": {"port": "9000", "static_dir": "public", "debug": true},
		"database": {"path": "data/app.db"},
		"ml": {"type": "vertex"},
		"upload": {"max_size_bytes": 1048576},
		"rate_limit": {"per_minute": 30}
	}`))

	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, "vertex", cfg.ML.Type)
	assert.Equal(t, int64(1<<20), cfg.Upload.MaxSizeBytes)
	assert.Equal(t, 30, cfg.RateLimit.PerMinute)
}
