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
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "server:\n  port: \"9000\"\n"))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.VisionModel)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.VideoModel)
	assert.Equal(t, 10, cfg.Gemini.RequestsPerMinute)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "./data/farm.db", cfg.StorageDSN())
	assert.True(t, cfg.Community.Seed)
}

func TestLoadConfig_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "secret")
	t.Setenv("TEST_DB_URL", "postgres://localhost/farm")

	cfg, err := LoadConfig(writeConfig(t, `
gemini:
  api_key: "${TEST_GEMINI_KEY}"
storage:
  type: postgres
  url: "${TEST_DB_URL}"
community:
  seed: false
logbook:
  timezone: UTC
`))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Gemini.APIKey)
	assert.Equal(t, "postgres://localhost/farm", cfg.StorageDSN())
	assert.False(t, cfg.Community.Seed)
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorContains(t, err, "failed to open config file")

	_, err = LoadConfig(writeConfig(t, "server: [unclosed"))
	assert.ErrorContains(t, err, "failed to decode config file")

	_, err = LoadConfig(writeConfig(t, "logbook:\n  timezone: Mars/Olympus\n"))
	assert.ErrorContains(t, err, "failed to load timezone")
}
