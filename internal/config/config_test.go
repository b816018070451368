package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/raphaelgruber/habitcal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8485", cfg.ListenAddr)
	assert.Equal(t, "habits.db", cfg.DBPath)
	assert.Equal(t, config.ProviderOllama, cfg.LLMProvider)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "habitcal.yaml")
	data := []byte("listen_addr: \":9000\"\ndb_path: /var/lib/habitcal/habits.db\nllm_provider: none\nlog_level: debug\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/var/lib/habitcal/habits.db", cfg.DBPath)
	assert.Equal(t, config.ProviderNone, cfg.LLMProvider)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "habits.db", cfg.DBPath)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "habitcal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: from-file.db\n"), 0644))

	t.Setenv("HABITCAL_DB_PATH", "from-env.db")
	t.Setenv("HABITCAL_LLM_PROVIDER", "ANTHROPIC")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env.db", cfg.DBPath)
	assert.Equal(t, config.ProviderAnthropic, cfg.LLMProvider)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("HABITCAL_LLM_PROVIDER", "gemini-ultra-9000")

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")
}
