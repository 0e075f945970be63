package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.LogLevel)
	assert.Empty(t, cfg.Logger.FileLogName)
	assert.Equal(t, 4, cfg.Pool.Workers)
	assert.Equal(t, DefaultDrainInterval, cfg.Pool.DrainInterval)
	assert.Equal(t, 0, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Stress.Producers)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
logger:
  log_level: debug
  file_log_name: /tmp/fairqueue.log
  max_size: 10
pool:
  workers: 8
  drain_interval: 5
server:
  mode: debug
  port: 8080
stress:
  producers: 2
  items_per_producer: 100
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.LogLevel)
	assert.Equal(t, "/tmp/fairqueue.log", cfg.Logger.FileLogName)
	assert.Equal(t, 10, cfg.Logger.MaxSize)
	assert.Equal(t, 3, cfg.Logger.MaxBackups, "unset keys keep their default")
	assert.Equal(t, 8, cfg.Pool.Workers)
	assert.Equal(t, 5, cfg.Pool.DrainInterval)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Stress.Producers)
	assert.Equal(t, 100, cfg.Stress.ItemsPerProducer)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "pool:\n  workers: 8\n")
	t.Setenv("FAIRQUEUE_POOL_WORKERS", "3")
	t.Setenv("FAIRQUEUE_LOGGER_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Pool.Workers)
	assert.Equal(t, "warn", cfg.Logger.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero_workers", "pool:\n  workers: 0\n"},
		{"bad_log_level", "logger:\n  log_level: verbose\n"},
		{"bad_port", "server:\n  port: 70000\n"},
		{"bad_mode", "server:\n  mode: production\n"},
		{"zero_producers", "stress:\n  producers: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
