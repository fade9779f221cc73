package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
  mode: test
analysis:
  base_url: https://analysis.example
  initial_backoff: 1s
acquisition:
  step_delay: 250ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.Mode)
	assert.Equal(t, "https://analysis.example", cfg.Analysis.BaseURL)
	assert.Equal(t, time.Second, cfg.Analysis.InitialBackoff)
	assert.Equal(t, 250*time.Millisecond, cfg.Acquisition.StepDelay)
	// Defaults fill what the file omits.
	assert.Equal(t, DefaultMaxRetries, cfg.Analysis.MaxRetries)
	assert.Equal(t, DefaultKeyPrefix, cfg.Redis.KeyPrefix)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidConfigFails(t *testing.T) {
	path := writeConfigFile(t, `
server:
  mode: nonsense
`)
	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SONAR_SERVER_PORT", "7070")
	t.Setenv("SONAR_ANALYSIS_BASE_URL", "https://env.example")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "https://env.example", cfg.Analysis.BaseURL)
}
