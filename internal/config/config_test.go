package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfigValidates(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Analysis.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Analysis.InitialBackoff)
	assert.Equal(t, 3*time.Second, cfg.Acquisition.StepDelay)
	assert.Equal(t, 3*time.Second, cfg.Acquisition.NoticeTTL)
	assert.Equal(t, 3, cfg.Acquisition.MinIdeaLength)
	assert.Equal(t, 0.3, cfg.Map.CollisionJitterFraction)
}

func TestApplyDefaultsDoesNotOverride(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Analysis.BaseURL = "https://analysis.internal"
	cfg.Acquisition.StepDelay = 500 * time.Millisecond

	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "https://analysis.internal", cfg.Analysis.BaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Acquisition.StepDelay)
	// Untouched fields still get defaults.
	assert.Equal(t, DefaultServerMode, cfg.Server.Mode)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = -1 }},
		{"bad mode", func(c *Config) { c.Server.Mode = "production" }},
		{"empty base url", func(c *Config) { c.Analysis.BaseURL = "" }},
		{"negative retries", func(c *Config) { c.Analysis.MaxRetries = -1 }},
		{"zero backoff", func(c *Config) { c.Analysis.InitialBackoff = 0 }},
		{"jitter above one", func(c *Config) { c.Map.CollisionJitterFraction = 1.5 }},
		{"kafka enabled without brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }},
		{"redis enabled without addr", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
