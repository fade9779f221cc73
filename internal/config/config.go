// Package config defines all configuration structures for VentureSonar.
// No I/O or parsing logic lives here — only plain data types and validation.
// Loading is handled by loader.go.
package config

import (
	"fmt"
	"time"

	"github.com/venturesonar/venturesonar/internal/infrastructure/monitoring/logging"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// AnalysisConfig holds the connection and retry policy for the external
// analysis service that backs the four feeds.
type AnalysisConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`

	// MaxRetries caps retries after the first attempt; total attempts are
	// MaxRetries+1.  Only throttling failures are retried.
	MaxRetries int `mapstructure:"max_retries"`

	// InitialBackoff is the first retry delay; each subsequent retry doubles it.
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
}

// AcquisitionConfig holds the sequential-orchestration policy.
type AcquisitionConfig struct {
	// StepDelay is the fixed wait between category fetches regardless of
	// outcome.  A policy constant to stay under external rate limits, not
	// derived from response headers.
	StepDelay time.Duration `mapstructure:"step_delay"`

	// NoticeTTL is how long a transient per-category failure notice stays
	// visible before auto-expiring.
	NoticeTTL time.Duration `mapstructure:"notice_ttl"`

	// MinIdeaLength is the minimum idea length (in runes, after trimming)
	// that triggers a run.
	MinIdeaLength int `mapstructure:"min_idea_length"`
}

// MapConfig holds geospatial rendering tunables.
type MapConfig struct {
	// CollisionBiasDegrees is the magnitude of the per-category directional
	// offset applied to coincident markers.
	CollisionBiasDegrees float64 `mapstructure:"collision_bias_degrees"`

	// CollisionJitterFraction bounds the symmetric random jitter as a
	// fraction of the bias magnitude.
	CollisionJitterFraction float64 `mapstructure:"collision_jitter_fraction"`
}

// RedisConfig holds the session-cache connection parameters.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds the acquisition event-sink parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// RateLimitConfig holds the inbound HTTP rate-limit policy.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

// Config is the root configuration object.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Analysis    AnalysisConfig    `mapstructure:"analysis"`
	Acquisition AcquisitionConfig `mapstructure:"acquisition"`
	Map         MapConfig         `mapstructure:"map"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Log         logging.Config    `mapstructure:"log"`
}

// Validate checks cross-field consistency after defaults have been applied.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode %q must be debug, release, or test", c.Server.Mode)
	}
	if c.Analysis.BaseURL == "" {
		return fmt.Errorf("analysis.base_url is required")
	}
	if c.Analysis.MaxRetries < 0 {
		return fmt.Errorf("analysis.max_retries must not be negative")
	}
	if c.Analysis.InitialBackoff <= 0 {
		return fmt.Errorf("analysis.initial_backoff must be positive")
	}
	if c.Acquisition.StepDelay < 0 {
		return fmt.Errorf("acquisition.step_delay must not be negative")
	}
	if c.Acquisition.MinIdeaLength < 1 {
		return fmt.Errorf("acquisition.min_idea_length must be at least 1")
	}
	if c.Map.CollisionJitterFraction < 0 || c.Map.CollisionJitterFraction > 1 {
		return fmt.Errorf("map.collision_jitter_fraction %f out of [0,1]", c.Map.CollisionJitterFraction)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka.enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr required when redis.enabled")
	}
	return nil
}
