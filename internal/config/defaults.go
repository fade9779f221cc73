package config

import "time"

// Policy defaults.  The acquisition timings are deliberate rate-limit policy
// constants, not latency tunables: the analysis service throttles aggressively
// and the sequential discipline trades latency for reliability.
const (
	DefaultServerPort      = 8080
	DefaultServerMode      = "release"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultAnalysisBaseURL = "http://localhost:8000"
	DefaultAnalysisTimeout = 90 * time.Second
	DefaultMaxRetries      = 2
	DefaultInitialBackoff  = 2 * time.Second

	DefaultStepDelay     = 3 * time.Second
	DefaultNoticeTTL     = 3 * time.Second
	DefaultMinIdeaLength = 3

	DefaultCollisionBiasDegrees    = 0.012
	DefaultCollisionJitterFraction = 0.3

	DefaultRedisAddr  = "localhost:6379"
	DefaultRedisTTL   = 30 * time.Minute
	DefaultKeyPrefix  = "sonar:"
	DefaultKafkaTopic = "sonar.acquisition"

	DefaultRequestsPerSecond = 10.0
	DefaultBurstSize         = 20

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Version is the service version stamped into logs and CLI output.
var Version = "0.3.0"

// ApplyDefaults fills every zero-value field in cfg with the platform
// default.  Fields that have already been set by the caller are left
// unchanged so that explicit configuration always wins.  Call after
// unmarshalling and before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Analysis.BaseURL == "" {
		cfg.Analysis.BaseURL = DefaultAnalysisBaseURL
	}
	if cfg.Analysis.Timeout == 0 {
		cfg.Analysis.Timeout = DefaultAnalysisTimeout
	}
	if cfg.Analysis.MaxRetries == 0 {
		cfg.Analysis.MaxRetries = DefaultMaxRetries
	}
	if cfg.Analysis.InitialBackoff == 0 {
		cfg.Analysis.InitialBackoff = DefaultInitialBackoff
	}

	if cfg.Acquisition.StepDelay == 0 {
		cfg.Acquisition.StepDelay = DefaultStepDelay
	}
	if cfg.Acquisition.NoticeTTL == 0 {
		cfg.Acquisition.NoticeTTL = DefaultNoticeTTL
	}
	if cfg.Acquisition.MinIdeaLength == 0 {
		cfg.Acquisition.MinIdeaLength = DefaultMinIdeaLength
	}

	if cfg.Map.CollisionBiasDegrees == 0 {
		cfg.Map.CollisionBiasDegrees = DefaultCollisionBiasDegrees
	}
	if cfg.Map.CollisionJitterFraction == 0 {
		cfg.Map.CollisionJitterFraction = DefaultCollisionJitterFraction
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}

	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = time.Second
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = 3
	}

	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.RateLimit.BurstSize == 0 {
		cfg.RateLimit.BurstSize = DefaultBurstSize
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// NewDefaultConfig returns a Config populated entirely with defaults.  Used
// by entry points when no config file is present.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
