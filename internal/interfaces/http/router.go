// Package http assembles the middleware chain and route tree and owns the
// server lifecycle.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/venturesonar/venturesonar/internal/config"
	"github.com/venturesonar/venturesonar/internal/infrastructure/monitoring/logging"
	"github.com/venturesonar/venturesonar/internal/infrastructure/monitoring/prometheus"
	"github.com/venturesonar/venturesonar/internal/interfaces/http/handlers"
	"github.com/venturesonar/venturesonar/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies for the
// complete route tree.
type RouterConfig struct {
	RunHandler       *handlers.RunHandler
	MapHandler       *handlers.MapHandler
	SelectionHandler *handlers.SelectionHandler
	NoticeHandler    *handlers.NoticeHandler
	HealthHandler    *handlers.HealthHandler

	Logger    logging.Logger
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.Metrics

	Server    config.ServerConfig
	RateLimit config.RateLimitConfig
}

// NewRouter wires global middleware, the public probes, the metrics endpoint,
// and the versioned API group into one engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger, "/healthz", "/readyz", "/metrics"))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.RateLimit(cfg.RateLimit, cfg.Metrics, "/healthz", "/readyz", "/metrics"))
	r.Use(middleware.HTTPMetrics(cfg.Metrics))

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.Collector != nil {
		r.GET("/metrics", gin.WrapH(cfg.Collector.Handler()))
	}

	api := r.Group("/api/v1")
	if cfg.RunHandler != nil {
		cfg.RunHandler.RegisterRoutes(api)
	}
	if cfg.MapHandler != nil {
		cfg.MapHandler.RegisterRoutes(api)
	}
	if cfg.SelectionHandler != nil {
		cfg.SelectionHandler.RegisterRoutes(api)
	}
	if cfg.NoticeHandler != nil {
		cfg.NoticeHandler.RegisterRoutes(api)
	}

	return r
}
