package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/venturesonar/venturesonar/internal/application/acquisition"
	"github.com/venturesonar/venturesonar/internal/application/geomap"
	"github.com/venturesonar/venturesonar/internal/application/selection"
	"github.com/venturesonar/venturesonar/internal/config"
	"github.com/venturesonar/venturesonar/internal/infrastructure/analysis"
	"github.com/venturesonar/venturesonar/internal/infrastructure/cache"
	"github.com/venturesonar/venturesonar/internal/infrastructure/messaging/kafka"
	"github.com/venturesonar/venturesonar/internal/infrastructure/monitoring/logging"
	"github.com/venturesonar/venturesonar/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/venturesonar/venturesonar/internal/interfaces/http"
	"github.com/venturesonar/venturesonar/internal/interfaces/http/handlers"
)

// NewServeCmd creates the serve subcommand: run the HTTP API in the
// foreground until interrupted.
func NewServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the VentureSonar HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config
			if port > 0 {
				cfg.Server.Port = port
			}
			return runServer(cmd, cfg, cliCtx.Logger)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (overrides config)")
	return cmd
}

func runServer(cmd *cobra.Command, cfg *config.Config, logger logging.Logger) error {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "sonar",
		Subsystem:            "api",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return fmt.Errorf("metrics init: %w", err)
	}
	metrics := prometheus.NewMetrics(collector)

	var store cache.Cache
	var checkers []handlers.HealthChecker
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewClient(cfg.Redis, logger.Named("cache"))
		if err != nil {
			return fmt.Errorf("redis init: %w", err)
		}
		defer redisClient.Close()
		store = cache.NewRedisCache(redisClient, logger.Named("cache"),
			cache.WithPrefix(cfg.Redis.KeyPrefix),
			cache.WithDefaultTTL(cfg.Redis.DefaultTTL),
		)
		checkers = append(checkers, handlers.CheckerFunc{ComponentName: "redis", Fn: redisClient.Ping})
	} else {
		store = cache.NewMemoryCache(cfg.Redis.DefaultTTL)
	}

	var sink kafka.EventSink = kafka.NopSink{}
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka, logger.Named("kafka"))
		if err != nil {
			return fmt.Errorf("kafka init: %w", err)
		}
		defer producer.Close()
		sink = producer
	}

	client, err := analysis.NewClient(cfg.Analysis,
		analysis.WithLogger(logger.Named("analysis")),
		analysis.WithCache(store, cfg.Redis.DefaultTTL),
		analysis.WithMetrics(metrics),
	)
	if err != nil {
		return fmt.Errorf("analysis client init: %w", err)
	}

	orch := acquisition.NewOrchestrator(client, cfg.Acquisition,
		acquisition.WithLogger(logger.Named("acquisition")),
		acquisition.WithMetrics(metrics),
		acquisition.WithEventSink(sink),
	)
	defer orch.Close()

	resolver := geomap.NewResolver(cfg.Map.CollisionBiasDegrees, cfg.Map.CollisionJitterFraction, 0)
	ctrl := selection.NewController(logger.Named("selection"))

	router := httpserver.NewRouter(httpserver.RouterConfig{
		RunHandler:       handlers.NewRunHandler(orch),
		MapHandler:       handlers.NewMapHandler(orch, resolver),
		SelectionHandler: handlers.NewSelectionHandler(orch, ctrl),
		NoticeHandler:    handlers.NewNoticeHandler(orch),
		HealthHandler:    handlers.NewHealthHandler(config.Version, checkers...),
		Logger:           logger.Named("http"),
		Collector:        collector,
		Metrics:          metrics,
		Server:           cfg.Server,
		RateLimit:        cfg.RateLimit,
	})
	server := httpserver.NewServer(cfg.Server, router, logger.Named("http"))

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	case <-cmd.Context().Done():
	}
	return server.Stop(context.Background())
}
