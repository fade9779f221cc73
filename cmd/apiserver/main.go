// API server entry point for VentureSonar.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

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

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using environment and defaults\n", err)
		cfg, err = config.LoadFromEnv()
		if err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: logger init: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	logger.Info("starting venturesonar",
		logging.String("version", config.Version),
		logging.Int("port", cfg.Server.Port),
	)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", logging.Err(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %q not found", path)
	}
	return config.Load(path)
}

func run(cfg *config.Config, logger logging.Logger) error {
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

	store, checkers, cleanup, err := buildCache(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	sink, sinkClose, err := buildEventSink(cfg, logger)
	if err != nil {
		return err
	}
	defer sinkClose()

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

	resolver := geomap.NewResolver(
		cfg.Map.CollisionBiasDegrees,
		cfg.Map.CollisionJitterFraction,
		0,
	)
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

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	}
	return server.Stop(context.Background())
}

// buildCache selects the Redis-backed response cache when enabled, falling
// back to the in-process cache otherwise.
func buildCache(cfg *config.Config, logger logging.Logger) (cache.Cache, []handlers.HealthChecker, func(), error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(cfg.Redis.DefaultTTL), nil, func() {}, nil
	}

	client, err := cache.NewClient(cfg.Redis, logger.Named("cache"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("redis init: %w", err)
	}
	store := cache.NewRedisCache(client, logger.Named("cache"),
		cache.WithPrefix(cfg.Redis.KeyPrefix),
		cache.WithDefaultTTL(cfg.Redis.DefaultTTL),
	)
	checkers := []handlers.HealthChecker{
		handlers.CheckerFunc{ComponentName: "redis", Fn: client.Ping},
	}
	return store, checkers, func() { _ = client.Close() }, nil
}

// buildEventSink wires the Kafka producer when enabled, a no-op sink
// otherwise.
func buildEventSink(cfg *config.Config, logger logging.Logger) (kafka.EventSink, func(), error) {
	if !cfg.Kafka.Enabled {
		return kafka.NopSink{}, func() {}, nil
	}
	producer, err := kafka.NewProducer(cfg.Kafka, logger.Named("kafka"))
	if err != nil {
		return nil, nil, fmt.Errorf("kafka init: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}
