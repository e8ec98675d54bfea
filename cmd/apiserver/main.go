// API server entry point for the notice intelligence service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	appnotice "github.com/taxletterhelp/notice-intelligence/internal/application/notice"
	"github.com/taxletterhelp/notice-intelligence/internal/config"
	"github.com/taxletterhelp/notice-intelligence/internal/infrastructure/database/postgres"
	"github.com/taxletterhelp/notice-intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/taxletterhelp/notice-intelligence/internal/infrastructure/database/redis"
	"github.com/taxletterhelp/notice-intelligence/internal/infrastructure/generation"
	"github.com/taxletterhelp/notice-intelligence/internal/infrastructure/messaging/kafka"
	"github.com/taxletterhelp/notice-intelligence/internal/infrastructure/monitoring/logging"
	prom "github.com/taxletterhelp/notice-intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/engine"
	httpserver "github.com/taxletterhelp/notice-intelligence/internal/interfaces/http"
	"github.com/taxletterhelp/notice-intelligence/internal/interfaces/http/handlers"
	"github.com/taxletterhelp/notice-intelligence/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (omit to configure from NOTICE_* env vars)")
	skipMigrations := flag.Bool("skip-migrations", false, "do not run database migrations on startup")
	flag.Parse()

	if err := run(*configPath, *skipMigrations); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, skipMigrations bool) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting notice intelligence API server",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.Int("port", cfg.Server.Port),
	)

	reg := prom.NewRegistry()
	metrics := prom.NewMetrics(reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !skipMigrations && cfg.Database.MigrationPath != "" {
		if err := postgres.RunMigrations(postgres.MigrateDSN(cfg.Database), cfg.Database.MigrationPath); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		logger.Info("database migrations applied", zap.String("path", cfg.Database.MigrationPath))
	}

	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	repo := repositories.NewNoticeRepository(conn.Pool(), logger)

	redisClient, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer redisClient.Close() //nolint:errcheck

	cache := redis.NewCache(redisClient, logger)

	producer, err := kafka.NewProducer(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	defer producer.Close() //nolint:errcheck

	if cfg.Kafka.AutoCreateTopics {
		topicMgr, err := kafka.NewTopicManager(cfg.Kafka, logger)
		if err != nil {
			return fmt.Errorf("kafka topics: %w", err)
		}
		if err := topicMgr.EnsureTopics(ctx); err != nil {
			topicMgr.Close() //nolint:errcheck
			return fmt.Errorf("kafka topics: %w", err)
		}
		topicMgr.Close() //nolint:errcheck
	}

	generator := generation.NewClient(cfg.Generation, logger)
	eng := engine.New(engine.WithLogger(logger))

	service := appnotice.NewService(eng, generator, repo, logger,
		appnotice.WithCache(cache),
		appnotice.WithPublisher(producer),
		appnotice.WithMetrics(metrics),
		appnotice.WithModelName(cfg.Generation.Model),
	)

	noticeHandler := handlers.NewNoticeHandler(service, logger)
	healthHandler := handlers.NewHealthHandler(logger, map[string]handlers.HealthChecker{
		"postgres": conn,
		"redis":    redisClient,
	})

	loggingMW := middleware.NewLoggingMiddleware(logger, middleware.WithMetrics(metrics))

	var rateLimitMW *middleware.RateLimitMiddleware
	if cfg.RateLimit.Enabled {
		limiter := redis.NewLimiter(redisClient, logger, cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window)
		rateLimitMW = middleware.NewRateLimitMiddleware(limiter, logger,
			middleware.WithRateLimitMetrics(metrics))
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		NoticeHandler:       noticeHandler,
		HealthHandler:       healthHandler,
		LoggingMiddleware:   loggingMW,
		RateLimitMiddleware: rateLimitMW,
		MetricsHandler:      prom.Handler(reg),
		MaxBodySize:         cfg.Server.MaxBodySize,
	})

	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", server.Addr()))
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
	return nil
}
