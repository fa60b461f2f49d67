package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"scraper/internal/api"
	"scraper/internal/config"
	"scraper/internal/monitoring"
	"scraper/internal/scrape"
	"scraper/internal/storage"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	// Initialize Storage Layer
	pgStore, err := storage.NewPostgresStore(cfg.PostgresURL)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pgStore.Close()
	redisStore := storage.NewRedisStore(cfg.RedisAddr,
		time.Duration(cfg.RenderCacheHours)*time.Hour)

	// Initialize Monitoring
	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	// Initialize Scrape Pipeline
	fetcher := scrape.NewFetcher(
		time.Duration(cfg.FetchTimeout)*time.Second,
		cfg.RateLimitPerSecond,
		cfg.RespectRobots,
		logger,
	)
	renderer := scrape.NewChromeRenderer(
		time.Duration(cfg.RenderTimeout)*time.Second, logger)
	reporter := storage.NewReporter(pgStore, redisStore, logger)
	orch := scrape.NewOrchestrator(fetcher, renderer, pgStore, reporter,
		redisStore, cfg.SeedWorkers, metrics, logger)

	worker := scrape.NewWorker(orch, cfg.BatchQueueSize, logger)
	worker.Start()

	// Initialize API Server
	server := api.NewServer(cfg, worker, pgStore, redisStore, metrics, logger)

	// Graceful Shutdown
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	worker.Stop()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
