package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/marketsearch/internal/logger"
	"github.com/kailas-cloud/marketsearch/internal/metrics"
	"github.com/kailas-cloud/marketsearch/internal/telemetry"
	chiTransport "github.com/kailas-cloud/marketsearch/internal/transport/chi"
	analyticsuc "github.com/kailas-cloud/marketsearch/internal/usecase/analytics"
	healthuc "github.com/kailas-cloud/marketsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/marketsearch/internal/usecase/search"
	windowsuc "github.com/kailas-cloud/marketsearch/internal/usecase/windows"
	"github.com/kailas-cloud/marketsearch/internal/version"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	env, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.HTTP.Port = port
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting marketsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_driver", cfg.Catalog.Driver),
		zap.String("analytics_sink", cfg.Analytics.Sink),
	)

	flushSentry, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		Release:          version.Version,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
	})
	if err != nil {
		logger.Warn("Sentry disabled", zap.Error(err))
	}
	defer flushSentry()

	ctx := context.Background()
	be, err := openBackends(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer be.Close()

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	sink, closeSink, err := openSink(cfg.Analytics, be.redis, logger)
	if err != nil {
		return fmt.Errorf("analytics sink: %w", err)
	}
	defer closeSink()
	dispatcher, err := analyticsuc.NewDispatcher(sink, cfg.Analytics.PoolSize, cfg.Analytics.SinkTimeout(), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := dispatcher.Close(5 * time.Second); err != nil {
			logger.Warn("Analytics dispatcher did not drain", zap.Error(err))
		}
	}()

	searchSvc := searchuc.New(be.catalog, be.geo, be.favorites, dispatcher,
		searchuc.WithTimeout(cfg.Search.Timeout()))
	windowsSvc := windowsuc.New(be.windows, cfg.Search.Timeout())
	healthSvc := healthuc.New(be.pingers)

	server := chiTransport.NewServer(searchSvc, windowsSvc, healthSvc, request.Defaults{
		PageSize:    cfg.Search.DefaultPageSize,
		RadiusMiles: cfg.Search.DefaultRadiusMiles,
	}, logger).WithVersion(version.Version)

	var limiter *chiTransport.RateLimiter
	if cfg.HTTP.RateLimit.RPS > 0 {
		limiter = chiTransport.NewRateLimiter(cfg.HTTP.RateLimit.RPS, cfg.HTTP.RateLimit.Burst)
		defer limiter.Stop()
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr: addr,
		Handler: chiTransport.NewRouter(server, chiTransport.RouterConfig{
			APIKeys: cfg.Auth.APIKeys,
			Limiter: limiter,
			Sentry:  cfg.Sentry.DSN != "",
		}),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
