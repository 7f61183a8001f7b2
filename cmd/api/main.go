// Package main is the entry point for the matching API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/renforthq/renfort/internal/api"
	"github.com/renforthq/renfort/internal/cache"
	"github.com/renforthq/renfort/internal/config"
	"github.com/renforthq/renfort/internal/health"
	"github.com/renforthq/renfort/internal/matching"
	"github.com/renforthq/renfort/internal/middleware"
	"github.com/renforthq/renfort/internal/ranking"
	"github.com/renforthq/renfort/internal/store"
	"github.com/renforthq/renfort/internal/tracing"
)

const serviceName = "renfort-api"

func main() {
	help := flag.Bool("help", false, "display help message")
	configFile := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	if *help {
		fmt.Println("Renfort Matching API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configFile)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "summary", cfg.LogSummary())

	// Tracing
	tracingProvider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporterType,
		OTLPEndpoint: cfg.TracingOTLPEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		InsecureMode: cfg.TracingInsecure,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracingProvider.Shutdown(ctx); err != nil {
			logger.Error("failed to shut down tracing", "error", err)
		}
	}()

	// Database
	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	missionSource := store.NewPostgresMissionStore(db, logger)

	// Worker pool source, optionally cached through Redis
	var workerSource matching.WorkerSource = store.NewPostgresWorkerStore(db, logger)
	var redisClient *redis.Client
	cacheMetrics := cache.NewMetrics()
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			// The cache is an optimization; the store alone can serve the pool.
			logger.Warn("redis unavailable, serving worker pool from database", "error", err)
		} else {
			defer redisClient.Close()
			workerSource = cache.NewCachedWorkerSource(workerSource, redisClient,
				cache.WithTTL(time.Duration(cfg.CacheTTLSeconds)*time.Second),
				cache.WithLogger(logger),
				cache.WithMetrics(cacheMetrics),
			)
			logger.Info("worker pool cache enabled", "ttl_seconds", cfg.CacheTTLSeconds)
		}
	}

	// Scoring weights, with optional calibration overrides
	weights := ranking.DefaultWeights()
	if cfg.CalibrationPath != "" {
		weights, err = ranking.LoadCalibration(cfg.CalibrationPath)
		if err != nil {
			logger.Error("failed to load scoring calibration", "path", cfg.CalibrationPath, "error", err)
			os.Exit(1)
		}
	}

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	matchingMetrics := matching.NewMetrics()
	if err := matchingMetrics.Register(registry); err != nil {
		logger.Error("failed to register matching metrics", "error", err)
		os.Exit(1)
	}
	if err := cacheMetrics.Register(registry); err != nil {
		logger.Error("failed to register cache metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register http metrics", "error", err)
		os.Exit(1)
	}

	// Ranking pipeline
	pipeline := matching.NewPipeline(missionSource, workerSource, matching.PipelineConfig{
		Weights:         weights,
		Logger:          logger,
		Metrics:         matchingMetrics,
		Concurrency:     cfg.ScoringConcurrency,
		DefaultRadiusKm: cfg.DefaultRadiusKm,
		DefaultLimit:    cfg.DefaultLimit,
	})

	requestTimeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	matchHandlers := api.NewMatchHandlers(pipeline, logger, requestTimeout)

	healthConfig := api.HealthHandlersConfig{
		DBChecker:      health.NewDBChecker(db),
		MetricsEnabled: true,
	}
	if redisClient != nil {
		healthConfig.RedisChecker = health.NewRedisChecker(redisClient)
	}
	healthHandlers := api.NewHealthHandlers(healthConfig)

	// Routes
	mux := http.NewServeMux()
	mux.HandleFunc("/missions/", matchHandlers.Candidates)
	mux.HandleFunc("/matches/score", matchHandlers.Score)
	mux.HandleFunc("/health", healthHandlers.Health)
	mux.HandleFunc("/ready", healthHandlers.Ready)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			ctx := middleware.SetErrorCode(r.Context(), api.ErrCodeNotFound)
			api.WriteError(w, ctx, http.StatusNotFound, api.ErrCodeNotFound, "The requested resource was not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"renfort-api","version":"0.1.0"}`)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	// Apply middleware: RequestID -> Logging -> HTTPMetrics -> Tracing
	var handler http.Handler = mux
	handler = middleware.Tracing(serviceName)(handler)
	handler = middleware.HTTPMetrics(httpMetrics)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
