// Package main provides the entry point for the edge API server.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/tipster-edge/internal/api"
	"github.com/yourusername/tipster-edge/internal/cache"
	"github.com/yourusername/tipster-edge/internal/config"
	"github.com/yourusername/tipster-edge/internal/database"
	"github.com/yourusername/tipster-edge/internal/edge"
	"github.com/yourusername/tipster-edge/internal/health"
	"github.com/yourusername/tipster-edge/internal/logger"
	"github.com/yourusername/tipster-edge/internal/metrics"
	"github.com/yourusername/tipster-edge/internal/repository"
	"github.com/yourusername/tipster-edge/internal/scheduler"
	"github.com/yourusername/tipster-edge/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

const serviceName = "edge-api"

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	migrate := flag.Bool("migrate", false, "Create tables and indexes before serving")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName)
		cancel()
		if err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
		if err := config.Validate(cfg); err != nil {
			log.Fatalf("Invalid configuration after applying secrets: %v", err)
		}
	}

	if err := config.ValidateEnvironment(cfg); err != nil {
		log.Fatalf("Environment check failed: %v", err)
	}

	// Set up logging
	appLog := logger.New(cfg.App.LogLevel, cfg.App.Environment, os.Stdout)
	audit := logger.NewAuditLogger(appLog)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("Tipster Edge API starting")

	metrics.InitRegistry()

	// Initialize database connection
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.Initialize(ctx, cfg, *migrate)
	cancel()
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()
	appLog.Info("Database connection established")

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	calc := edge.NewCalculator(
		edge.WithMaxStakeFraction(cfg.Engine.MaxStakeFraction),
		edge.WithStrictOdds(cfg.Engine.StrictOdds),
	)
	edgeService := service.NewEdgeService(
		repos.Prediction,
		repos.Parlay,
		calc,
		cache.NewSuggestionCache(cfg.ParlayCacheTTL()),
		service.Options{
			Lookback:     time.Duration(cfg.Parlays.LookbackHours) * time.Hour,
			ScanLimit:    cfg.Server.MaxListLimit * 10,
			PoolLimit:    cfg.Parlays.PoolLimit,
			BatchWorkers: cfg.Engine.BatchWorkers,
		},
		appLog,
	)

	// Warm the suggestion cache, then keep it fresh on schedule
	sched := scheduler.NewScheduler(edgeService, appLog)
	warmCtx, warmCancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	if err := sched.RunNow(warmCtx); err != nil {
		appLog.WithError(err).Warn("Initial parlay suggestion refresh failed; serving on demand")
	}
	warmCancel()
	if err := sched.ScheduleSuggestionRefresh(cfg.Parlays.RefreshSchedule); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule suggestion refresh")
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: serviceName,
		Version:     Version,
		Commit:      GitCommit,
		Logger:      appLog,
		DB:          db,
	})

	handler := api.NewHandler(edgeService, api.Limits{
		DefaultList: cfg.Server.DefaultListLimit,
		MaxList:     cfg.Server.MaxListLimit,
		MaxBatch:    cfg.Engine.MaxBatchSize,
	}, appLog)
	router := api.NewRouter(handler, healthServer, api.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout(),
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
	}, appLog)
	server := api.NewHTTPServer(cfg.ServerAddr(), router, cfg.RequestTimeout())

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	healthServer.SetReady(true)
	audit.LogServiceStart(serviceName, cfg.App.Environment, cfg.Engine.MaxStakeFraction, cfg.Engine.StrictOdds)
	appLog.WithField("addr", cfg.ServerAddr()).Info("API server listening")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	reason := "signal"
	select {
	case sig := <-sigChan:
		appLog.WithField("signal", sig).Info("Shutdown signal received")
	case err := <-serverErr:
		reason = "server_error"
		appLog.WithError(err).Error("API server failed")
	}

	// Graceful shutdown
	healthServer.SetReady(false)
	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Warn("Scheduler did not stop cleanly")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("API server shutdown failed")
	}

	audit.LogServiceStop(serviceName, reason)
	appLog.Info("Tipster Edge API stopped")
}
