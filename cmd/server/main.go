package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"log/slog"

	"github.com/freudibili/reeltodo/internal/analyzer"
	"github.com/freudibili/reeltodo/internal/api"
	"github.com/freudibili/reeltodo/internal/auth"
	"github.com/freudibili/reeltodo/internal/config"
	"github.com/freudibili/reeltodo/internal/database"
	"github.com/freudibili/reeltodo/internal/dates"
	"github.com/freudibili/reeltodo/internal/enrichment"
	"github.com/freudibili/reeltodo/internal/geocode"
	"github.com/freudibili/reeltodo/internal/logging"
	"github.com/freudibili/reeltodo/internal/metrics"
	"github.com/freudibili/reeltodo/internal/pipeline"
	"github.com/freudibili/reeltodo/internal/push"
	"github.com/freudibili/reeltodo/internal/server"
	"github.com/freudibili/reeltodo/internal/source"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting reeltodo")

	ctx := context.Background()

	logger.Info("connecting to database")
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database connected")

	// Run pending migrations (non-fatal to allow app to start even if migrations fail)
	if err := database.RunMigrations(db, "./migrations", logger); err != nil {
		logger.Warn("failed to run migrations, continuing anyway", "error", err)
	}

	activityRepo := database.NewActivityRepository(db)
	metadataRepo := database.NewAnalyzerMetadataRepository(db)
	profileRepo := database.NewProfileRepository(db)

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	geocoder := geocode.NewClient(cfg.Places, logger)
	enricher := enrichment.NewClient(cfg.OpenAI, geocoder, logger)
	analyzerClient := analyzer.NewClient(cfg.Analyzer, logger)
	fetcher := source.NewFetcher(cfg.YouTube, logger)
	resolver := dates.NewResolver(enricher, logger)
	notifier := push.NewClient(cfg.Push, logger)

	engine := pipeline.NewEngine(pipeline.Deps{
		Fetcher:    fetcher,
		Analyzer:   analyzerClient,
		Geocoder:   geocoder,
		Extractor:  enricher,
		Classifier: enricher,
		Media:      enricher,
		Dates:      resolver,
		Store:      activityRepo,
		Audit:      metadataRepo,
		Tokens:     profileRepo,
		Notifier:   notifier,
		Metrics:    collector,
		Logger:     logger,
	})

	authConfig := auth.LoadConfigFromEnv()

	mux := http.NewServeMux()
	healthCheck := func(ctx context.Context) error {
		return database.HealthCheck(ctx, db)
	}
	api.SetupRoutes(mux, engine, activityRepo, authConfig, collector, healthCheck, logger)

	srv := server.New(cfg.Server, logger, mux)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("reeltodo started successfully")
	logger.Info("API available", "url", fmt.Sprintf("http://localhost:%s", cfg.Server.Port))

	waitForSignal(logger)

	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
