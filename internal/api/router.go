package api

import (
	"context"
	"net/http"

	"log/slog"

	"github.com/freudibili/reeltodo/internal/auth"
	"github.com/freudibili/reeltodo/internal/metrics"
	"github.com/freudibili/reeltodo/internal/pipeline"
)

// SetupRoutes configures all API routes.
func SetupRoutes(mux *http.ServeMux, engine *pipeline.Engine, reader ActivityReader, authConfig auth.Config, collector *metrics.Collector, health func(context.Context) error, logger *slog.Logger) {
	handler := NewHandler(engine, reader, health, logger)
	authHandler := NewAuthHandler(authConfig, logger)

	optional := auth.OptionalAuth(authConfig)
	instrument := func(h http.HandlerFunc) http.Handler {
		if collector == nil {
			return h
		}
		return collector.InstrumentHandler(h)
	}

	// Ingestion endpoints accept anonymous submissions; a bearer token, when
	// present, overrides the userId in the body.
	mux.Handle("/analyze-post", optional(instrument(handler.AnalyzePostHandler)))
	mux.Handle("/process-activity", optional(instrument(handler.ProcessActivityHandler)))

	mux.Handle("/api/activities/", instrument(handler.GetActivityHandler))
	mux.Handle("/api/auth/token", instrument(authHandler.Token))

	mux.HandleFunc("/health", handler.HealthHandler)
	if collector != nil {
		mux.Handle("/metrics", collector.Handler())
	}
}
