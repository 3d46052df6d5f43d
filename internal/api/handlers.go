package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/freudibili/reeltodo/internal/auth"
	"github.com/freudibili/reeltodo/internal/models"
	"github.com/freudibili/reeltodo/internal/pipeline"
)

// ActivityReader is the read surface handlers need for lookups.
type ActivityReader interface {
	GetByID(ctx context.Context, id string) (*models.Activity, error)
}

// Handler serves the ingestion endpoints.
type Handler struct {
	engine    *pipeline.Engine
	reader    ActivityReader
	health    func(context.Context) error
	logger    *slog.Logger
	startTime time.Time
}

// NewHandler creates the ingestion handler. health may be nil, in which
// case /health reports liveness only.
func NewHandler(engine *pipeline.Engine, reader ActivityReader, health func(context.Context) error, logger *slog.Logger) *Handler {
	return &Handler{
		engine:    engine,
		reader:    reader,
		health:    health,
		logger:    logger,
		startTime: time.Now(),
	}
}

// AnalyzePostHandler handles POST /analyze-post
func (h *Handler) AnalyzePostHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", h.logger)
		return
	}

	var req AnalyzePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_URL", h.logger)
		return
	}

	activity, err := h.engine.AnalyzePost(r.Context(), pipeline.AnalyzeRequest{
		URL:    req.URL,
		UserID: h.resolveUserID(r, req.UserID),
		Hints:  req.Metadata.toHints(),
	})
	if err != nil {
		h.writePipelineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, activity, h.logger)
}

// ProcessActivityHandler handles POST /process-activity
func (h *Handler) ProcessActivityHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", h.logger)
		return
	}

	var req ProcessActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ActivityID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", h.logger)
		return
	}

	result, err := h.engine.ProcessActivity(r.Context(), pipeline.ProcessRequest{
		ActivityID: req.ActivityID,
		URL:        req.URL,
		UserID:     h.resolveUserID(r, req.UserID),
		Hints:      req.Metadata.toHints(),
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrActivityNotFound) {
			writeError(w, http.StatusNotFound, pipeline.ErrActivityNotFound.Code, h.logger)
			return
		}
		h.logger.Error("process-activity failed", "activity_id", req.ActivityID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", h.logger)
		return
	}

	// Extraction failures still answer 200: the caller learns the row's fate
	// rather than retrying a URL that will never yield an activity.
	if result.Activity == nil {
		writeJSON(w, http.StatusOK, ProcessActivityFailure{
			ID:      req.ActivityID,
			Deleted: result.Deleted,
			Error:   result.Err,
		}, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result.Activity, h.logger)
}

// GetActivityHandler handles GET /api/activities/:id
func (h *Handler) GetActivityHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", h.logger)
		return
	}

	parts := strings.Split(strings.TrimSuffix(r.URL.Path, "/"), "/")
	id := parts[len(parts)-1]
	if id == "" || id == "activities" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", h.logger)
		return
	}

	activity, err := h.reader.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load activity", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", h.logger)
		return
	}
	if activity == nil {
		writeError(w, http.StatusNotFound, "ACTIVITY_NOT_FOUND", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, activity, h.logger)
}

// HealthHandler handles GET /health
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", h.logger)
		return
	}

	status := "ok"
	code := http.StatusOK
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.logger.Error("health check failed", "error", err)
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, map[string]any{
		"status": status,
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	}, h.logger)
}

// resolveUserID prefers the authenticated identity over the body field so a
// client cannot attach activities to someone else while holding a token.
func (h *Handler) resolveUserID(r *http.Request, bodyUserID string) string {
	if userID, ok := auth.GetUserIDFromContext(r.Context()); ok {
		return userID
	}
	return bodyUserID
}

func (h *Handler) writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	var rejection *pipeline.RejectionError
	if errors.As(err, &rejection) {
		writeError(w, http.StatusBadRequest, rejection.Code, h.logger)
		return
	}

	h.logger.Error("analyze-post failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", h.logger)
}
