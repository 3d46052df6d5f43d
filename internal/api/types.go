package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/freudibili/reeltodo/internal/source"
)

// MetadataHints carries metadata the client already holds from its share
// sheet. Hints take precedence over scraped values.
type MetadataHints struct {
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	AuthorName   string `json:"authorName,omitempty"`
}

// AnalyzePostRequest is the body of POST /analyze-post.
type AnalyzePostRequest struct {
	URL      string         `json:"url"`
	UserID   string         `json:"userId,omitempty"`
	Metadata *MetadataHints `json:"metadata,omitempty"`
}

// ProcessActivityRequest is the body of POST /process-activity.
type ProcessActivityRequest struct {
	ActivityID string         `json:"activityId"`
	URL        string         `json:"url,omitempty"`
	UserID     string         `json:"userId,omitempty"`
	Metadata   *MetadataHints `json:"metadata,omitempty"`
}

func (m *MetadataHints) toHints() source.Hints {
	if m == nil {
		return source.Hints{}
	}
	return source.Hints{
		Title:        m.Title,
		Description:  m.Description,
		ThumbnailURL: m.ThumbnailURL,
		AuthorName:   m.AuthorName,
	}
}

// ProcessActivityFailure is returned with 200 when background processing
// could not produce an activity. The placeholder row is gone (or marked
// failed) by the time the client sees this.
type ProcessActivityFailure struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
	Error   string `json:"error"`
}

// ErrorResponse is the envelope for every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code string, logger *slog.Logger) {
	writeJSON(w, status, ErrorResponse{Error: code}, logger)
}
