package api

import (
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/freudibili/reeltodo/internal/auth"
)

// AuthHandler issues service tokens.
type AuthHandler struct {
	config auth.Config
	logger *slog.Logger
}

// NewAuthHandler creates a new authentication handler.
func NewAuthHandler(config auth.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		config: config,
		logger: logger,
	}
}

// TokenRequest represents a token request.
type TokenRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

// TokenResponse represents an issued token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Token handles POST /api/auth/token
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", h.logger)
		return
	}

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", h.logger)
		return
	}

	if req.Password != h.config.APIPassword {
		h.logger.Warn("failed token request", "ip", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", h.logger)
		return
	}

	token, err := auth.GenerateToken(req.UserID, h.config.JWTSecret, h.config.TokenDuration)
	if err != nil {
		h.logger.Error("failed to generate token", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.config.TokenDuration),
	}, h.logger)
}
