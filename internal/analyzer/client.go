package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/freudibili/reeltodo/internal/config"
)

// Response is the raw payload returned by the media-analyzer service.
// Everything in it is untrusted until it passes through MapResponse.
type Response struct {
	Category    string        `json:"category"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Creator     string        `json:"creator"`
	Thumbnail   string        `json:"thumbnail"`
	Confidence  *float64      `json:"confidence"`
	Tags        []string      `json:"tags"`
	Locations   []RawLocation `json:"locations"`
	Dates       []string      `json:"dates"`
	KeyInfo     KeyInfo       `json:"key_info"`
}

// RawLocation is one location candidate as reported by the analyzer.
type RawLocation struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// KeyInfo carries the analyzer's structured practical details.
type KeyInfo struct {
	Price     string `json:"price"`
	Transport string `json:"transport"`
	BestTime  string `json:"best_time"`
	Duration  string `json:"duration"`
}

// Client calls the external media-analyzer microservice. Any failure
// (timeout, non-2xx, malformed body) yields nil; the pipeline continues
// with the remaining extractors.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

// NewClient creates an analyzer client bounded by the configured timeout.
func NewClient(cfg config.AnalyzerConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		logger:     logger,
	}
}

// Fetch submits a URL for analysis. Returns nil when the service is not
// configured, unreachable, slow, or returns anything but a 2xx JSON body.
func (c *Client) Fetch(ctx context.Context, url string) *Response {
	if c.baseURL == "" {
		return nil
	}

	body, err := json.Marshal(map[string]string{"url": url})
	if err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("media analyzer request failed", "url", url, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("media analyzer non-2xx", "url", url, "status", resp.StatusCode)
		return nil
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("media analyzer decode failed", "url", url, "error", err)
		return nil
	}

	c.logger.Info("media analyzer responded",
		"url", url,
		"duration_ms", time.Since(start).Milliseconds(),
		"locations", len(payload.Locations),
		"dates", len(payload.Dates))

	return &payload
}
