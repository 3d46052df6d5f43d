package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/freudibili/reeltodo/internal/config"
)

// Notifier delivers a push notification to a device token. Implementations
// are fire-and-forget from the pipeline's perspective: failures are logged,
// never surfaced to the ingestion caller.
type Notifier interface {
	Notify(ctx context.Context, token, title, body string, data map[string]string) error
}

// Client posts notifications to an Expo-compatible push endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	logger     *slog.Logger
}

// NewClient creates a push client.
func NewClient(cfg config.PushConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   cfg.Endpoint,
		logger:     logger,
	}
}

type message struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Notify sends one notification. A missing token is a no-op, not an error.
func (c *Client) Notify(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return nil
	}

	payload, err := json.Marshal(message{To: token, Title: title, Body: body, Data: data})
	if err != nil {
		return fmt.Errorf("marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("push endpoint status %d", resp.StatusCode)
	}

	c.logger.Debug("push notification delivered", "title", title)
	return nil
}
