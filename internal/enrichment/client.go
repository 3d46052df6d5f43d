package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/freudibili/reeltodo/internal/config"
	"github.com/freudibili/reeltodo/internal/geocode"
	"github.com/freudibili/reeltodo/internal/models"
)

// Extractor is the LLM-backed activity extraction capability. It runs only
// when the AI gate decides the analyzer output is not trustworthy enough,
// and unlike the degrading stages its errors propagate to the caller.
type Extractor interface {
	AnalyzeActivity(ctx context.Context, in ExtractionInput) (*models.ExtractedActivity, error)
}

// Classifier is the AI category fallback: one method, one slug answer.
// Injected as an interface so tests substitute a fake without touching
// global state.
type Classifier interface {
	ClassifyCategory(ctx context.Context, in ClassifyInput) (models.Category, error)
}

// ClassifyInput carries the classification signals.
type ClassifyInput struct {
	Title        string
	Description  string
	Tags         []string
	LocationName string
}

// Client wraps the OpenAI API for every LLM-backed stage of the pipeline.
type Client struct {
	api      *openai.Client
	cfg      config.OpenAIConfig
	prompts  *PromptTemplates
	geocoder geocode.Geocoder
	logger   *slog.Logger
}

// NewClient creates the OpenAI-backed enrichment client.
func NewClient(cfg config.OpenAIConfig, geocoder geocode.Geocoder, logger *slog.Logger) *Client {
	return &Client{
		api:      openai.NewClient(cfg.APIKey),
		cfg:      cfg,
		prompts:  NewPromptTemplates(),
		geocoder: geocoder,
		logger:   logger,
	}
}

// complete issues a JSON-mode chat completion with the configured timeout.
func (c *Client) complete(ctx context.Context, model, systemPrompt string, userMessage openai.ChatCompletionMessage, maxTokens int) (string, error) {
	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	apiCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(apiCtx, openai.ChatCompletionRequest{
		Model:               model,
		Temperature:         c.cfg.Temperature,
		MaxCompletionTokens: maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			userMessage,
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai api call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned from model %s", model)
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug("openai completion",
		"model", model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	if content == "" {
		return "", fmt.Errorf("empty response from model %s (finish_reason: %s)", model, resp.Choices[0].FinishReason)
	}
	return content, nil
}
