package enrichment

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/freudibili/reeltodo/internal/models"
	"github.com/freudibili/reeltodo/internal/normalize"
)

// ClassifyCategory asks the model for a single category slug. The answer is
// re-normalized against the allowed vocabulary; an unmappable slug is an
// error, not a silent "other".
func (c *Client) ClassifyCategory(ctx context.Context, in ClassifyInput) (models.Category, error) {
	userMessage := openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: BuildClassificationUserPrompt(in),
	}

	content, err := c.complete(ctx, c.cfg.Model, c.prompts.ClassificationSystemPrompt, userMessage, 50)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return "", fmt.Errorf("parse classification response: %w", err)
	}

	cat, ok := normalize.Category(parsed.Category)
	if !ok {
		return "", fmt.Errorf("model returned unknown category %q", parsed.Category)
	}
	return cat, nil
}
