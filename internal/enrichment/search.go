package enrichment

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// SearchEventDate asks a web-search-capable model for the next occurrence
// of an event. The answer is either exactly one YYYY-MM-DD or the literal
// word null; anything else is returned raw and filtered by the caller.
func (c *Client) SearchEventDate(ctx context.Context, query string) (string, error) {
	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	apiCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Search-preview models reject temperature and response_format.
	resp, err := c.api.CreateChatCompletion(apiCtx, openai.ChatCompletionRequest{
		Model:               c.cfg.SearchModel,
		MaxCompletionTokens: 50,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.prompts.DateSearchSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Event: " + query},
		},
	})
	if err != nil {
		return "", fmt.Errorf("date web search failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from search model")
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if strings.EqualFold(answer, "null") {
		return "", nil
	}
	return answer, nil
}
