package enrichment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// maxMediaDownload bounds how much of a media URL is pulled for
// transcription. Whisper rejects uploads past 25MB anyway.
const maxMediaDownload = 24 << 20

// MediaSignals is the conditional transcript/caption extraction used only
// when the analyzer produced nothing and no thumbnail exists elsewhere.
type MediaSignals interface {
	Transcribe(ctx context.Context, mediaURL string) (string, error)
	CaptionImage(ctx context.Context, imageURL string) (string, error)
}

// Transcribe downloads the media behind the URL and runs it through the
// audio transcription API.
func (c *Client) Transcribe(ctx context.Context, mediaURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", err
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download media: status %d", resp.StatusCode)
	}

	transcription, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   io.LimitReader(resp.Body, maxMediaDownload),
		FilePath: "media.mp4",
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return transcription.Text, nil
}

// CaptionImage describes an image through a vision completion, giving the
// extractor at least one text signal for image-only posts.
func (c *Client) CaptionImage(ctx context.Context, imageURL string) (string, error) {
	userMessage := openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: "Describe this image in 2-3 sentences, naming any place, venue, dish, or event visible.",
			},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    imageURL,
					Detail: openai.ImageURLDetailLow,
				},
			},
		},
	}

	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	apiCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(apiCtx, openai.ChatCompletionRequest{
		Model:               c.cfg.Model,
		MaxCompletionTokens: 200,
		Messages:            []openai.ChatCompletionMessage{userMessage},
	})
	if err != nil {
		return "", fmt.Errorf("image caption failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from vision model")
	}
	return resp.Choices[0].Message.Content, nil
}
