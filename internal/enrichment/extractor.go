package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/freudibili/reeltodo/internal/geocode"
	"github.com/freudibili/reeltodo/internal/models"
	"github.com/freudibili/reeltodo/internal/normalize"
)

// defaultExtractionConfidence applies when the model omits a confidence.
const defaultExtractionConfidence = 0.8

// ExtractionInput carries the text and image signals available for LLM
// extraction.
type ExtractionInput struct {
	Title       string
	Description string
	ImageURL    string
	Author      string
	SourceURL   string
}

// rawExtraction mirrors the JSON shape the extraction prompt demands.
type rawExtraction struct {
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	LocationName string   `json:"location_name"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	Country      string   `json:"country"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Date         *string  `json:"date"`
	Tags         []string `json:"tags"`
	Confidence   *float64 `json:"confidence"`
}

// AnalyzeActivity prompts the model to extract structured activity fields
// from the available signals. The category is constrained to the allowed
// vocabulary via the prompt and re-normalized afterwards; the model's raw
// output is never trusted unchecked.
func (c *Client) AnalyzeActivity(ctx context.Context, in ExtractionInput) (*models.ExtractedActivity, error) {
	userMessage := buildExtractionMessage(in)

	content, err := c.complete(ctx, c.cfg.Model, c.prompts.ExtractionSystemPrompt, userMessage, c.cfg.MaxTokens)
	if err != nil {
		return nil, err
	}

	var raw rawExtraction
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}

	out := &models.ExtractedActivity{
		Tags: raw.Tags,
	}

	if title := normalize.Title(raw.Title); title != "" {
		out.Title = models.StringPtr(title)
	}
	if cat, ok := normalize.Category(raw.Category); ok {
		out.Category = models.StringPtr(string(cat))
	}
	if raw.Date != nil && *raw.Date != "" && strings.ToLower(*raw.Date) != "null" {
		out.Date = models.StringPtr(*raw.Date)
	}

	if raw.Confidence != nil {
		out.Confidence = raw.Confidence
	} else {
		out.Confidence = models.Float64Ptr(defaultExtractionConfidence)
	}

	c.resolveExtractedLocation(ctx, out, raw, in)

	return out, nil
}

// buildExtractionMessage attaches the post image as vision input when one
// is available.
func buildExtractionMessage(in ExtractionInput) openai.ChatCompletionMessage {
	prompt := BuildExtractionUserPrompt(in)
	if in.ImageURL == "" {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt}
	}
	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: prompt},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    in.ImageURL,
					Detail: openai.ImageURLDetailLow,
				},
			},
		},
	}
}

// resolveExtractedLocation geocodes whatever location phrase the model
// produced, falling back to the model's own raw fields, then a last-resort
// country guess from the post text.
func (c *Client) resolveExtractedLocation(ctx context.Context, out *models.ExtractedActivity, raw rawExtraction, in ExtractionInput) {
	phrase := raw.LocationName
	if phrase == "" {
		phrase = raw.Address
	}
	if phrase == "" {
		phrase = raw.Title
	}

	if phrase != "" && c.geocoder != nil {
		searchContext, hints := geocode.DeriveContext(geocode.ContextInput{
			City:         raw.City,
			Address:      raw.Address,
			LocationName: raw.LocationName,
			Description:  in.Description,
			SourceURL:    in.SourceURL,
		})
		if place := c.geocoder.Place(ctx, phrase, searchContext, hints); place != nil {
			out.LocationName = models.StringPtr(place.LocationName)
			out.Address = models.StringPtr(place.Address)
			out.City = models.StringPtr(place.City)
			out.Country = models.StringPtr(place.Country)
			out.Latitude = models.Float64Ptr(place.Latitude)
			out.Longitude = models.Float64Ptr(place.Longitude)
			return
		}
	}

	// Geocoding missed: fall back to the model's raw fields.
	out.LocationName = models.StringPtr(raw.LocationName)
	out.Address = models.StringPtr(raw.Address)
	out.City = models.StringPtr(raw.City)
	out.Country = models.StringPtr(raw.Country)
	if raw.Latitude != nil && raw.Longitude != nil {
		out.Latitude = raw.Latitude
		out.Longitude = raw.Longitude
	}

	if out.Country == nil {
		if country := geocode.LookupCountry(in.Title + " " + in.Description); country != "" {
			out.Country = models.StringPtr(country)
		}
	}
}
