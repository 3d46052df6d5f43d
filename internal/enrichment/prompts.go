package enrichment

import (
	"fmt"
	"strings"

	"github.com/freudibili/reeltodo/internal/models"
)

// PromptTemplates holds the system and user prompt templates for the
// LLM-backed stages.
type PromptTemplates struct {
	ExtractionSystemPrompt     string
	ClassificationSystemPrompt string
	DateSearchSystemPrompt     string
}

// NewPromptTemplates creates the default prompts.
func NewPromptTemplates() *PromptTemplates {
	return &PromptTemplates{
		ExtractionSystemPrompt:     buildExtractionSystemPrompt(),
		ClassificationSystemPrompt: buildClassificationSystemPrompt(),
		DateSearchSystemPrompt:     buildDateSearchSystemPrompt(),
	}
}

func categorySlugList() string {
	cats := models.AllCategories()
	slugs := make([]string, len(cats))
	for i, c := range cats {
		slugs[i] = string(c)
	}
	return strings.Join(slugs, ", ")
}

func buildExtractionSystemPrompt() string {
	return fmt.Sprintf(`CRITICAL: You MUST output ONLY valid JSON. No text before or after the JSON object, no markdown fences.

You extract a single saveable "activity" (a place to visit, a restaurant, an event, a hike) from social-media post metadata.

Output Format: respond with ONLY this JSON structure:
{
  "title": "Short human-readable activity title (max 80 chars)",
  "category": "one of the allowed category slugs",
  "location_name": "Name of the place or venue, if identifiable",
  "address": "Street address if stated",
  "city": "City name if identifiable",
  "country": "Country name if identifiable",
  "latitude": 0.0,
  "longitude": 0.0,
  "date": "YYYY-MM-DD if the post refers to a dated event, else null",
  "tags": ["tag1", "tag2"],
  "confidence": 0.0
}

CRITICAL CATEGORY RULE: "category" MUST be exactly one of: %s
Never invent a category. If nothing fits, use "other".

Rules:
- Extract what the post SAYS; do not guess places from your training data alone.
- Omit fields you cannot support with the given text or image (use null).
- "confidence" is 0.0-1.0 for how certain you are the extraction describes a real, specific activity.
- Titles must not contain emoji or hashtags.`, categorySlugList())
}

func buildClassificationSystemPrompt() string {
	return fmt.Sprintf(`You classify a saved activity into exactly one category slug.

Respond with ONLY this JSON: {"category": "<slug>"}

The slug MUST be one of: %s

Mapping guidance (keep consistent):
- hiking, trails, summits -> outdoor-hike
- waterfalls, gorges, forests, nature reserves -> outdoor-nature
- city parks, botanical gardens -> outdoor-park
- lakes, beaches, swimming, kayaking -> outdoor-water
- concerts and gigs -> event-concert; festivals -> event-festival; markets -> event-market
- restaurants and dinners -> food-restaurant; cafes and brunch -> food-cafe; bars and cocktails -> food-bar
- museums and galleries -> culture-museum; castles, landmarks, viewpoints -> culture-sight
- climbing, skiing, surfing, running -> sport
- spas, saunas, yoga -> wellness
- stores and boutiques -> shopping
- hotels, road trips, itineraries -> travel
- anything else -> other`, categorySlugList())
}

func buildDateSearchSystemPrompt() string {
	return `You find the next date of a real-world event using web search.

Respond with EXACTLY one of:
- a single date in YYYY-MM-DD format (the next occurrence of the event), or
- the word null

No other text.`
}

// BuildExtractionUserPrompt renders the available post signals into the
// extraction user message.
func BuildExtractionUserPrompt(in ExtractionInput) string {
	var b strings.Builder
	b.WriteString("Extract the activity from this social-media post.\n\n")
	if in.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", in.Title)
	}
	if in.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", truncate(in.Description, 3000))
	}
	if in.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n", in.Author)
	}
	if in.SourceURL != "" {
		fmt.Fprintf(&b, "Source URL: %s\n", in.SourceURL)
	}
	return b.String()
}

// BuildClassificationUserPrompt renders the classification signals.
func BuildClassificationUserPrompt(in ClassifyInput) string {
	var b strings.Builder
	if in.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", in.Title)
	}
	if in.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", truncate(in.Description, 1500))
	}
	if len(in.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(in.Tags, ", "))
	}
	if in.LocationName != "" {
		fmt.Fprintf(&b, "Location: %s\n", in.LocationName)
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
