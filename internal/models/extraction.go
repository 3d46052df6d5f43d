package models

import "time"

// Platform identifies the social-media source of a shared URL.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformGeneric   Platform = "generic"
)

// SourceMetadata is the platform scrape result for a shared URL. It is a
// fallback-fill source only: the merge engine consults it after the
// analyzer and the AI extractor. A failed scrape produces an all-nil value.
type SourceMetadata struct {
	Platform    Platform   `json:"platform"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty"`
	Author      *string    `json:"author,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// IsEmpty reports whether the scrape yielded no usable signal at all.
func (m SourceMetadata) IsEmpty() bool {
	return m.Title == nil && m.Description == nil && m.ImageURL == nil && m.Author == nil
}

// AnalyzerActivity is the sanitized, enriched output of the media-analyzer
// client. Every field may be nil; it is merged into an Activity and never
// stored directly.
type AnalyzerActivity struct {
	Title      *string  `json:"title,omitempty"`
	Category   *string  `json:"category,omitempty"` // raw value, normalized later
	Tags       []string `json:"tags,omitempty"`
	Creator    *string  `json:"creator,omitempty"`
	ImageURL   *string  `json:"image_url,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`

	LocationName *string  `json:"location_name,omitempty"`
	Address      *string  `json:"address,omitempty"`
	City         *string  `json:"city,omitempty"`
	Country      *string  `json:"country,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`

	Locations []AnalyzerLocation `json:"locations,omitempty"`
	Dates     []string           `json:"dates,omitempty"`
}

// HasLocation reports whether any usable location signal is present.
func (a *AnalyzerActivity) HasLocation() bool {
	if a == nil {
		return false
	}
	if a.Latitude != nil && a.Longitude != nil {
		return true
	}
	return notEmpty(a.LocationName) || notEmpty(a.Address) || notEmpty(a.City)
}

// HasCategory reports whether the analyzer produced a non-empty category.
func (a *AnalyzerActivity) HasCategory() bool {
	return a != nil && notEmpty(a.Category)
}

// ExtractedActivity is the structured output of the LLM activity extractor.
type ExtractedActivity struct {
	Title        *string  `json:"title,omitempty"`
	Category     *string  `json:"category,omitempty"`
	LocationName *string  `json:"location_name,omitempty"`
	Address      *string  `json:"address,omitempty"`
	City         *string  `json:"city,omitempty"`
	Country      *string  `json:"country,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Date         *string  `json:"date,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
}

// StringPtr returns a pointer to s, or nil when s is empty. Shared helper
// for the mapping and merge stages.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 {
	return &f
}
