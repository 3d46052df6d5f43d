package models

import (
	"time"
)

// ProcessingStatus represents the lifecycle state of an activity record.
type ProcessingStatus string

const (
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusComplete   ProcessingStatus = "complete"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

// Activity is the persisted record representing one real-world event or
// place a user saved from a shared social-media link. One row exists per
// canonical source URL; re-ingesting the same URL returns the existing row.
type Activity struct {
	ID        string `json:"id"`
	SourceURL string `json:"source_url"`

	Title      string   `json:"title"`
	Category   Category `json:"category"`
	Tags       []string `json:"tags"`
	Creator    *string  `json:"creator,omitempty"`
	ImageURL   *string  `json:"image_url,omitempty"`
	Confidence float64  `json:"confidence"`

	LocationName *string  `json:"location_name,omitempty"`
	Address      *string  `json:"address,omitempty"`
	City         *string  `json:"city,omitempty"`
	Country      *string  `json:"country,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`

	// AnalyzerLocations preserves the raw candidate locations from the
	// media analyzer so the client can offer disambiguation later.
	AnalyzerLocations []AnalyzerLocation `json:"analyzer_locations,omitempty"`

	Dates    []string `json:"dates"`
	MainDate *string  `json:"main_date,omitempty"`

	NeedsLocationConfirmation bool `json:"needs_location_confirmation"`
	NeedsDateConfirmation     bool `json:"needs_date_confirmation"`

	ProcessingStatus ProcessingStatus `json:"processing_status"`
	ProcessingStep   string           `json:"processing_step,omitempty"`
	ProcessingError  *string          `json:"processing_error,omitempty"`

	UserID *string `json:"user_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasLocation reports whether the activity carries any usable location
// signal (name, address, city, or coordinates).
func (a *Activity) HasLocation() bool {
	if a == nil {
		return false
	}
	if a.Latitude != nil && a.Longitude != nil {
		return true
	}
	return notEmpty(a.LocationName) || notEmpty(a.Address) || notEmpty(a.City)
}

// AnalyzerLocation is one raw location candidate reported by the media
// analyzer. All fields are optional.
type AnalyzerLocation struct {
	Name      *string  `json:"name,omitempty"`
	Address   *string  `json:"address,omitempty"`
	City      *string  `json:"city,omitempty"`
	Country   *string  `json:"country,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (l AnalyzerLocation) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// HasAnyField reports whether the candidate carries a name, address, or city.
func (l AnalyzerLocation) HasAnyField() bool {
	return notEmpty(l.Name) || notEmpty(l.Address) || notEmpty(l.City)
}

func notEmpty(s *string) bool {
	return s != nil && *s != ""
}
