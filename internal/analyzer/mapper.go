package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/freudibili/reeltodo/internal/dates"
	"github.com/freudibili/reeltodo/internal/geocode"
	"github.com/freudibili/reeltodo/internal/models"
)

// absentCategories are analyzer category values treated as "no category".
var absentCategories = map[string]bool{
	"":              true,
	"unknown":       true,
	"uncategorized": true,
	"other":         true,
}

// Mapped is the sanitized outcome of a media-analyzer response.
type Mapped struct {
	Activity    *models.AnalyzerActivity
	Description *string
}

// MapResponse sanitizes and enriches a raw analyzer response. Any failure
// degrades to a nil Activity; the pipeline then relies on source metadata
// and the AI extractor alone.
func MapResponse(ctx context.Context, resp *Response, sourceURL string, geocoder geocode.Geocoder, logger *slog.Logger) Mapped {
	if resp == nil {
		return Mapped{}
	}

	activity := &models.AnalyzerActivity{
		Title:      models.StringPtr(strings.TrimSpace(resp.Title)),
		Creator:    models.StringPtr(strings.TrimSpace(resp.Creator)),
		Tags:       cleanTags(resp.Tags),
		Dates:      cleanDates(resp.Dates),
		Confidence: resp.Confidence,
	}

	category := strings.ToLower(strings.TrimSpace(resp.Category))
	if !absentCategories[category] {
		activity.Category = models.StringPtr(category)
	}

	// Base64 data URLs are whole images, far too large to persist as a URL.
	thumb := strings.TrimSpace(resp.Thumbnail)
	if thumb != "" && !strings.HasPrefix(thumb, "data:") {
		activity.ImageURL = models.StringPtr(thumb)
	}

	locations := sanitizeLocations(resp.Locations)
	activity.Locations = locations

	primaryIdx := pickPrimaryLocation(locations)
	if primaryIdx >= 0 {
		applyPrimaryLocation(activity, locations[primaryIdx])
	}

	description := buildDescription(resp, locations, primaryIdx)

	enrichLocation(ctx, activity, sourceURL, description, geocoder, logger)

	// An analyzer reply whose every field was sanitized away carries no
	// signal; it must not count as content downstream.
	if !hasSignal(activity) {
		activity = nil
	}

	return Mapped{
		Activity:    activity,
		Description: models.StringPtr(description),
	}
}

func hasSignal(a *models.AnalyzerActivity) bool {
	return a.Title != nil || a.Creator != nil || a.Category != nil ||
		a.ImageURL != nil || len(a.Tags) > 0 || len(a.Dates) > 0 ||
		len(a.Locations) > 0 || a.HasLocation()
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// cleanDates keeps only values naming a real calendar date, converted to
// ISO form, deduplicated and sorted ascending. Analyzers report dates in
// arbitrary local formats; anything unparseable is dropped rather than
// persisted.
func cleanDates(raw []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(raw))
	for _, d := range raw {
		for _, iso := range dates.ExtractExplicit(d) {
			if !seen[iso] {
				seen[iso] = true
				out = append(out, iso)
			}
		}
	}
	sort.Strings(out)
	return out
}

func sanitizeLocations(raw []RawLocation) []models.AnalyzerLocation {
	out := make([]models.AnalyzerLocation, 0, len(raw))
	for _, loc := range raw {
		candidate := models.AnalyzerLocation{
			Name:    models.StringPtr(strings.TrimSpace(loc.Name)),
			Address: models.StringPtr(strings.TrimSpace(loc.Address)),
			City:    models.StringPtr(strings.TrimSpace(loc.City)),
			Country: models.StringPtr(strings.TrimSpace(loc.Country)),
		}
		if validCoordinates(loc.Latitude, loc.Longitude) {
			candidate.Latitude = loc.Latitude
			candidate.Longitude = loc.Longitude
		}
		if candidate.HasAnyField() || candidate.HasCoordinates() {
			out = append(out, candidate)
		}
	}
	return out
}

func validCoordinates(lat, lng *float64) bool {
	if lat == nil || lng == nil {
		return false
	}
	if *lat == 0 && *lng == 0 {
		return false
	}
	return *lat >= -90 && *lat <= 90 && *lng >= -180 && *lng <= 180
}

// pickPrimaryLocation prefers the first candidate with coordinates, then
// the first with any of name/address/city, then plain list order.
func pickPrimaryLocation(locations []models.AnalyzerLocation) int {
	if len(locations) == 0 {
		return -1
	}
	for i, loc := range locations {
		if loc.HasCoordinates() {
			return i
		}
	}
	for i, loc := range locations {
		if loc.HasAnyField() {
			return i
		}
	}
	return 0
}

func applyPrimaryLocation(activity *models.AnalyzerActivity, loc models.AnalyzerLocation) {
	activity.LocationName = loc.Name
	activity.Address = loc.Address
	activity.City = loc.City
	activity.Country = loc.Country
	activity.Latitude = loc.Latitude
	activity.Longitude = loc.Longitude
}

// buildDescription assembles the aggregate description: the raw analyzer
// description, the formatted key info, and a one-line summary of any
// secondary location candidates not chosen as primary.
func buildDescription(resp *Response, locations []models.AnalyzerLocation, primaryIdx int) string {
	var parts []string
	if d := strings.TrimSpace(resp.Description); d != "" {
		parts = append(parts, d)
	}

	var info []string
	if resp.KeyInfo.Price != "" {
		info = append(info, "Price: "+resp.KeyInfo.Price)
	}
	if resp.KeyInfo.Transport != "" {
		info = append(info, "Getting there: "+resp.KeyInfo.Transport)
	}
	if resp.KeyInfo.BestTime != "" {
		info = append(info, "Best time: "+resp.KeyInfo.BestTime)
	}
	if resp.KeyInfo.Duration != "" {
		info = append(info, "Duration: "+resp.KeyInfo.Duration)
	}
	if len(info) > 0 {
		parts = append(parts, strings.Join(info, " | "))
	}

	var others []string
	for i, loc := range locations {
		if i == primaryIdx {
			continue
		}
		if loc.Name != nil {
			label := *loc.Name
			if loc.City != nil {
				label = fmt.Sprintf("%s (%s)", label, *loc.City)
			}
			others = append(others, label)
		}
	}
	if len(others) > 0 {
		parts = append(parts, "Also mentioned: "+strings.Join(others, ", "))
	}

	return strings.Join(parts, "\n\n")
}

// enrichLocation fills address/city/country/coordinates through geocoding
// when the analyzer named a place but gave no address. It never overwrites
// analyzer-provided values.
func enrichLocation(ctx context.Context, activity *models.AnalyzerActivity, sourceURL, description string, geocoder geocode.Geocoder, logger *slog.Logger) {
	if geocoder == nil || activity.LocationName == nil || activity.Address != nil {
		return
	}

	searchContext, hints := geocode.DeriveContext(geocode.ContextInput{
		City:         deref(activity.City),
		Address:      deref(activity.Address),
		LocationName: deref(activity.LocationName),
		Tags:         activity.Tags,
		Description:  description,
		SourceURL:    sourceURL,
	})

	place := geocoder.Place(ctx, *activity.LocationName, searchContext, hints)
	if place == nil {
		logger.Debug("geocoding enrichment found nothing", "location", *activity.LocationName)
		return
	}

	if activity.Address == nil && place.Address != "" {
		activity.Address = models.StringPtr(place.Address)
	}
	if activity.City == nil && place.City != "" {
		activity.City = models.StringPtr(place.City)
	}
	if activity.Country == nil && place.Country != "" {
		activity.Country = models.StringPtr(place.Country)
	}
	if activity.Latitude == nil && activity.Longitude == nil {
		activity.Latitude = models.Float64Ptr(place.Latitude)
		activity.Longitude = models.Float64Ptr(place.Longitude)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
