package pipeline

import (
	"sort"

	"github.com/freudibili/reeltodo/internal/dates"
	"github.com/freudibili/reeltodo/internal/models"
	"github.com/freudibili/reeltodo/internal/normalize"
)

// Quality floors for the finalize stage.
const (
	minConfidence     = 0.5
	locationThreshold = 0.7

	// defaultConfidence applies when neither the analyzer nor the AI
	// reported one.
	defaultConfidence = 0.9
)

// merged is the fused working shape the finalize stage operates on before
// the record becomes a persisted Activity.
type merged struct {
	activity     models.AnalyzerActivity
	aiCategory   *string
	aiConfidence *float64
}

// mergeSources fuses the analyzer output (primary), the AI extraction
// (backfills nil fields only), and the source metadata (backfills
// title/creator/image only). Tags use analyzer tags when non-empty, else
// AI tags.
func mergeSources(analyzerAct *models.AnalyzerActivity, ai *models.ExtractedActivity, meta models.SourceMetadata) merged {
	var m merged
	if analyzerAct != nil {
		m.activity = *analyzerAct
	}
	a := &m.activity

	if ai != nil {
		m.aiCategory = ai.Category
		m.aiConfidence = ai.Confidence

		a.Title = mergeIfNil(a.Title, ai.Title)
		a.LocationName = mergeIfNil(a.LocationName, ai.LocationName)
		a.Address = mergeIfNil(a.Address, ai.Address)
		a.City = mergeIfNil(a.City, ai.City)
		a.Country = mergeIfNil(a.Country, ai.Country)
		if a.Latitude == nil && a.Longitude == nil {
			a.Latitude = ai.Latitude
			a.Longitude = ai.Longitude
		}
		if len(a.Tags) == 0 {
			a.Tags = ai.Tags
		}
		if len(a.Dates) == 0 && ai.Date != nil {
			a.Dates = []string{*ai.Date}
		}
	}

	a.Title = mergeIfNil(a.Title, meta.Title)
	a.Creator = mergeIfNil(a.Creator, meta.Author)
	a.ImageURL = mergeIfNil(a.ImageURL, meta.ImageURL)

	normalizeDates(a)
	return m
}

func mergeIfNil(current, fallback *string) *string {
	if current != nil && *current != "" {
		return current
	}
	if fallback != nil && *fallback == "" {
		return nil
	}
	return fallback
}

// normalizeDates converts the date list to validated ISO form, deduplicated
// and sorted ascending, so the invariant holds regardless of which extractor
// supplied them. Values that do not name a real calendar date are dropped.
func normalizeDates(a *models.AnalyzerActivity) {
	if len(a.Dates) == 0 {
		return
	}
	seen := make(map[string]bool, len(a.Dates))
	out := a.Dates[:0]
	for _, d := range a.Dates {
		iso := dates.NormalizeISO(d)
		if iso != "" && !seen[iso] {
			seen[iso] = true
			out = append(out, iso)
		}
	}
	sort.Strings(out)
	a.Dates = out
}

// resolveConfidence derives the final confidence: the max of the analyzer
// and AI scores, defaulting when neither reported one.
func resolveConfidence(m merged) float64 {
	conf := -1.0
	if m.activity.Confidence != nil {
		conf = *m.activity.Confidence
	}
	if m.aiConfidence != nil && *m.aiConfidence > conf {
		conf = *m.aiConfidence
	}
	if conf < 0 {
		return defaultConfidence
	}
	return conf
}

// deriveTitle picks the human-readable title: the merged title, else the
// location name, else a generic label so the record is never nameless.
func deriveTitle(m merged) string {
	if m.activity.Title != nil {
		if t := normalize.Title(*m.activity.Title); t != "" {
			return t
		}
	}
	if m.activity.LocationName != nil && *m.activity.LocationName != "" {
		return *m.activity.LocationName
	}
	return "Saved activity"
}

// confirmationFlags computes the confirmation booleans from completeness
// and confidence.
func confirmationFlags(a *models.Activity) {
	a.NeedsLocationConfirmation = !a.HasLocation() || a.Confidence < locationThreshold
	a.NeedsDateConfirmation = a.Category.RequiresDate() && len(a.Dates) == 0
}
