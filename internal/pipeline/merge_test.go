package pipeline

import (
	"reflect"
	"testing"

	"github.com/freudibili/reeltodo/internal/models"
)

func strPtr(s string) *string     { return &s }
func floatPtr(v float64) *float64 { return &v }

func TestMergeSourcesAnalyzerWins(t *testing.T) {
	analyzerAct := &models.AnalyzerActivity{
		Title: strPtr("Analyzer title"),
		City:  strPtr("Zurich"),
	}
	ai := &models.ExtractedActivity{
		Title:   strPtr("AI title"),
		City:    strPtr("Geneva"),
		Country: strPtr("Switzerland"),
	}

	m := mergeSources(analyzerAct, ai, models.SourceMetadata{})

	if *m.activity.Title != "Analyzer title" {
		t.Errorf("title = %q, want analyzer value", *m.activity.Title)
	}
	if *m.activity.City != "Zurich" {
		t.Errorf("city = %q, want analyzer value", *m.activity.City)
	}
	if m.activity.Country == nil || *m.activity.Country != "Switzerland" {
		t.Errorf("country = %v, want AI backfill", m.activity.Country)
	}
}

func TestMergeSourcesMetadataBackfills(t *testing.T) {
	meta := models.SourceMetadata{
		Title:    strPtr("OG title"),
		Author:   strPtr("@creator"),
		ImageURL: strPtr("https://cdn.example.com/t.jpg"),
	}

	m := mergeSources(nil, nil, meta)

	if m.activity.Title == nil || *m.activity.Title != "OG title" {
		t.Errorf("title = %v", m.activity.Title)
	}
	if m.activity.Creator == nil || *m.activity.Creator != "@creator" {
		t.Errorf("creator = %v", m.activity.Creator)
	}
	if m.activity.ImageURL == nil || *m.activity.ImageURL != "https://cdn.example.com/t.jpg" {
		t.Errorf("image = %v", m.activity.ImageURL)
	}
}

func TestMergeSourcesCoordinatesMoveAsPair(t *testing.T) {
	analyzerAct := &models.AnalyzerActivity{Latitude: floatPtr(47.0)}
	ai := &models.ExtractedActivity{Latitude: floatPtr(46.0), Longitude: floatPtr(7.0)}

	m := mergeSources(analyzerAct, ai, models.SourceMetadata{})

	// The analyzer reported half a coordinate pair; AI must not mix its
	// longitude with the analyzer's latitude.
	if m.activity.Latitude == nil || *m.activity.Latitude != 47.0 {
		t.Errorf("latitude = %v", m.activity.Latitude)
	}
	if m.activity.Longitude != nil {
		t.Errorf("longitude = %v, want nil", m.activity.Longitude)
	}
}

func TestMergeSourcesDates(t *testing.T) {
	analyzerAct := &models.AnalyzerActivity{
		Dates: []string{"2026-07-02", "2026-07-01", "2026-07-02"},
	}
	ai := &models.ExtractedActivity{Date: strPtr("2026-09-01")}

	m := mergeSources(analyzerAct, ai, models.SourceMetadata{})

	want := []string{"2026-07-01", "2026-07-02"}
	if !reflect.DeepEqual(m.activity.Dates, want) {
		t.Errorf("dates = %v, want analyzer dates sorted and deduplicated", m.activity.Dates)
	}
}

func TestMergeSourcesAIDateWhenAnalyzerHasNone(t *testing.T) {
	ai := &models.ExtractedActivity{Date: strPtr("2026-09-01")}

	m := mergeSources(nil, ai, models.SourceMetadata{})

	if !reflect.DeepEqual(m.activity.Dates, []string{"2026-09-01"}) {
		t.Errorf("dates = %v", m.activity.Dates)
	}
}

func TestMergeSourcesValidatesDates(t *testing.T) {
	analyzerAct := &models.AnalyzerActivity{
		Dates: []string{"12.09.2026", "2026-09-12", "next weekend"},
	}

	m := mergeSources(analyzerAct, nil, models.SourceMetadata{})

	want := []string{"2026-09-12"}
	if !reflect.DeepEqual(m.activity.Dates, want) {
		t.Errorf("dates = %v, want local formats converted and junk dropped", m.activity.Dates)
	}
}

func TestMergeSourcesDropsUnparseableAIDate(t *testing.T) {
	ai := &models.ExtractedActivity{Date: strPtr("early summer")}

	m := mergeSources(nil, ai, models.SourceMetadata{})

	if len(m.activity.Dates) != 0 {
		t.Errorf("dates = %v, want none", m.activity.Dates)
	}
}

func TestResolveConfidence(t *testing.T) {
	tests := []struct {
		name string
		m    merged
		want float64
	}{
		{
			name: "max of both",
			m: merged{
				activity:     models.AnalyzerActivity{Confidence: floatPtr(0.6)},
				aiConfidence: floatPtr(0.8),
			},
			want: 0.8,
		},
		{
			name: "analyzer only",
			m:    merged{activity: models.AnalyzerActivity{Confidence: floatPtr(0.7)}},
			want: 0.7,
		},
		{
			name: "neither reported defaults high",
			m:    merged{},
			want: defaultConfidence,
		},
		{
			name: "explicit zero is respected",
			m:    merged{aiConfidence: floatPtr(0.0)},
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveConfidence(tt.m); got != tt.want {
				t.Errorf("resolveConfidence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name string
		m    merged
		want string
	}{
		{
			name: "title cleaned",
			m:    merged{activity: models.AnalyzerActivity{Title: strPtr("Sunset hike 🌄 #alps")}},
			want: "Sunset hike",
		},
		{
			name: "location name fallback",
			m:    merged{activity: models.AnalyzerActivity{LocationName: strPtr("Grossmünster")}},
			want: "Grossmünster",
		},
		{
			name: "generic fallback",
			m:    merged{},
			want: "Saved activity",
		},
		{
			name: "emoji-only title falls through",
			m: merged{activity: models.AnalyzerActivity{
				Title:        strPtr("🔥🔥 #wow"),
				LocationName: strPtr("Bern"),
			}},
			want: "Bern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveTitle(tt.m); got != tt.want {
				t.Errorf("deriveTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfirmationFlags(t *testing.T) {
	tests := []struct {
		name         string
		activity     models.Activity
		wantLocation bool
		wantDate     bool
	}{
		{
			name: "confident with location",
			activity: models.Activity{
				Category:   models.CategoryFoodCafe,
				City:       strPtr("Zurich"),
				Confidence: 0.9,
			},
			wantLocation: false,
			wantDate:     false,
		},
		{
			name: "no location",
			activity: models.Activity{
				Category:   models.CategoryFoodCafe,
				Confidence: 0.9,
			},
			wantLocation: true,
		},
		{
			name: "low confidence flags location even when present",
			activity: models.Activity{
				Category:   models.CategoryFoodCafe,
				City:       strPtr("Zurich"),
				Confidence: 0.6,
			},
			wantLocation: true,
		},
		{
			name: "event without dates needs date confirmation",
			activity: models.Activity{
				Category:   models.CategoryEventConcert,
				City:       strPtr("Zurich"),
				Confidence: 0.9,
			},
			wantDate: true,
		},
		{
			name: "event with dates does not",
			activity: models.Activity{
				Category:   models.CategoryEventConcert,
				City:       strPtr("Zurich"),
				Confidence: 0.9,
				Dates:      []string{"2026-09-12"},
			},
			wantDate: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.activity
			confirmationFlags(&a)
			if a.NeedsLocationConfirmation != tt.wantLocation {
				t.Errorf("NeedsLocationConfirmation = %v, want %v", a.NeedsLocationConfirmation, tt.wantLocation)
			}
			if a.NeedsDateConfirmation != tt.wantDate {
				t.Errorf("NeedsDateConfirmation = %v, want %v", a.NeedsDateConfirmation, tt.wantDate)
			}
		})
	}
}
