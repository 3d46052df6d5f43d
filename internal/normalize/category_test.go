package normalize

import (
	"testing"

	"github.com/freudibili/reeltodo/internal/models"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  models.Category
		found bool
	}{
		{"exact slug", "outdoor-hike", models.CategoryOutdoorHike, true},
		{"case and punctuation", "Hiking!", models.CategoryOutdoorHike, true},
		{"hashtag alias", "#restaurant", models.CategoryFoodRestaurant, true},
		{"german alias", "Weihnachtsmarkt", models.CategoryEventMarket, true},
		{"alias with spaces", "  live music  ", models.CategoryEventConcert, true},
		{"unmappable", "quantum physics", "", false},
		{"empty", "", "", false},
		{"punctuation only", "!!!", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Category(tt.raw)
			if found != tt.found || got != tt.want {
				t.Errorf("Category(%q) = (%q, %v), want (%q, %v)", tt.raw, got, found, tt.want, tt.found)
			}
		})
	}
}

func TestCategoryAcceptsEveryEnumValue(t *testing.T) {
	for _, c := range models.AllCategories() {
		got, found := Category(string(c))
		if !found || got != c {
			t.Errorf("Category(%q) = (%q, %v), want identity", c, got, found)
		}
	}
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name  string
		in    InferenceInput
		want  models.Category
		found bool
	}{
		{
			name:  "hike beats park when both appear",
			in:    InferenceInput{Description: "hiking through the national park"},
			want:  models.CategoryOutdoorHike,
			found: true,
		},
		{
			name:  "tags alone are enough",
			in:    InferenceInput{Tags: []string{"brunch", "zurich"}},
			want:  models.CategoryFoodCafe,
			found: true,
		},
		{
			name:  "location name signal",
			in:    InferenceInput{LocationName: "Kunsthaus gallery"},
			want:  models.CategoryCultureMuseum,
			found: true,
		},
		{
			name:  "no match falls back to other",
			in:    InferenceInput{Title: "thoughts on productivity"},
			want:  models.CategoryOther,
			found: true,
		},
		{
			name:  "no input at all",
			in:    InferenceInput{},
			want:  "",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := InferCategory(tt.in)
			if found != tt.found || got != tt.want {
				t.Errorf("InferCategory(%+v) = (%q, %v), want (%q, %v)", tt.in, got, found, tt.want, tt.found)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Best hike in Ticino 🏔️ #hiking #switzerland", "Best hike in Ticino"},
		{"   spaced    out   ", "spaced out"},
		{"#only #tags 🎉", ""},
		{"plain title", "plain title"},
	}

	for _, tt := range tests {
		if got := Title(tt.raw); got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
