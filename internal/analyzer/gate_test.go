package analyzer

import (
	"testing"

	"github.com/freudibili/reeltodo/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func strPtr(s string) *string     { return &s }

func TestShouldInvokeAI(t *testing.T) {
	tests := []struct {
		name     string
		activity *models.AnalyzerActivity
		want     bool
	}{
		{
			name:     "nil activity always invokes",
			activity: nil,
			want:     true,
		},
		{
			name: "category with location and high confidence skips",
			activity: &models.AnalyzerActivity{
				Category:   strPtr("food-restaurant"),
				City:       strPtr("Zurich"),
				Confidence: floatPtr(0.9),
			},
			want: false,
		},
		{
			name: "category with date instead of location skips",
			activity: &models.AnalyzerActivity{
				Category: strPtr("event-concert"),
				Dates:    []string{"2026-09-12"},
			},
			want: false,
		},
		{
			name: "unreported confidence is trusted",
			activity: &models.AnalyzerActivity{
				Category:     strPtr("outdoor-hike"),
				LocationName: strPtr("Creux du Van"),
			},
			want: false,
		},
		{
			name: "missing category invokes",
			activity: &models.AnalyzerActivity{
				City:       strPtr("Zurich"),
				Confidence: floatPtr(0.99),
			},
			want: true,
		},
		{
			name: "category without location or dates invokes",
			activity: &models.AnalyzerActivity{
				Category:   strPtr("food-cafe"),
				Confidence: floatPtr(0.99),
			},
			want: true,
		},
		{
			name: "low confidence invokes despite complete data",
			activity: &models.AnalyzerActivity{
				Category:   strPtr("food-cafe"),
				City:       strPtr("Basel"),
				Confidence: floatPtr(0.64),
			},
			want: true,
		},
		{
			name: "confidence exactly at threshold skips",
			activity: &models.AnalyzerActivity{
				Category:   strPtr("food-cafe"),
				City:       strPtr("Basel"),
				Confidence: floatPtr(0.65),
			},
			want: false,
		},
		{
			name: "coordinates count as location",
			activity: &models.AnalyzerActivity{
				Category:  strPtr("outdoor-water"),
				Latitude:  floatPtr(46.6),
				Longitude: floatPtr(8.6),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldInvokeAI(tt.activity, DefaultAIThreshold); got != tt.want {
				t.Errorf("ShouldInvokeAI() = %v, want %v", got, tt.want)
			}
		})
	}
}
