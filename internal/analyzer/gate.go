package analyzer

import "github.com/freudibili/reeltodo/internal/models"

// DefaultAIThreshold is the analyzer confidence below which the LLM
// extractor runs anyway.
const DefaultAIThreshold = 0.65

// ShouldInvokeAI decides whether the slow, costly LLM extraction is needed
// given what the analyzer produced. Pure function, no I/O.
//
// The analyzer is trusted (AI skipped) only when it delivered a category
// plus either a usable location or at least one date, and its confidence is
// either unreported or at/above the threshold.
func ShouldInvokeAI(activity *models.AnalyzerActivity, threshold float64) bool {
	if activity == nil {
		return true
	}

	hasCore := activity.HasCategory() && (activity.HasLocation() || len(activity.Dates) > 0)
	if !hasCore {
		return true
	}

	if activity.Confidence != nil && *activity.Confidence < threshold {
		return true
	}

	return false
}
