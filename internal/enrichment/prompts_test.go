package enrichment

import (
	"strings"
	"testing"

	"github.com/freudibili/reeltodo/internal/models"
)

func TestPromptsContainFullCategoryVocabulary(t *testing.T) {
	p := NewPromptTemplates()

	for _, c := range models.AllCategories() {
		if !strings.Contains(p.ExtractionSystemPrompt, string(c)) {
			t.Errorf("extraction prompt missing category %q", c)
		}
		if !strings.Contains(p.ClassificationSystemPrompt, string(c)) {
			t.Errorf("classification prompt missing category %q", c)
		}
	}
}

func TestBuildExtractionUserPromptSkipsEmptyFields(t *testing.T) {
	got := BuildExtractionUserPrompt(ExtractionInput{Title: "Lakeside brunch"})

	if !strings.Contains(got, "Title: Lakeside brunch") {
		t.Errorf("missing title: %q", got)
	}
	if strings.Contains(got, "Description:") || strings.Contains(got, "Author:") {
		t.Errorf("empty fields rendered: %q", got)
	}
}

func TestBuildExtractionUserPromptTruncatesDescription(t *testing.T) {
	long := strings.Repeat("x", 5000)
	got := BuildExtractionUserPrompt(ExtractionInput{Description: long})

	if len(got) > 3200 {
		t.Errorf("description not truncated, prompt length %d", len(got))
	}
}
