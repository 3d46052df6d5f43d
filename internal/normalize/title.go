package normalize

import (
	"regexp"
	"strings"
)

var (
	// Covers the common emoji blocks plus variation selectors and the
	// skin-tone modifiers that otherwise survive as stray runes.
	emojiPattern      = regexp.MustCompile(`[\x{1F300}-\x{1FAFF}\x{2600}-\x{27BF}\x{FE0F}\x{1F1E6}-\x{1F1FF}\x{1F900}-\x{1F9FF}]`)
	hashtagPattern    = regexp.MustCompile(`#\S+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Title strips emoji and #hashtag tokens from a candidate title and
// collapses whitespace. Returns "" when nothing readable remains.
func Title(raw string) string {
	cleaned := emojiPattern.ReplaceAllString(raw, " ")
	cleaned = hashtagPattern.ReplaceAllString(cleaned, " ")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
