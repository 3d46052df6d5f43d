package source

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/freudibili/reeltodo/internal/models"
)

// trackingParams are query parameters stripped during canonicalization so
// that two share links for the same content collide on the dedup key.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"igsh":         true,
	"igshid":       true,
	"fbclid":       true,
	"gclid":        true,
	"si":           true,
	"ref":          true,
	"_t":           true,
	"_r":           true,
}

// Detect classifies a URL by its host.
func Detect(raw string) models.Platform {
	u, err := url.Parse(raw)
	if err != nil {
		return models.PlatformGeneric
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "instagram.com"):
		return models.PlatformInstagram
	case strings.Contains(host, "facebook.com") || strings.Contains(host, "fb.watch"):
		return models.PlatformFacebook
	case strings.Contains(host, "tiktok.com"):
		return models.PlatformTikTok
	case strings.Contains(host, "youtube.com") || strings.Contains(host, "youtu.be"):
		return models.PlatformYouTube
	default:
		return models.PlatformGeneric
	}
}

// Canonicalize normalizes a source URL into the form used as the dedup key:
// scheme and host lowercased, tracking parameters removed, fragment dropped,
// trailing slash trimmed. Canonicalize is idempotent.
func Canonicalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host")
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for param := range q {
		if trackingParams[strings.ToLower(param)] {
			q.Del(param)
		}
	}
	u.RawQuery = q.Encode()

	u.Path = strings.TrimRight(u.Path, "/")

	return u.String(), nil
}

var youtubeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?.*v=|youtube\.com/shorts/|youtube\.com/embed/)([A-Za-z0-9_-]{6,})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{6,})`),
}

// youtubeVideoID extracts the video ID from the common YouTube URL shapes.
// Returns "" when the URL carries no recognizable ID.
func youtubeVideoID(raw string) string {
	for _, re := range youtubeIDPatterns {
		if m := re.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}
	return ""
}
