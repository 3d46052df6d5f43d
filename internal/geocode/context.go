package geocode

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics converts accented characters to their ASCII base form
// ("Zürich" -> "Zurich"). Input that fails to transform is returned as-is.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ContextInput carries the signals used to derive a geocoding context
// string for an activity whose location name alone is too ambiguous.
type ContextInput struct {
	City         string
	Address      string
	LocationName string
	Tags         []string
	Description  string
	SourceURL    string
}

// DeriveContext builds a compact, lowercase, diacritic-stripped context
// string from the strongest available signals, in precedence order. The
// description and URL contribute only through gazetteer hint lookups, not
// as raw tokens.
func DeriveContext(in ContextInput) (context string, hints Hints) {
	var tokens []string
	add := func(s string) {
		s = strings.TrimSpace(strings.ToLower(StripDiacritics(s)))
		if s != "" {
			tokens = append(tokens, s)
		}
	}

	add(in.City)
	add(in.Address)
	if in.City == "" && in.Address == "" {
		for _, tag := range in.Tags {
			if LookupRegion(tag) != "" || LookupCountry(tag) != "" {
				add(tag)
			}
		}
	}

	hintText := strings.Join([]string{
		in.City, in.Address, in.LocationName,
		strings.Join(in.Tags, " "),
		in.Description, urlSlugText(in.SourceURL),
	}, " ")
	hints = Hints{
		Country: LookupCountry(hintText),
		Region:  LookupRegion(hintText),
	}

	return strings.Join(tokens, " "), hints
}

// urlSlugText extracts human-readable words from a URL path so that slugs
// like /hiking-in-appenzell/ contribute to the hint lookup.
func urlSlugText(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	path := strings.NewReplacer("-", " ", "_", " ", "/", " ", ".", " ").Replace(u.Path)
	return strings.TrimSpace(path)
}
