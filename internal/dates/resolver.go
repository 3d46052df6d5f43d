package dates

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/freudibili/reeltodo/internal/geocode"
)

// Method names recorded on a resolution so downstream consumers can tell
// how trustworthy the dates are.
const (
	MethodExplicitText = "explicit-text"
	MethodWebSearch    = "openai-web-search"

	explicitConfidence  = 0.9
	webSearchConfidence = 0.8
)

// Resolution is the outcome of date resolution for an activity.
type Resolution struct {
	Dates      []string `json:"dates"`
	MainDate   string   `json:"main_date"`
	IsUpcoming bool     `json:"is_upcoming"`
	Confidence float64  `json:"date_confidence"`
	Method     string   `json:"date_method"`
}

// EventDateSearcher performs a web-search-backed lookup for an event date.
// Implementations return "" when no date could be found.
type EventDateSearcher interface {
	SearchEventDate(ctx context.Context, query string) (string, error)
}

// Input carries the text and hints for a resolution attempt.
type Input struct {
	Text    string
	Venue   string
	City    string
	Artists []string
}

// Resolver extracts explicit dates from text and, failing that, falls back
// to a web search. It is a last resort invoked only for date-requiring
// categories with no dates from earlier stages.
type Resolver struct {
	searcher EventDateSearcher
	now      func() time.Time
	logger   *slog.Logger
}

// NewResolver creates a resolver. searcher may be nil, which disables the
// web-search fallback.
func NewResolver(searcher EventDateSearcher, logger *slog.Logger) *Resolver {
	return &Resolver{searcher: searcher, now: time.Now, logger: logger}
}

// ResolveFromText tries explicit text parsing first, then the web-search
// fallback. Returns nil when no date could be resolved.
func (r *Resolver) ResolveFromText(ctx context.Context, in Input) *Resolution {
	if found := ExtractExplicit(in.Text); len(found) > 0 {
		main, upcoming := ClassifyMain(found, r.now())
		return &Resolution{
			Dates:      found,
			MainDate:   main,
			IsUpcoming: upcoming,
			Confidence: explicitConfidence,
			Method:     MethodExplicitText,
		}
	}

	// A generic search with neither venue nor artist yields noise, not dates.
	if r.searcher == nil || (in.Venue == "" && len(in.Artists) == 0) {
		return nil
	}

	query := buildSearchQuery(in)
	raw, err := r.searcher.SearchEventDate(ctx, query)
	if err != nil {
		r.logger.Warn("event date web search failed", "query", query, "error", err)
		return nil
	}

	date := firstISODate(raw)
	if date == "" {
		return nil
	}

	main, upcoming := ClassifyMain([]string{date}, r.now())
	return &Resolution{
		Dates:      []string{date},
		MainDate:   main,
		IsUpcoming: upcoming,
		Confidence: webSearchConfidence,
		Method:     MethodWebSearch,
	}
}

func buildSearchQuery(in Input) string {
	parts := make([]string, 0, 4)
	if len(in.Artists) > 0 {
		parts = append(parts, strings.Join(in.Artists, " "))
	}
	if in.Venue != "" {
		parts = append(parts, in.Venue)
	}
	if in.City != "" {
		parts = append(parts, in.City)
	}
	text := strings.TrimSpace(in.Text)
	if len(text) > 120 {
		text = text[:120]
	}
	if text != "" {
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

var (
	// dd.mm.yyyy, dd/mm/yyyy, dd-mm-yyyy
	numericDMY = regexp.MustCompile(`\b(\d{1,2})[./-](\d{1,2})[./-](\d{4})\b`)
	// yyyy-mm-dd
	numericYMD = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	// "15 July 2023", "3. März 2024", "1er juillet 2024"
	monthNameDate = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th|er|\.)?\s+([A-Za-z\x{00C0}-\x{024F}]+)\s+(\d{4})\b`)

	isoDate = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January, "januar": time.January, "janvier": time.January,
	"february": time.February, "feb": time.February, "februar": time.February, "fevrier": time.February,
	"march": time.March, "mar": time.March, "marz": time.March, "mars": time.March,
	"april": time.April, "apr": time.April, "avril": time.April,
	"may": time.May, "mai": time.May,
	"june": time.June, "jun": time.June, "juni": time.June, "juin": time.June,
	"july": time.July, "jul": time.July, "juli": time.July, "juillet": time.July,
	"august": time.August, "aug": time.August, "aout": time.August,
	"september": time.September, "sep": time.September, "sept": time.September, "septembre": time.September,
	"october": time.October, "oct": time.October, "oktober": time.October, "octobre": time.October,
	"november": time.November, "nov": time.November, "novembre": time.November,
	"december": time.December, "dec": time.December, "dezember": time.December, "decembre": time.December,
}

// ExtractExplicit finds calendar dates written out in the text, validates
// them against the calendar, and returns them deduplicated and sorted
// ascending as ISO date strings.
func ExtractExplicit(text string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(year, month, day int) {
		iso, ok := validDate(year, month, day)
		if ok && !seen[iso] {
			seen[iso] = true
			out = append(out, iso)
		}
	}

	for _, m := range numericDMY.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		add(year, month, day)
	}
	for _, m := range numericYMD.FindAllStringSubmatch(text, -1) {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		add(year, month, day)
	}
	for _, m := range monthNameDate.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		name := strings.ToLower(geocode.StripDiacritics(m[2]))
		year, _ := strconv.Atoi(m[3])
		if month, ok := monthNames[name]; ok {
			add(year, int(month), day)
		}
	}

	sort.Strings(out)
	return out
}

// NormalizeISO converts a single date value written in any supported format
// to YYYY-MM-DD. Returns "" when the value does not name a real calendar
// date.
func NormalizeISO(raw string) string {
	found := ExtractExplicit(raw)
	if len(found) == 0 {
		return ""
	}
	return found[0]
}

// validDate round-trips the components through a UTC date constructor;
// overflow (e.g. 31.02.) surfaces as a mismatch and the date is discarded.
func validDate(year, month, day int) (string, bool) {
	if year < 1900 || year > 2200 || month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// ClassifyMain picks the activity's main date: the earliest date that is
// today or later when one exists (upcoming), otherwise the latest past date.
func ClassifyMain(isoDates []string, today time.Time) (string, bool) {
	if len(isoDates) == 0 {
		return "", false
	}

	sorted := append([]string(nil), isoDates...)
	sort.Strings(sorted)

	todayISO := today.UTC().Format("2006-01-02")
	for _, d := range sorted {
		if d >= todayISO {
			return d, true
		}
	}
	return sorted[len(sorted)-1], false
}

// firstISODate returns the first YYYY-MM-DD substring in s that is a real
// calendar date, or "".
func firstISODate(s string) string {
	for _, candidate := range isoDate.FindAllString(s, -1) {
		year, _ := strconv.Atoi(candidate[0:4])
		month, _ := strconv.Atoi(candidate[5:7])
		day, _ := strconv.Atoi(candidate[8:10])
		if iso, ok := validDate(year, month, day); ok {
			return iso
		}
	}
	return ""
}
