package geocode

import "strings"

// countryVariants maps name variants (lowercase, diacritics stripped) to a
// canonical country name. The table is intentionally small: the app's user
// base shares mostly DACH and nearby European content.
var countryVariants = []struct {
	variant string
	country string
}{
	{"switzerland", "Switzerland"},
	{"schweiz", "Switzerland"},
	{"suisse", "Switzerland"},
	{"svizzera", "Switzerland"},
	{"germany", "Germany"},
	{"deutschland", "Germany"},
	{"allemagne", "Germany"},
	{"austria", "Austria"},
	{"osterreich", "Austria"},
	{"oesterreich", "Austria"},
	{"autriche", "Austria"},
	{"france", "France"},
	{"frankreich", "France"},
	{"italy", "Italy"},
	{"italia", "Italy"},
	{"italien", "Italy"},
	{"italie", "Italy"},
	{"spain", "Spain"},
	{"espana", "Spain"},
	{"spanien", "Spain"},
	{"portugal", "Portugal"},
	{"norway", "Norway"},
	{"norwegen", "Norway"},
	{"norge", "Norway"},
	{"netherlands", "Netherlands"},
	{"niederlande", "Netherlands"},
	{"holland", "Netherlands"},
}

// regionVariants maps region name variants to a canonical region label used
// as an additional geocoding hint.
var regionVariants = []struct {
	variant string
	region  string
}{
	{"zurich", "Zurich"},
	{"zuerich", "Zurich"},
	{"bern", "Bern"},
	{"berne", "Bern"},
	{"graubunden", "Graubunden"},
	{"grisons", "Graubunden"},
	{"valais", "Valais"},
	{"wallis", "Valais"},
	{"ticino", "Ticino"},
	{"tessin", "Ticino"},
	{"lucerne", "Lucerne"},
	{"luzern", "Lucerne"},
	{"geneva", "Geneva"},
	{"geneve", "Geneva"},
	{"genf", "Geneva"},
	{"appenzell", "Appenzell"},
	{"vaud", "Vaud"},
	{"waadt", "Vaud"},
	{"engadin", "Engadin"},
	{"engadine", "Engadin"},
	{"bavaria", "Bavaria"},
	{"bayern", "Bavaria"},
	{"tyrol", "Tyrol"},
	{"tirol", "Tyrol"},
	{"south tyrol", "South Tyrol"},
	{"sudtirol", "South Tyrol"},
	{"alsace", "Alsace"},
	{"elsass", "Alsace"},
	{"provence", "Provence"},
	{"tuscany", "Tuscany"},
	{"toskana", "Tuscany"},
	{"toscana", "Tuscany"},
}

// LookupCountry scans the text for a known country name variant and returns
// its canonical form, matched as a substring of the normalized text.
func LookupCountry(text string) string {
	haystack := StripDiacritics(strings.ToLower(text))
	for _, entry := range countryVariants {
		if strings.Contains(haystack, entry.variant) {
			return entry.country
		}
	}
	return ""
}

// LookupRegion scans the text for a known region name variant.
func LookupRegion(text string) string {
	haystack := StripDiacritics(strings.ToLower(text))
	for _, entry := range regionVariants {
		if strings.Contains(haystack, entry.variant) {
			return entry.region
		}
	}
	return ""
}
