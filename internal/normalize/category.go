package normalize

import (
	"regexp"
	"strings"

	"github.com/freudibili/reeltodo/internal/models"
)

var categoryCleaner = regexp.MustCompile(`[#@!?.,:;'"()\[\]]+`)

// categoryAliases maps common free-text category spellings to the fixed
// vocabulary. Keys are pre-normalized (lowercase, punctuation stripped).
var categoryAliases = map[string]models.Category{
	"hike":             models.CategoryOutdoorHike,
	"hiking":           models.CategoryOutdoorHike,
	"wandern":          models.CategoryOutdoorHike,
	"wanderung":        models.CategoryOutdoorHike,
	"trail":            models.CategoryOutdoorHike,
	"nature":           models.CategoryOutdoorNature,
	"outdoors":         models.CategoryOutdoorNature,
	"park":             models.CategoryOutdoorPark,
	"garden":           models.CategoryOutdoorPark,
	"lake":             models.CategoryOutdoorWater,
	"beach":            models.CategoryOutdoorWater,
	"swimming":         models.CategoryOutdoorWater,
	"restaurant":       models.CategoryFoodRestaurant,
	"resto":            models.CategoryFoodRestaurant,
	"food":             models.CategoryFoodRestaurant,
	"dinner":           models.CategoryFoodRestaurant,
	"cafe":             models.CategoryFoodCafe,
	"coffee":           models.CategoryFoodCafe,
	"brunch":           models.CategoryFoodCafe,
	"bakery":           models.CategoryFoodCafe,
	"bar":              models.CategoryFoodBar,
	"cocktails":        models.CategoryFoodBar,
	"drinks":           models.CategoryFoodBar,
	"museum":           models.CategoryCultureMuseum,
	"gallery":          models.CategoryCultureMuseum,
	"exhibition":       models.CategoryCultureMuseum,
	"sightseeing":      models.CategoryCultureSight,
	"landmark":         models.CategoryCultureSight,
	"monument":         models.CategoryCultureSight,
	"concert":          models.CategoryEventConcert,
	"gig":              models.CategoryEventConcert,
	"live music":       models.CategoryEventConcert,
	"festival":         models.CategoryEventFestival,
	"openair":          models.CategoryEventFestival,
	"open air":         models.CategoryEventFestival,
	"market":           models.CategoryEventMarket,
	"flea market":      models.CategoryEventMarket,
	"christmas market": models.CategoryEventMarket,
	"weihnachtsmarkt":  models.CategoryEventMarket,
	"sports":           models.CategorySport,
	"fitness":          models.CategorySport,
	"spa":              models.CategoryWellness,
	"sauna":            models.CategoryWellness,
	"yoga":             models.CategoryWellness,
	"shop":             models.CategoryShopping,
	"store":            models.CategoryShopping,
	"boutique":         models.CategoryShopping,
	"trip":             models.CategoryTravel,
	"roadtrip":         models.CategoryTravel,
	"getaway":          models.CategoryTravel,
	"hotel":            models.CategoryTravel,
}

// Category maps a free-text category value into the fixed vocabulary.
// Exact (case- and symbol-insensitive) enum matches short-circuit; otherwise
// the alias table is consulted. Returns false when the input is empty or
// unmappable.
func Category(raw string) (models.Category, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = categoryCleaner.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", false
	}

	if c := models.Category(cleaned); c.IsValid() {
		return c, true
	}

	if c, ok := categoryAliases[cleaned]; ok {
		return c, true
	}
	return "", false
}

// keywordRule pairs a compiled predicate with the category it implies.
type keywordRule struct {
	pattern  *regexp.Regexp
	category models.Category
}

// keywordRules is evaluated in order and the FIRST match wins. Order is an
// invariant: the hike family must precede nature, which must precede park,
// or "hiking through the national park" misclassifies.
var keywordRules = []keywordRule{
	{regexp.MustCompile(`\b(hike|hiking|trail(head)?|wander(n|ung|weg)?|via ferrata|summit)\b`), models.CategoryOutdoorHike},
	{regexp.MustCompile(`\b(waterfall|gorge|canyon|glacier|forest|nature (reserve|park)|wildlife)\b`), models.CategoryOutdoorNature},
	{regexp.MustCompile(`\b(park|botanical garden|gardens)\b`), models.CategoryOutdoorPark},
	{regexp.MustCompile(`\b(lake|beach|river|kayak|paddle|sup|swim(ming)?|badi)\b`), models.CategoryOutdoorWater},
	{regexp.MustCompile(`\b(concert|gig|live music|tour date)\b`), models.CategoryEventConcert},
	{regexp.MustCompile(`\b(festival|open ?air)\b`), models.CategoryEventFestival},
	{regexp.MustCompile(`\b((flea|christmas|farmers|night) market|market|weihnachtsmarkt)\b`), models.CategoryEventMarket},
	{regexp.MustCompile(`\b(restaurant|resto|dinner|lunch|tasting menu|fine dining)\b`), models.CategoryFoodRestaurant},
	{regexp.MustCompile(`\b(cafe|coffee|brunch|bakery|patisserie)\b`), models.CategoryFoodCafe},
	{regexp.MustCompile(`\b(bar|cocktail|rooftop|wine|aperitivo|pub)\b`), models.CategoryFoodBar},
	{regexp.MustCompile(`\b(museum|gallery|exhibition|vernissage)\b`), models.CategoryCultureMuseum},
	{regexp.MustCompile(`\b(castle|cathedral|old town|landmark|monument|viewpoint|lookout)\b`), models.CategoryCultureSight},
	{regexp.MustCompile(`\b(climbing|boulder(ing)?|ski(ing)?|snowboard|surf(ing)?|golf|tennis|marathon)\b`), models.CategorySport},
	{regexp.MustCompile(`\b(spa|sauna|massage|thermal bath|wellness|yoga|retreat)\b`), models.CategoryWellness},
	{regexp.MustCompile(`\b(shopping|boutique|concept store|outlet|vintage store)\b`), models.CategoryShopping},
	{regexp.MustCompile(`\b(hotel|hostel|road ?trip|itinerary|weekend (away|getaway)|city trip)\b`), models.CategoryTravel},
}

// InferenceInput carries the text signals for keyword category inference.
type InferenceInput struct {
	Title        string
	Description  string
	Tags         []string
	LocationName string
}

// InferCategory concatenates the input into one normalized haystack and
// applies the ordered keyword rules. It returns ("other", true) when input
// exists but no rule matches, and ("", false) when there is nothing to judge.
func InferCategory(in InferenceInput) (models.Category, bool) {
	parts := []string{in.Title, in.Description, in.LocationName, strings.Join(in.Tags, " ")}
	haystack := strings.ToLower(strings.TrimSpace(strings.Join(parts, " ")))
	if strings.TrimSpace(haystack) == "" {
		return "", false
	}

	for _, rule := range keywordRules {
		if rule.pattern.MatchString(haystack) {
			return rule.category, true
		}
	}
	return models.CategoryOther, true
}
