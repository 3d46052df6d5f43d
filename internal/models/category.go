package models

// Category is the fixed classification vocabulary for activities. Every
// persisted activity carries exactly one of these values; free-text
// categories from extractors are mapped through the normalizer first.
type Category string

const (
	CategoryOutdoorHike    Category = "outdoor-hike"
	CategoryOutdoorNature  Category = "outdoor-nature"
	CategoryOutdoorPark    Category = "outdoor-park"
	CategoryOutdoorWater   Category = "outdoor-water"
	CategoryFoodRestaurant Category = "food-restaurant"
	CategoryFoodCafe       Category = "food-cafe"
	CategoryFoodBar        Category = "food-bar"
	CategoryCultureMuseum  Category = "culture-museum"
	CategoryCultureSight   Category = "culture-sight"
	CategoryEventConcert   Category = "event-concert"
	CategoryEventFestival  Category = "event-festival"
	CategoryEventMarket    Category = "event-market"
	CategorySport          Category = "sport"
	CategoryWellness       Category = "wellness"
	CategoryShopping       Category = "shopping"
	CategoryTravel         Category = "travel"
	CategoryOther          Category = "other"
)

// AllCategories lists the allowed vocabulary in a stable order, used to
// build LLM prompt constraints and validation.
func AllCategories() []Category {
	return []Category{
		CategoryOutdoorHike,
		CategoryOutdoorNature,
		CategoryOutdoorPark,
		CategoryOutdoorWater,
		CategoryFoodRestaurant,
		CategoryFoodCafe,
		CategoryFoodBar,
		CategoryCultureMuseum,
		CategoryCultureSight,
		CategoryEventConcert,
		CategoryEventFestival,
		CategoryEventMarket,
		CategorySport,
		CategoryWellness,
		CategoryShopping,
		CategoryTravel,
		CategoryOther,
	}
}

// IsValid reports whether c is one of the allowed category values.
func (c Category) IsValid() bool {
	for _, v := range AllCategories() {
		if c == v {
			return true
		}
	}
	return false
}

// RequiresDate reports whether activities of this category are meaningless
// without a calendar date. Drives the date-resolver backfill and the
// needs_date_confirmation flag.
func (c Category) RequiresDate() bool {
	switch c {
	case CategoryEventConcert, CategoryEventFestival, CategoryEventMarket:
		return true
	}
	return false
}
