package models

import (
	"time"
)

// Category identifies the kind of offer a QuerySpec targets.
type Category string

const (
	CategoryHotel      Category = "hotel"
	CategoryFlight     Category = "flight"
	CategoryRestaurant Category = "restaurant"
	CategorySpa        Category = "spa"
	CategoryConcert    Category = "concert"
	CategoryBirthday   Category = "birthday"
	// CategoryUnknown is the defined outcome for any string that maps to
	// no known category.
	CategoryUnknown Category = ""
)

// categoryTable is the total mapping from request strings to categories.
// Lookup is exact (lowercased); there is no substring scanning.
var categoryTable = map[string]Category{
	"hotel":      CategoryHotel,
	"flight":     CategoryFlight,
	"restaurant": CategoryRestaurant,
	"spa":        CategorySpa,
	"concert":    CategoryConcert,
	"birthday":   CategoryBirthday,
}

// ParseCategory maps a raw string to a Category. Unrecognized input
// yields CategoryUnknown and false.
func ParseCategory(s string) (Category, bool) {
	c, ok := categoryTable[normalizeKey(s)]
	if !ok {
		return CategoryUnknown, false
	}
	return c, true
}

func normalizeKey(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch >= 'A' && ch <= 'Z' {
			ch += 'a' - 'A'
		}
		if ch == ' ' || ch == '\t' {
			continue
		}
		b = append(b, ch)
	}
	return string(b)
}

// QuerySpec drives one search call per cycle. Immutable after startup.
type QuerySpec struct {
	Category   Category
	SearchTerm string
	Location   string
}

// DefaultQueries returns the static query catalog.
func DefaultQueries() []QuerySpec {
	return []QuerySpec{
		{CategoryHotel, "hotel deals", "Paris"},
		{CategoryHotel, "luxury hotels", "Dubai"},
		{CategoryRestaurant, "michelin star restaurant offers", "Tokyo"},
		{CategoryRestaurant, "fine dining restaurants", "New York"},
		{CategorySpa, "spa and wellness packages", "Bali"},
		{CategoryConcert, "concert tickets", "London"},
		{CategoryConcert, "live music events", "Los Angeles"},
		{CategoryBirthday, "birthday party venues", "Sydney"},
		{CategoryBirthday, "weekend getaway deals", "from Berlin"},
		{CategoryFlight, "cheap flight deals", "from Singapore to Bangkok"},
	}
}

// RawResult is one search hit, tagged with the category and location of
// the QuerySpec that produced it. Ephemeral: discarded after validation.
type RawResult struct {
	URL        string
	Title      string
	Content    string
	RawContent string
	ImageURL   string
	Category   Category
	Location   string
}

// PriceRecord is the structured output of price extraction. Nil fields
// mean the extractor found nothing for them.
type PriceRecord struct {
	OriginalPrice *float64 `json:"original_price,omitempty"`
	OfferPrice    *float64 `json:"offer_price,omitempty"`
	Currency      string   `json:"currency,omitempty"`
}

// Offer is a single validated, priced catalog entry. Created only by
// validation; never mutated afterwards.
type Offer struct {
	ID         string    `json:"id" firestore:"id" validate:"required"`
	Title      string    `json:"title" firestore:"title"`
	Summary    string    `json:"summary" firestore:"summary"`
	ImageURL   string    `json:"image_url,omitempty" firestore:"imageURL,omitempty" validate:"omitempty,url"`
	Category   Category  `json:"category" firestore:"category" validate:"required"`
	Location   string    `json:"location" firestore:"location" validate:"required"`
	Price      *float64  `json:"price,omitempty" firestore:"price,omitempty"`
	OfferPrice float64   `json:"offer_price" firestore:"offerPrice" validate:"required,gt=0"`
	Currency   string    `json:"currency" firestore:"currency" validate:"required,len=3,alpha"`
	Source     string    `json:"source" firestore:"source" validate:"required"`
	FetchedAt  time.Time `json:"fetched_at" firestore:"fetchedAt" validate:"required"`
}

// Snapshot is the complete, internally consistent set of currently
// published Offers. Exactly one is live at any instant; replacement is
// all-or-nothing.
type Snapshot struct {
	Offers      []Offer   `json:"offers"`
	PublishedAt time.Time `json:"published_at"`
}

// Len reports the number of offers; safe on a nil snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Offers)
}
