package catalog

import (
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pauljones0/offer-catalog/internal/enrich"
	"github.com/pauljones0/offer-catalog/internal/models"
	"github.com/pauljones0/offer-catalog/internal/util"
)

// Source tags every offer this pipeline publishes.
const Source = "tavily"

// Stats counts validation outcomes for one cycle. Rejections are never
// surfaced as errors.
type Stats struct {
	Accepted          int
	RejectedNoURL     int
	RejectedDuplicate int
	RejectedPrice     int
	RejectedInvalid   int
}

// Validator applies the pure, deterministic rules that turn a
// (RawResult, summary, PriceRecord) triple into zero-or-one Offer.
type Validator struct {
	validate     *validator.Validate
	priceCeiling float64
}

func NewValidator(priceCeiling float64) *Validator {
	return &Validator{
		validate:     validator.New(),
		priceCeiling: priceCeiling,
	}
}

// BuildOffers maps each item independently, in rule order: items without
// a url are rejected; the first occurrence of a url wins and later
// duplicates are dropped silently; an offer price must be positive and
// not exceed the ceiling, with an exactly-3-letter currency, or the item
// is rejected entirely; the original price is kept only when positive
// and not less than the offer price, and cleared otherwise.
func (v *Validator) BuildOffers(results []models.RawResult, enrichments []enrich.Enrichment, fetchedAt time.Time) ([]models.Offer, Stats) {
	var stats Stats
	offers := make([]models.Offer, 0, len(results))
	seen := make(map[string]bool, len(results))

	for i, item := range results {
		if strings.TrimSpace(item.URL) == "" {
			stats.RejectedNoURL++
			continue
		}
		if seen[item.URL] {
			stats.RejectedDuplicate++
			continue
		}
		seen[item.URL] = true

		var enrichment enrich.Enrichment
		if i < len(enrichments) {
			enrichment = enrichments[i]
		}

		price := enrichment.Price
		if price.OfferPrice == nil || *price.OfferPrice <= 0 || *price.OfferPrice > v.priceCeiling {
			stats.RejectedPrice++
			continue
		}
		currency, ok := util.NormalizeCurrency(price.Currency)
		if !ok {
			stats.RejectedPrice++
			continue
		}

		offer := models.Offer{
			ID:         item.URL,
			Title:      item.Title,
			Summary:    enrichment.Summary,
			ImageURL:   item.ImageURL,
			Category:   item.Category,
			Location:   item.Location,
			OfferPrice: *price.OfferPrice,
			Currency:   currency,
			Source:     Source,
			FetchedAt:  fetchedAt,
		}

		// Original price is normalized independently of the offer_price
		// outcome: dropped when absent, non-positive, or below offer_price.
		if price.OriginalPrice != nil && *price.OriginalPrice > 0 && *price.OriginalPrice >= offer.OfferPrice {
			original := *price.OriginalPrice
			offer.Price = &original
		}

		if err := v.validate.Struct(offer); err != nil {
			slog.Warn("Offer failed struct validation", "id", offer.ID, "error", err)
			stats.RejectedInvalid++
			continue
		}

		offers = append(offers, offer)
		stats.Accepted++
	}

	return offers, stats
}
