package enrich

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pauljones0/offer-catalog/internal/models"
	"github.com/pauljones0/offer-catalog/internal/util"
)

// summaryFallbackRunes bounds the truncated-content fallback used when
// summarization fails or returns nothing.
const summaryFallbackRunes = 140

// Summarizer is the external summarization capability.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// PriceExtractor is the external structured price extraction capability.
type PriceExtractor interface {
	ExtractPrice(ctx context.Context, text string) (models.PriceRecord, error)
}

// Enrichment is the per-item output: a summary and a price record, both
// possibly empty when the capabilities degraded.
type Enrichment struct {
	Summary string
	Price   models.PriceRecord
}

type Enricher struct {
	summarizer  Summarizer
	extractor   PriceExtractor
	callTimeout time.Duration
	maxRetries  int
	retryDelay  time.Duration
}

func New(s Summarizer, p PriceExtractor, callTimeout time.Duration, maxRetries int) *Enricher {
	return &Enricher{
		summarizer:  s,
		extractor:   p,
		callTimeout: callTimeout,
		maxRetries:  maxRetries,
		retryDelay:  time.Second,
	}
}

// EnrichAll runs summarization and price extraction for every item
// concurrently (up to 2×N outstanding calls) and returns enrichments
// aligned index-wise with the input. One item's failure never blocks or
// fails another's.
func (e *Enricher) EnrichAll(ctx context.Context, items []models.RawResult) []Enrichment {
	enrichments := make([]Enrichment, len(items))

	var wg sync.WaitGroup
	for i := range items {
		text := sourceText(&items[i])

		wg.Add(2)
		go func(i int, text string) {
			defer wg.Done()
			enrichments[i].Summary = e.summarize(ctx, text)
		}(i, text)
		go func(i int, text string, url string) {
			defer wg.Done()
			enrichments[i].Price = e.extractPrice(ctx, text, url)
		}(i, text, items[i].URL)
	}
	wg.Wait()

	return enrichments
}

// summarize calls the capability once; any failure falls back to the
// truncated source text.
func (e *Enricher) summarize(ctx context.Context, text string) string {
	if text == "" {
		return ""
	}

	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	summary, err := e.summarizer.Summarize(callCtx, text)
	if err != nil {
		slog.Warn("Summarization failed, falling back to truncated content", "error", err)
		return util.Truncate(text, summaryFallbackRunes)
	}
	if strings.TrimSpace(summary) == "" {
		return util.Truncate(text, summaryFallbackRunes)
	}
	return summary
}

// extractPrice retries the capability with backoff; after exhausting
// retries it returns an empty record.
func (e *Enricher) extractPrice(ctx context.Context, text, url string) models.PriceRecord {
	if text == "" {
		return models.PriceRecord{}
	}

	var record models.PriceRecord
	err := util.RetryWithBackoff(ctx, e.maxRetries, e.retryDelay, func(attempt int) error {
		callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
		defer cancel()

		rec, err := e.extractor.ExtractPrice(callCtx, text)
		if err != nil {
			return err
		}
		record = rec
		return nil
	})
	if err != nil {
		slog.Warn("Price extraction failed after retries", "url", url, "error", err)
		return models.PriceRecord{}
	}
	return record
}

// sourceText picks the enrichment input for an item: the provider's
// content snippet, or the raw page content reduced to text when the
// snippet is empty.
func sourceText(item *models.RawResult) string {
	if strings.TrimSpace(item.Content) != "" {
		return item.Content
	}
	return htmlToText(item.RawContent)
}

func htmlToText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
