package enrich

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pauljones0/offer-catalog/internal/models"
)

type mockSummarizer struct {
	summary string
	err     error
}

func (m *mockSummarizer) Summarize(_ context.Context, text string) (string, error) {
	return m.summary, m.err
}

type mockExtractor struct {
	mu       sync.Mutex
	record   models.PriceRecord
	failures int // number of leading calls that fail
	calls    int
}

func (m *mockExtractor) ExtractPrice(_ context.Context, text string) (models.PriceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failures {
		return models.PriceRecord{}, errors.New("transient extraction error")
	}
	return m.record, nil
}

func fptr(v float64) *float64 { return &v }

func newTestEnricher(s Summarizer, p PriceExtractor, maxRetries int) *Enricher {
	e := New(s, p, time.Second, maxRetries)
	e.retryDelay = time.Millisecond
	return e
}

func TestEnrichAll_HappyPath(t *testing.T) {
	summarizer := &mockSummarizer{summary: "Nice hotel"}
	extractor := &mockExtractor{record: models.PriceRecord{OfferPrice: fptr(120), Currency: "USD"}}
	e := newTestEnricher(summarizer, extractor, 2)

	items := []models.RawResult{{URL: "https://example.com/u1", Content: "A lovely hotel offer for 120 USD"}}
	enrichments := e.EnrichAll(context.Background(), items)

	if len(enrichments) != 1 {
		t.Fatalf("Expected 1 enrichment, got %d", len(enrichments))
	}
	if enrichments[0].Summary != "Nice hotel" {
		t.Errorf("Expected summary 'Nice hotel', got %q", enrichments[0].Summary)
	}
	if enrichments[0].Price.OfferPrice == nil || *enrichments[0].Price.OfferPrice != 120 {
		t.Errorf("Expected offer price 120, got %+v", enrichments[0].Price)
	}
}

func TestEnrichAll_SummaryFallbackOnFailure(t *testing.T) {
	summarizer := &mockSummarizer{err: errors.New("model unavailable")}
	extractor := &mockExtractor{}
	e := newTestEnricher(summarizer, extractor, 0)

	longContent := strings.Repeat("offer ", 50) // > 140 runes
	items := []models.RawResult{{URL: "https://example.com/u1", Content: longContent}}
	enrichments := e.EnrichAll(context.Background(), items)

	got := enrichments[0].Summary
	if got == "" {
		t.Fatal("Expected truncated fallback summary, got empty")
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Expected ellipsis on truncated fallback, got %q", got)
	}
	if len([]rune(got)) != summaryFallbackRunes+3 {
		t.Errorf("Expected %d-rune fallback, got %d", summaryFallbackRunes+3, len([]rune(got)))
	}
}

func TestEnrichAll_ShortContentFallbackKeptWhole(t *testing.T) {
	summarizer := &mockSummarizer{err: errors.New("model unavailable")}
	e := newTestEnricher(summarizer, &mockExtractor{}, 0)

	items := []models.RawResult{{URL: "https://example.com/u1", Content: "Short offer text"}}
	enrichments := e.EnrichAll(context.Background(), items)

	if enrichments[0].Summary != "Short offer text" {
		t.Errorf("Expected short content kept whole, got %q", enrichments[0].Summary)
	}
}

func TestEnrichAll_PriceRetriesThenSucceeds(t *testing.T) {
	extractor := &mockExtractor{
		failures: 2,
		record:   models.PriceRecord{OfferPrice: fptr(99), Currency: "EUR"},
	}
	e := newTestEnricher(&mockSummarizer{summary: "s"}, extractor, 2)

	items := []models.RawResult{{URL: "https://example.com/u1", Content: "text"}}
	enrichments := e.EnrichAll(context.Background(), items)

	if enrichments[0].Price.OfferPrice == nil || *enrichments[0].Price.OfferPrice != 99 {
		t.Errorf("Expected retried extraction to succeed, got %+v", enrichments[0].Price)
	}
	if extractor.calls != 3 {
		t.Errorf("Expected 3 extraction attempts, got %d", extractor.calls)
	}
}

func TestEnrichAll_PriceAbsentAfterExhaustedRetries(t *testing.T) {
	extractor := &mockExtractor{failures: 100}
	e := newTestEnricher(&mockSummarizer{summary: "s"}, extractor, 1)

	items := []models.RawResult{{URL: "https://example.com/u1", Content: "text"}}
	enrichments := e.EnrichAll(context.Background(), items)

	price := enrichments[0].Price
	if price.OfferPrice != nil || price.OriginalPrice != nil || price.Currency != "" {
		t.Errorf("Expected all-absent price record after exhausted retries, got %+v", price)
	}
	if extractor.calls != 2 {
		t.Errorf("Expected maxRetries+1 = 2 attempts, got %d", extractor.calls)
	}
}

func TestEnrichAll_EmptyContentSkipsCalls(t *testing.T) {
	extractor := &mockExtractor{}
	e := newTestEnricher(&mockSummarizer{summary: "s"}, extractor, 2)

	items := []models.RawResult{{URL: "https://example.com/u1"}}
	enrichments := e.EnrichAll(context.Background(), items)

	if enrichments[0].Summary != "" {
		t.Errorf("Expected empty summary for empty content, got %q", enrichments[0].Summary)
	}
	if extractor.calls != 0 {
		t.Errorf("Expected no extraction calls for empty content, got %d", extractor.calls)
	}
}

func TestEnrichAll_AlignsWithInput(t *testing.T) {
	e := newTestEnricher(
		&mockSummarizer{summary: "s"},
		&mockExtractor{record: models.PriceRecord{OfferPrice: fptr(10), Currency: "USD"}},
		0,
	)

	items := []models.RawResult{
		{URL: "https://example.com/u1", Content: "a"},
		{URL: "https://example.com/u2"}, // empty — degrades
		{URL: "https://example.com/u3", Content: "c"},
	}
	enrichments := e.EnrichAll(context.Background(), items)

	if len(enrichments) != len(items) {
		t.Fatalf("Expected %d enrichments, got %d", len(items), len(enrichments))
	}
	if enrichments[1].Summary != "" || enrichments[1].Price.OfferPrice != nil {
		t.Errorf("Expected degraded middle item, got %+v", enrichments[1])
	}
	if enrichments[0].Price.OfferPrice == nil || enrichments[2].Price.OfferPrice == nil {
		t.Error("Siblings of a degraded item must still be enriched")
	}
}

func TestSourceText_ReducesRawHTML(t *testing.T) {
	item := models.RawResult{
		RawContent: "<html><body><h1>Spa  Package</h1><p>Two nights,   breakfast included.</p></body></html>",
	}
	got := sourceText(&item)
	if got != "Spa Package Two nights, breakfast included." {
		t.Errorf("sourceText() = %q", got)
	}
}

func TestSourceText_PrefersContentSnippet(t *testing.T) {
	item := models.RawResult{
		Content:    "snippet",
		RawContent: "<p>raw</p>",
	}
	if got := sourceText(&item); got != "snippet" {
		t.Errorf("sourceText() = %q", got)
	}
}
