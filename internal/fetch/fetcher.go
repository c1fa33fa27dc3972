package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pauljones0/offer-catalog/internal/models"
	"github.com/pauljones0/offer-catalog/internal/search"
)

// Fetcher fans one search call out per QuerySpec and fans the results
// back in as a single flattened sequence.
type Fetcher struct {
	searcher    search.Searcher
	callTimeout time.Duration
	concurrency int
}

func New(searcher search.Searcher, callTimeout time.Duration, concurrency int) *Fetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Fetcher{
		searcher:    searcher,
		callTimeout: callTimeout,
		concurrency: concurrency,
	}
}

// BuildQuery renders the deterministic query string for a spec.
func BuildQuery(spec models.QuerySpec) string {
	return fmt.Sprintf("\"%s\" in %s", spec.SearchTerm, spec.Location)
}

// FetchAll runs every spec's search call concurrently, bounded by the
// configured parallelism. A failed or timed-out call yields an empty
// result list for that spec only; sibling calls are unaffected. The
// returned sequence preserves catalog order, and every item is tagged
// with the category and location of its originating spec.
func (f *Fetcher) FetchAll(ctx context.Context, specs []models.QuerySpec) []models.RawResult {
	perSpec := make([][]models.RawResult, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, spec := range specs {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, f.callTimeout)
			defer cancel()

			query := BuildQuery(spec)
			resp, err := f.searcher.Search(callCtx, query)
			if err != nil {
				slog.Warn("Search call failed, skipping spec",
					"category", spec.Category, "location", spec.Location, "query", query, "error", err)
				return nil
			}
			perSpec[i] = tagResults(spec, resp)
			return nil
		})
	}
	// Workers only ever return nil; failures degrade to empty slices.
	_ = g.Wait()

	var flattened []models.RawResult
	for _, batch := range perSpec {
		flattened = append(flattened, batch...)
	}
	return flattened
}

// tagResults stamps each hit with its originating spec and associates
// the provider's batch-level image list positionally.
func tagResults(spec models.QuerySpec, resp *search.Response) []models.RawResult {
	results := make([]models.RawResult, 0, len(resp.Results))
	for i, r := range resp.Results {
		item := models.RawResult{
			URL:        r.URL,
			Title:      r.Title,
			Content:    r.Content,
			RawContent: r.RawContent,
			Category:   spec.Category,
			Location:   spec.Location,
		}
		if i < len(resp.Images) {
			item.ImageURL = resp.Images[i]
		}
		results = append(results, item)
	}
	return results
}
