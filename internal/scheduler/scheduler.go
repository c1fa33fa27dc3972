package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/pauljones0/offer-catalog/internal/catalog"
	"github.com/pauljones0/offer-catalog/internal/enrich"
	"github.com/pauljones0/offer-catalog/internal/models"
)

// Fetcher abstracts the fetch fan-out stage.
type Fetcher interface {
	FetchAll(ctx context.Context, specs []models.QuerySpec) []models.RawResult
}

// Enricher abstracts the enrichment fan-out stage.
type Enricher interface {
	EnrichAll(ctx context.Context, items []models.RawResult) []enrich.Enrichment
}

// Scheduler runs the pipeline indefinitely: one full cycle
// (fetch, enrich, validate, publish) at a time, then a sleep. Cycles
// never overlap, and no cycle failure is fatal to the process.
type Scheduler struct {
	queries   []models.QuerySpec
	fetcher   Fetcher
	enricher  Enricher
	validator *catalog.Validator
	store     *catalog.Store
	interval  time.Duration
}

func New(queries []models.QuerySpec, f Fetcher, e Enricher, v *catalog.Validator, store *catalog.Store, interval time.Duration) *Scheduler {
	return &Scheduler{
		queries:   queries,
		fetcher:   f,
		enricher:  e,
		validator: v,
		store:     store,
		interval:  interval,
	}
}

// Run loads the durable snapshot, then loops until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	if err := s.store.Warm(ctx); err != nil {
		slog.Warn("Failed to warm snapshot store, starting empty", "error", err)
	}

	for {
		s.runCycleSafe(ctx)

		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopping", "reason", ctx.Err())
			return
		case <-time.After(s.interval):
		}
	}
}

// runCycleSafe isolates one cycle: a panic or error inside it is logged
// and the previous snapshot stays live.
func (s *Scheduler) runCycleSafe(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in offer cycle, keeping previous snapshot", "panic", r)
		}
	}()

	if err := s.RunCycle(ctx); err != nil {
		slog.Error("Offer cycle failed, keeping previous snapshot", "error", err)
	}
}

// RunCycle executes exactly one fetch→enrich→validate→publish pass.
func (s *Scheduler) RunCycle(ctx context.Context) error {
	start := time.Now()
	slog.Info("Starting offer fetch cycle", "queries", len(s.queries))

	results := s.fetcher.FetchAll(ctx, s.queries)
	slog.Info("Fetched raw results", "count", len(results))

	enrichments := s.enricher.EnrichAll(ctx, results)

	offers, stats := s.validator.BuildOffers(results, enrichments, start)
	slog.Info("Validated offers",
		"accepted", stats.Accepted,
		"rejectedNoURL", stats.RejectedNoURL,
		"rejectedDuplicate", stats.RejectedDuplicate,
		"rejectedPrice", stats.RejectedPrice,
		"rejectedInvalid", stats.RejectedInvalid)

	published, err := s.store.Publish(ctx, offers)
	if err != nil {
		// Memory already holds the new snapshot; only the mirror write
		// failed. Logged here, retried on the next successful cycle.
		return err
	}

	slog.Info("Offer cycle complete",
		"published", published,
		"offers", len(offers),
		"took", time.Since(start).Round(time.Millisecond))
	return nil
}
