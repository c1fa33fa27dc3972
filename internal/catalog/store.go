package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pauljones0/offer-catalog/internal/models"
)

// Mirror is the durable copy of the live snapshot: read once at startup,
// atomically overwritten after every successful publish.
type Mirror interface {
	Load(ctx context.Context) ([]models.Offer, error)
	Save(ctx context.Context, offers []models.Offer) error
}

// Reason explains an empty filter result.
type Reason string

const (
	ReasonUnknownCategory Reason = "unknown_category"
	ReasonNoMatch         Reason = "no_match"
)

// FilterResult distinguishes a genuine match list from the two empty
// outcomes, so callers can decide whether to fall back to a live search.
type FilterResult struct {
	Offers []models.Offer
	Reason Reason
}

// Store owns the single live snapshot. Updates go through one atomic
// pointer swap, so any number of concurrent readers never observe a
// half-built snapshot. The scheduler is the only writer.
type Store struct {
	live   atomic.Pointer[models.Snapshot]
	mirror Mirror
}

func NewStore(mirror Mirror) *Store {
	s := &Store{mirror: mirror}
	s.live.Store(&models.Snapshot{})
	return s
}

// Warm loads the durable copy into memory so reads succeed before the
// first cycle completes. A missing durable copy is not an error.
func (s *Store) Warm(ctx context.Context) error {
	offers, err := s.mirror.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load durable snapshot: %w", err)
	}
	if len(offers) == 0 {
		return nil
	}
	s.live.Store(&models.Snapshot{Offers: offers, PublishedAt: time.Now()})
	slog.Info("Warm start from durable snapshot", "offers", len(offers))
	return nil
}

// Publish swaps in the candidate collection as the new live snapshot and
// writes it to durable storage. An empty candidate is a no-op: the
// previous snapshot stays live, because stale-but-valid data beats no
// data. Returns true when a swap happened. A mirror write failure leaves
// the in-memory snapshot live and is retried implicitly on the next
// successful cycle.
func (s *Store) Publish(ctx context.Context, offers []models.Offer) (bool, error) {
	if len(offers) == 0 {
		slog.Info("Empty candidate collection, keeping previous snapshot", "live", s.live.Load().Len())
		return false, nil
	}

	snapshot := &models.Snapshot{Offers: offers, PublishedAt: time.Now()}
	s.live.Store(snapshot)

	if err := s.mirror.Save(ctx, offers); err != nil {
		return true, fmt.Errorf("failed to mirror snapshot: %w", err)
	}
	return true, nil
}

// GetAll returns the live snapshot. Callers must not mutate it.
func (s *Store) GetAll() *models.Snapshot {
	return s.live.Load()
}

// Filter returns offers whose category equals the request and whose
// location contains the requested location as a case-insensitive
// substring. An unknown category and a valid-but-empty result are
// reported with distinct reasons.
func (s *Store) Filter(category, location string) FilterResult {
	cat, ok := models.ParseCategory(category)
	if !ok {
		return FilterResult{Reason: ReasonUnknownCategory}
	}

	needle := strings.ToLower(strings.TrimSpace(location))
	var matches []models.Offer
	for _, offer := range s.live.Load().Offers {
		if offer.Category != cat {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(offer.Location), needle) {
			continue
		}
		matches = append(matches, offer)
	}

	if len(matches) == 0 {
		return FilterResult{Reason: ReasonNoMatch}
	}
	return FilterResult{Offers: matches}
}
