package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pauljones0/offer-catalog/internal/models"
)

func sampleOffers() []models.Offer {
	price := 200.0
	return []models.Offer{
		{
			ID:         "https://example.com/u1",
			Title:      "Hotel Deal",
			Summary:    "Nice hotel",
			Category:   models.CategoryHotel,
			Location:   "Paris",
			Price:      &price,
			OfferPrice: 120,
			Currency:   "USD",
			Source:     "tavily",
			FetchedAt:  time.Now().UTC().Truncate(time.Second),
		},
	}
}

func TestFileMirror_SaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offers_cache.json")
	mirror := NewFileMirror(path)
	ctx := context.Background()

	if err := mirror.Save(ctx, sampleOffers()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := mirror.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("Expected 1 offer, got %d", len(loaded))
	}
	got := loaded[0]
	if got.ID != "https://example.com/u1" || got.OfferPrice != 120 || got.Currency != "USD" {
		t.Errorf("Roundtrip mismatch: %+v", got)
	}
	if got.Price == nil || *got.Price != 200 {
		t.Errorf("Expected original price 200, got %v", got.Price)
	}
}

func TestFileMirror_LoadMissingFile(t *testing.T) {
	mirror := NewFileMirror(filepath.Join(t.TempDir(), "nonexistent.json"))
	offers, err := mirror.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() of missing file should not error, got %v", err)
	}
	if offers != nil {
		t.Errorf("Expected nil offers, got %v", offers)
	}
}

func TestFileMirror_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offers_cache.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileMirror(path).Load(context.Background()); err == nil {
		t.Error("Load() should report a corrupt cache file")
	}
}

// A crash between the temp write and the rename must leave the previous
// durable copy intact; a crash after a completed Save must reload a
// structurally valid snapshot.
func TestFileMirror_CrashSafety(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "offers_cache.json")
	mirror := NewFileMirror(path)
	ctx := context.Background()

	if err := mirror.Save(ctx, sampleOffers()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Simulate a writer that died before its rename: an orphaned temp
	// file sits beside the committed copy.
	orphan := filepath.Join(dir, "offers_cache.json.tmp-crash")
	if err := os.WriteFile(orphan, []byte(`[{"id": "https://examp`), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := mirror.Load(ctx)
	if err != nil {
		t.Fatalf("Load() after simulated crash error = %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "https://example.com/u1" {
		t.Errorf("Expected last committed snapshot to survive, got %+v", loaded)
	}

	// Offer invariants hold on the reloaded copy.
	for _, o := range loaded {
		if o.OfferPrice <= 0 {
			t.Errorf("Reloaded offer %s has non-positive offer_price", o.ID)
		}
		if len(o.Currency) != 3 {
			t.Errorf("Reloaded offer %s has invalid currency %q", o.ID, o.Currency)
		}
		if o.Price != nil && *o.Price < o.OfferPrice {
			t.Errorf("Reloaded offer %s has original price below offer price", o.ID)
		}
	}
}

func TestFileMirror_SaveOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "offers_cache.json")
	mirror := NewFileMirror(path)
	ctx := context.Background()

	if err := mirror.Save(ctx, sampleOffers()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second := sampleOffers()
	second[0].ID = "https://example.com/u2"
	if err := mirror.Save(ctx, second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := mirror.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "https://example.com/u2" {
		t.Errorf("Expected second snapshot only, got %+v", loaded)
	}

	// No temp files are left behind after successful commits.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("Leftover temp file %s after successful save", e.Name())
		}
	}
}
