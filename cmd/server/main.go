package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pauljones0/offer-catalog/internal/ai"
	"github.com/pauljones0/offer-catalog/internal/catalog"
	"github.com/pauljones0/offer-catalog/internal/config"
	"github.com/pauljones0/offer-catalog/internal/enrich"
	"github.com/pauljones0/offer-catalog/internal/fetch"
	"github.com/pauljones0/offer-catalog/internal/models"
	"github.com/pauljones0/offer-catalog/internal/scheduler"
	"github.com/pauljones0/offer-catalog/internal/search"
	"github.com/pauljones0/offer-catalog/internal/server"
	"github.com/pauljones0/offer-catalog/internal/storage"
)

func main() {
	slog.Info("Starting offer catalog service...")
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mirror, cleanup, err := newMirror(ctx, cfg)
	if err != nil {
		slog.Error("Critical error initializing durable storage", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	aiClient, err := ai.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		slog.Error("Critical error initializing Gemini client", "error", err)
		os.Exit(1)
	}

	store := catalog.NewStore(mirror)
	searcher := search.New(cfg.TavilyAPIKey, cfg.SearchMaxResults, cfg.SearchRateLimit)
	fetcher := fetch.New(searcher, cfg.CallTimeout, cfg.MaxFetchConcurrency)
	enricher := enrich.New(aiClient, aiClient, cfg.CallTimeout, cfg.MaxEnrichRetries)
	validator := catalog.NewValidator(cfg.PriceCeiling)

	sched := scheduler.New(models.DefaultQueries(), fetcher, enricher, validator, store, cfg.PollInterval)
	go sched.Run(ctx)

	srv := server.New(store)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		slog.Info("Received signal, shutting down gracefully...", "signal", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
	}()

	slog.Info("Listening on port", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Failed to listen and serve", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped.")
}

func newMirror(ctx context.Context, cfg *config.Config) (catalog.Mirror, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendFirestore:
		m, err := storage.NewFirestoreMirror(ctx, cfg.ProjectID)
		if err != nil {
			return nil, nil, err
		}
		return m, func() { m.Close() }, nil
	default:
		return storage.NewFileMirror(cfg.CacheFile), func() {}, nil
	}
}
