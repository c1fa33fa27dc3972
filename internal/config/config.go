package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendFile      = "file"
	BackendFirestore = "firestore"
)

type Config struct {
	Port                string
	TavilyAPIKey        string
	GeminiAPIKey        string
	GeminiModel         string
	PollInterval        time.Duration
	CallTimeout         time.Duration
	PriceCeiling        float64
	MaxFetchConcurrency int
	MaxEnrichRetries    int
	SearchMaxResults    int
	SearchRateLimit     float64
	CacheFile           string
	StorageBackend      string
	ProjectID           string
}

func Load() (*Config, error) {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	tavilyKey := os.Getenv("TAVILY_API_KEY")
	if tavilyKey == "" {
		return nil, fmt.Errorf("TAVILY_API_KEY environment variable is required but not set")
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		slog.Warn("GEMINI_API_KEY not set, summaries and price extraction will degrade")
	}

	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = "gemini-1.5-flash"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		slog.Info("Defaulting to port", "port", port)
	}

	pollInterval, err := durationEnv("POLL_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	callTimeout, err := durationEnv("CALL_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	priceCeiling := 1_000_000.0
	if v := os.Getenv("PRICE_CEILING"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid PRICE_CEILING %q: %v", v, err)
		}
		priceCeiling = parsed
	}

	maxFetch, err := intEnv("MAX_FETCH_CONCURRENCY", 5)
	if err != nil {
		return nil, err
	}

	maxRetries, err := intEnv("MAX_ENRICH_RETRIES", 2)
	if err != nil {
		return nil, err
	}

	maxResults, err := intEnv("SEARCH_MAX_RESULTS", 4)
	if err != nil {
		return nil, err
	}

	rateLimit := 5.0
	if v := os.Getenv("SEARCH_RATE_LIMIT"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid SEARCH_RATE_LIMIT %q: %v", v, err)
		}
		rateLimit = parsed
	}

	cacheFile := os.Getenv("CACHE_FILE")
	if cacheFile == "" {
		cacheFile = "offers_cache.json"
	}

	backend := os.Getenv("STORAGE_BACKEND")
	if backend == "" {
		backend = BackendFile
	}
	if backend != BackendFile && backend != BackendFirestore {
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q: must be %q or %q", backend, BackendFile, BackendFirestore)
	}

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if backend == BackendFirestore && projectID == "" {
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT is required when STORAGE_BACKEND=firestore")
	}

	return &Config{
		Port:                port,
		TavilyAPIKey:        tavilyKey,
		GeminiAPIKey:        geminiKey,
		GeminiModel:         geminiModel,
		PollInterval:        pollInterval,
		CallTimeout:         callTimeout,
		PriceCeiling:        priceCeiling,
		MaxFetchConcurrency: maxFetch,
		MaxEnrichRetries:    maxRetries,
		SearchMaxResults:    maxResults,
		SearchRateLimit:     rateLimit,
		CacheFile:           cacheFile,
		StorageBackend:      backend,
		ProjectID:           projectID,
	}, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	// Accept both bare seconds ("300") and Go durations ("5m").
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("invalid %s %q: must be positive", name, v)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", name, v)
	}
	return d, nil
}

func intEnv(name string, def int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", name, v)
	}
	return parsed, nil
}
