package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultEndpoint = "https://api.tavily.com/search"

// ErrRateLimited is returned when the provider rejects a call for quota
// reasons (HTTP 429).
var ErrRateLimited = errors.New("search provider rate limited")

// Searcher is the external search capability. A failed call is scoped to
// that call; callers degrade it to an empty result list.
type Searcher interface {
	Search(ctx context.Context, query string) (*Response, error)
}

// Result is one search hit as returned by the provider.
type Result struct {
	URL        string  `json:"url"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content,omitempty"`
	Score      float64 `json:"score,omitempty"`
}

// Response is a full provider response. Images is a batch-level list the
// provider returns alongside the results, matched positionally by the
// validator.
type Response struct {
	Results []Result `json:"results"`
	Images  []string `json:"images,omitempty"`
}

type searchRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	IncludeRawContent bool   `json:"include_raw_content"`
	IncludeImages     bool   `json:"include_images"`
}

type Client struct {
	apiKey     string
	endpoint   string
	maxResults int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a Tavily client. ratePerSec bounds the request rate across
// all concurrent callers.
func New(apiKey string, maxResults int, ratePerSec float64) *Client {
	return &Client{
		apiKey:     apiKey,
		endpoint:   defaultEndpoint,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}
}

// WithEndpoint overrides the API endpoint. Used by tests.
func (c *Client) WithEndpoint(endpoint string) *Client {
	c.endpoint = endpoint
	return c
}

func (c *Client) Search(ctx context.Context, query string) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(searchRequest{
		APIKey:            c.apiKey,
		Query:             query,
		MaxResults:        c.maxResults,
		IncludeRawContent: true,
		IncludeImages:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, fmt.Errorf("failed to read search response (status: %s): %w", resp.Status, readErr)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w (status: %s)", ErrRateLimited, resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search request failed, status: %s, response: %.200s", resp.Status, string(body))
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search response: %w", err)
	}
	return &out, nil
}
