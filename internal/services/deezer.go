// Deezer search API [Searcher] implementation
//
// Uses the public, unauthenticated https://api.deezer.com/search endpoint.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/listensync/internal/shared"
)

const (
	defaultDeezerBaseURL = "https://api.deezer.com"
	// Deezer allows 50 requests per 5 seconds per client.
	defaultDeezerRateLimit = 10.0
)

type deezerArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type deezerAlbum struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// DeezerTrack is one element of a Deezer search response.
type DeezerTrack struct {
	ID       int64        `json:"id"`
	Title    string       `json:"title"`
	Link     string       `json:"link"`
	Duration int          `json:"duration"`
	Artist   deezerArtist `json:"artist"`
	Album    deezerAlbum  `json:"album"`
}

// DeezerError is the error object Deezer returns, with status 200, for quota and parameter problems.
type DeezerError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *DeezerError) Error() string {
	return fmt.Sprintf("deezer API error %d (%s): %s", e.Code, e.Type, e.Message)
}

type deezerSearchResponse struct {
	Data  []DeezerTrack `json:"data"`
	Total int           `json:"total"`
	Error *DeezerError  `json:"error,omitempty"`
}

// DeezerService implements [Searcher] against the Deezer search API.
//
// Requests are rate limited and retried with the configured fixed-delay policy.
type DeezerService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	policy     shared.RetryPolicy
	logger     *log.Logger
}

// DeezerOpts contains configuration options for creating a [DeezerService].
type DeezerOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	RateLimit  float64 // requests per second
	Timeout    time.Duration
	Retry      shared.RetryPolicy
	Logger     *log.Logger
}

// NewDeezerService creates a Deezer search client, filling unset options with defaults.
func NewDeezerService(opts DeezerOpts) *DeezerService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultDeezerBaseURL
	}
	if opts.HTTPClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		opts.HTTPClient = &http.Client{Timeout: timeout}
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultDeezerRateLimit
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &DeezerService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		policy:     opts.Retry,
		logger:     shared.WithLogger(opts.Logger, "component", "deezer"),
	}
}

// Name returns the service name.
func (d *DeezerService) Name() string {
	return "Deezer"
}

// Search calls GET /search?q={query} and returns the matches in Deezer's ranking order.
func (d *DeezerService) Search(ctx context.Context, query string) ([]SearchResult, error) {
	policy := d.policy
	policy.OnRetry = func(attempt int, err error) {
		d.logger.Warn("search request failed", "attempt", attempt, "max", policy.MaxAttempts, "query", query, "err", err)
	}

	resp, err := shared.Retry(ctx, policy, func(ctx context.Context) (*deezerSearchResponse, error) {
		return d.doSearch(ctx, query)
	})
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, len(resp.Data))
	for i, t := range resp.Data {
		results[i] = SearchResult{
			ID:       t.ID,
			Title:    t.Title,
			Artist:   t.Artist.Name,
			Album:    t.Album.Title,
			Duration: t.Duration,
			Link:     t.Link,
		}
	}

	d.logger.Debug("search response", "query", query, "results", len(results), "total", resp.Total)
	return results, nil
}

func (d *DeezerService) doSearch(ctx context.Context, query string) (*deezerSearchResponse, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/search?q=%s", d.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deezer API error: status %d", resp.StatusCode)
	}

	var result deezerSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &result, nil
}
