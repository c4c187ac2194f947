// Package pixabay is the fetch client for the Pixabay image search API.
// It builds the search request, optionally serves it from the response
// cache and reduces every failure to ErrFetchFailed.
package pixabay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/pixabay-gallery/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for search requests.
var (
	pixabayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_pixabay_requests_total",
		Help: "Total Pixabay search requests by outcome",
	}, []string{"status"})

	pixabayRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gallery_pixabay_request_duration_seconds",
		Help:    "Pixabay search duration in seconds, cache hits included",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	})

	pixabayErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_pixabay_errors_total",
		Help: "Total failed Pixabay searches by error class",
	}, []string{"class"})
)

// Search parameters fixed by the gallery.
const (
	DefaultBaseURL     = "https://pixabay.com/api/"
	DefaultImageType   = "photo"
	DefaultOrientation = "horizontal"
	DefaultPerPage     = 40

	// Pixabay rejects per_page outside this range.
	MinPerPage = 3
	MaxPerPage = 200
)

// Config holds the client configuration.
type Config struct {
	// BaseURL of the search endpoint.
	BaseURL string

	// APIKey is sent as the "key" parameter (REQUIRED).
	APIKey string

	// Fixed filters.
	ImageType   string
	Orientation string
	SafeSearch  bool
	PerPage     int

	// HTTPTimeout bounds one upstream call; 0 disables the timeout.
	HTTPTimeout time.Duration

	// Cache is optional. Successful bodies are stored for CacheTTL.
	Cache    *cache.Manager
	CacheTTL time.Duration
}

// DefaultConfig returns the gallery's fixed search configuration.
func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		APIKey:      apiKey,
		ImageType:   DefaultImageType,
		Orientation: DefaultOrientation,
		SafeSearch:  true,
		PerPage:     DefaultPerPage,
		HTTPTimeout: 30 * time.Second,
		CacheTTL:    cache.DefaultTTL,
	}
}

// Client performs Pixabay searches.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager
	endpoint   *url.URL
	config     Config
	logger     zerolog.Logger
}

// New creates a new Pixabay client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	if cfg.PerPage < MinPerPage || cfg.PerPage > MaxPerPage {
		return nil, fmt.Errorf("per_page must be between %d and %d (got %d)", MinPerPage, MaxPerPage, cfg.PerPage)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	endpoint, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cache.DefaultTTL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		cache:    cfg.Cache,
		endpoint: endpoint,
		config:   cfg,
		logger:   log.With().Str("component", "pixabay-client").Logger(),
	}, nil
}

// PerPage returns the fixed page size sent with every request.
func (c *Client) PerPage() int {
	return c.config.PerPage
}

// Search fetches one page of results for query. Any failure is a *FetchError
// matching ErrFetchFailed.
func (c *Client) Search(ctx context.Context, query string, page int) (*ResultBatch, error) {
	startTime := time.Now()
	defer func() {
		pixabayRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	if page < 1 {
		return nil, c.fail(query, page, &FetchError{
			Class: ErrorClassClient,
			Err:   fmt.Errorf("invalid page %d", page),
		})
	}

	params := c.params(query, page)

	body, ferr := c.fetch(ctx, params)
	if ferr != nil {
		return nil, c.fail(query, page, ferr)
	}

	var data searchResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, c.fail(query, page, &FetchError{Class: ErrorClassDecode, Err: err})
	}

	batch := data.toBatch()
	c.logger.Debug().
		Str("query", query).
		Int("page", page).
		Int("items", len(batch.Items)).
		Int("total_hits", batch.TotalCount).
		Msg("Search page fetched")

	return batch, nil
}

// params builds the query string. The fixed filters are always sent.
func (c *Client) params(query string, page int) url.Values {
	q := url.Values{}
	q.Set("key", c.config.APIKey)
	q.Set("q", query)
	q.Set("image_type", c.config.ImageType)
	q.Set("orientation", c.config.Orientation)
	q.Set("safesearch", strconv.FormatBool(c.config.SafeSearch))
	q.Set("per_page", strconv.Itoa(c.config.PerPage))
	q.Set("page", strconv.Itoa(page))
	return q
}

// fetch returns the raw body for params, from cache when possible.
func (c *Client) fetch(ctx context.Context, params url.Values) ([]byte, *FetchError) {
	cacheKey := cache.CacheKey{
		Endpoint:    c.endpoint.Path,
		QueryParams: params,
	}

	if c.cache != nil {
		entry, err := c.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			pixabayRequestsTotal.WithLabelValues("cache_hit").Inc()
			c.logger.Debug().Str("key", cacheKey.String()).Msg("Cache hit")
			return entry.Data, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Msg("Cache get error")
		}
	}

	u := *c.endpoint
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &FetchError{Class: ErrorClassClient, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		pixabayRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, &FetchError{Class: ErrorClassNetwork, Err: err}
	}
	defer resp.Body.Close()

	pixabayRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Pixabay explains rejections in a short plain-text body.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		var cause error
		if msg := strings.TrimSpace(string(detail)); msg != "" {
			cause = errors.New(msg)
		}
		return nil, &FetchError{
			StatusCode: resp.StatusCode,
			Class:      classifyStatus(resp.StatusCode),
			Err:        cause,
		}
	}

	if c.cache == nil {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &FetchError{StatusCode: resp.StatusCode, Class: ErrorClassNetwork, Err: err}
		}
		return body, nil
	}

	entry, err := cache.ResponseToEntry(resp, c.config.CacheTTL)
	if err != nil {
		return nil, &FetchError{StatusCode: resp.StatusCode, Class: ErrorClassNetwork, Err: err}
	}
	if json.Valid(entry.Data) {
		if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		}
	}
	return entry.Data, nil
}

// fail logs and counts err before returning it.
func (c *Client) fail(query string, page int, err *FetchError) error {
	pixabayErrorsTotal.WithLabelValues(string(err.Class)).Inc()
	c.logger.Error().
		Err(err.Err).
		Str("query", query).
		Int("page", page).
		Int("status", err.StatusCode).
		Str("error_class", string(err.Class)).
		Msg("Pixabay search failed")
	return err
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
