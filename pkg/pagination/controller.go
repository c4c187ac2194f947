package pagination

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Sternrassler/pixabay-gallery/pkg/pixabay"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_pages_fetched_total",
		Help: "Total result pages fetched by commit mode",
	}, []string{"mode"})

	searchOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_search_outcomes_total",
		Help: "Total pagination outcomes by status",
	}, []string{"status"})

	staleResponsesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_stale_responses_total",
		Help: "Total responses dropped because a newer search had started",
	})
)

// Fetcher fetches one page of results. *pixabay.Client implements it.
type Fetcher interface {
	Search(ctx context.Context, query string, page int) (*pixabay.ResultBatch, error)
}

// Throttle delays a caller until an upstream call is allowed. *ratelimit.Limiter implements it.
type Throttle interface {
	Wait(ctx context.Context) error
}

// Controller tracks the page cursor of one search session.
type Controller struct {
	mu         sync.Mutex
	fetcher    Fetcher
	throttle   Throttle
	state      State
	active     bool
	exhausted  bool
	generation uint64
	logger     zerolog.Logger
}

// NewController creates a controller. A nil throttle disables throttling;
// a non-positive perPage falls back to pixabay.DefaultPerPage.
func NewController(fetcher Fetcher, throttle Throttle, perPage int, logger zerolog.Logger) *Controller {
	if perPage <= 0 {
		perPage = pixabay.DefaultPerPage
	}
	return &Controller{
		fetcher:  fetcher,
		throttle: throttle,
		state:    State{PerPage: perPage},
		logger:   logger,
	}
}

// State returns a snapshot of the pagination state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StartSearch resets to page 1 and fetches it.
func (c *Controller) StartSearch(ctx context.Context, query string) (*Outcome, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		c.logger.Warn().Msg("Empty search query rejected")
		return nil, ErrEmptyQuery
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	batch, err := c.fetch(ctx, q, 1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return nil, c.stale(q, 1)
	}

	if err != nil {
		c.active = false
		c.exhausted = false
		c.state = State{PerPage: c.state.PerPage}
		return nil, err
	}

	c.active = true
	c.state = State{
		Query:       q,
		CurrentPage: 1,
		TotalCount:  batch.TotalCount,
		PerPage:     c.state.PerPage,
	}

	out := &Outcome{
		Mode:       ModeReplace,
		Query:      q,
		Page:       1,
		Items:      batch.Items,
		TotalCount: batch.TotalCount,
	}

	if len(batch.Items) == 0 {
		c.exhausted = true
		out.Status = StatusNotFound
	} else {
		out.HasMore = c.state.HasMore()
		c.exhausted = !out.HasMore
		out.Status = StatusFound
	}

	pagesFetchedTotal.WithLabelValues(out.Mode.String()).Inc()
	c.record(out)
	return out, nil
}

// LoadNextPage advances to the next page and fetches it. When no search is
// active, or query differs from the active one, it starts a new search instead.
// Once the stream is exhausted further calls re-confirm StatusExhausted without
// contacting the fetcher.
func (c *Controller) LoadNextPage(ctx context.Context, query string) (*Outcome, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		c.logger.Warn().Msg("Empty search query rejected")
		return nil, ErrEmptyQuery
	}

	c.mu.Lock()
	if !c.active || q != c.state.Query {
		c.mu.Unlock()
		return c.StartSearch(ctx, q)
	}

	if c.exhausted || !c.state.HasMore() {
		c.exhausted = true
		out := &Outcome{
			Status:     StatusExhausted,
			Mode:       ModeAppend,
			Query:      q,
			Page:       c.state.CurrentPage,
			TotalCount: c.state.TotalCount,
		}
		c.mu.Unlock()
		c.record(out)
		return out, nil
	}

	c.state.CurrentPage++
	page := c.state.CurrentPage
	gen := c.generation
	c.mu.Unlock()

	batch, err := c.fetch(ctx, q, page)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return nil, c.stale(q, page)
	}

	if err != nil {
		// retry the same page on the next trigger
		if c.state.CurrentPage == page {
			c.state.CurrentPage--
		}
		return nil, err
	}

	c.state.TotalCount = batch.TotalCount

	out := &Outcome{
		Mode:       ModeAppend,
		Query:      q,
		Page:       page,
		TotalCount: batch.TotalCount,
	}

	if len(batch.Items) == 0 || page > c.state.MaxPage() {
		c.exhausted = true
		out.Status = StatusExhausted
		c.record(out)
		return out, nil
	}

	out.Items = batch.Items
	out.HasMore = c.state.HasMore()
	c.exhausted = !out.HasMore
	if out.HasMore {
		out.Status = StatusMore
	} else {
		out.Status = StatusExhausted
	}

	pagesFetchedTotal.WithLabelValues(out.Mode.String()).Inc()
	c.record(out)
	return out, nil
}

// fetch runs one throttled upstream call.
func (c *Controller) fetch(ctx context.Context, query string, page int) (*pixabay.ResultBatch, error) {
	if c.throttle != nil {
		if err := c.throttle.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limiter: %w", err)
		}
	}

	batch, err := c.fetcher.Search(ctx, query, page)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", page, err)
	}
	return batch, nil
}

func (c *Controller) stale(query string, page int) error {
	staleResponsesTotal.Inc()
	c.logger.Warn().
		Str("query", query).
		Int("page", page).
		Msg("Dropping response of superseded search")
	return ErrStaleResponse
}

func (c *Controller) record(out *Outcome) {
	searchOutcomesTotal.WithLabelValues(out.Status.String()).Inc()
	c.logger.Info().
		Str("query", out.Query).
		Int("page", out.Page).
		Int("items", len(out.Items)).
		Int("total_hits", out.TotalCount).
		Bool("has_more", out.HasMore).
		Str("status", out.Status.String()).
		Msg("Pagination outcome")
}
