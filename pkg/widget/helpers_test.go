package widget

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/pixabay-gallery/internal/testutil"
	"github.com/Sternrassler/pixabay-gallery/pkg/pagination"
	"github.com/Sternrassler/pixabay-gallery/pkg/pixabay"
	"github.com/Sternrassler/pixabay-gallery/pkg/ratelimit"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testInterval = 2 * time.Millisecond

func newTestClient(t *testing.T, mock *testutil.MockPixabay) *pixabay.Client {
	t.Helper()

	cfg := pixabay.DefaultConfig("test-key")
	cfg.BaseURL = mock.URL()
	client, err := pixabay.New(cfg)
	require.NoError(t, err)
	return client
}

// newTestSession returns a session talking to a fresh mock endpoint.
func newTestSession(t *testing.T) (*Session, *testutil.MockPixabay) {
	t.Helper()

	mock := testutil.NewMockPixabay()
	t.Cleanup(mock.Close)

	limiter := ratelimit.NewLimiter(testInterval, zerolog.Nop())
	session := NewSession("test", newTestClient(t, mock), limiter, pixabay.DefaultPerPage, zerolog.Nop())
	t.Cleanup(session.Close)

	return session, mock
}

// gatedFetcher blocks searches for gated queries until the gate is opened.
type gatedFetcher struct {
	next    pagination.Fetcher
	mu      sync.Mutex
	gates   map[string]chan struct{}
	entered chan string
}

func newGatedFetcher(next pagination.Fetcher) *gatedFetcher {
	return &gatedFetcher{
		next:    next,
		gates:   make(map[string]chan struct{}),
		entered: make(chan string, 16),
	}
}

func (g *gatedFetcher) gate(query string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[query] = ch
	return ch
}

func (g *gatedFetcher) Search(ctx context.Context, query string, page int) (*pixabay.ResultBatch, error) {
	g.mu.Lock()
	gate := g.gates[query]
	g.mu.Unlock()

	if gate != nil {
		g.entered <- query
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.next.Search(ctx, query, page)
}

// blockingThrottle never admits a caller; it returns when ctx ends.
type blockingThrottle struct {
	waiting chan struct{}
}

func (b *blockingThrottle) Wait(ctx context.Context) error {
	b.waiting <- struct{}{}
	<-ctx.Done()
	return ctx.Err()
}

type countingThrottle struct {
	n atomic.Int32
}

func (c *countingThrottle) Wait(ctx context.Context) error {
	c.n.Add(1)
	return ctx.Err()
}
