package widget

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sternrassler/pixabay-gallery/internal/testutil"
	"github.com/Sternrassler/pixabay-gallery/pkg/cache"
	"github.com/Sternrassler/pixabay-gallery/pkg/pixabay"
	"github.com/Sternrassler/pixabay-gallery/pkg/ratelimit"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIntegration_CachedSearchAcrossSessions runs two visitors through the
// full stack: limiter, cached client, controller and sink.
func TestIntegration_CachedSearchAcrossSessions(t *testing.T) {
	mock := testutil.NewMockPixabay()
	defer mock.Close()
	mock.SetTotal("mountains", 90)

	store, err := cache.OpenSQLite(filepath.Join(t.TempDir(), "cache.db"), zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	cfg := pixabay.DefaultConfig("test-key")
	cfg.BaseURL = mock.URL()
	cfg.Cache = cache.NewManager(store)
	client, err := pixabay.New(cfg)
	require.NoError(t, err)

	interval := 20 * time.Millisecond
	limiter := ratelimit.NewLimiter(interval, zerolog.Nop())
	registry := NewRegistry(DefaultRegistryConfig(), client, limiter, zerolog.Nop())
	ctx := context.Background()

	first, _ := registry.Acquire("")
	start := time.Now()
	for _, step := range []func() Update{
		func() Update { return first.Submit(ctx, "mountains") },
		func() Update { return first.LoadMore(ctx, "mountains") },
		func() Update { return first.LoadMore(ctx, "mountains") },
	} {
		up := step()
		require.NoError(t, up.Err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 2*interval)
	assert.Equal(t, 90, first.Board().Len())
	assert.Equal(t, StateNoMoreResults, first.State())
	assert.Equal(t, 3, mock.RequestCount())

	// the second visitor is served from the response cache
	second, _ := registry.Acquire("")
	up := second.Submit(ctx, "mountains")
	require.NoError(t, up.Err)
	assert.Len(t, up.Entries, 40)
	assert.Equal(t, 3, mock.RequestCount())

	markup, err := second.Board().Markup()
	require.NoError(t, err)
	assert.Contains(t, string(markup), "https://cdn.pixabay.example/1_1280.jpg")
}
