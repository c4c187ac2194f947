package pixabay

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sternrassler/pixabay-gallery/internal/testutil"
	"github.com/Sternrassler/pixabay-gallery/pkg/cache"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mock *testutil.MockPixabay) *Client {
	t.Helper()

	cfg := DefaultConfig("test-key")
	cfg.BaseURL = mock.URL()
	client, err := New(cfg)
	require.NoError(t, err)
	return client
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:     "missing api key",
			mutate:   func(c *Config) { c.APIKey = "" },
			errorMsg: "api key is required",
		},
		{
			name:     "page size too small",
			mutate:   func(c *Config) { c.PerPage = 2 },
			errorMsg: "per_page must be between 3 and 200 (got 2)",
		},
		{
			name:     "page size too large",
			mutate:   func(c *Config) { c.PerPage = 201 },
			errorMsg: "per_page must be between 3 and 200 (got 201)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("key")
			tt.mutate(&cfg)

			client, err := New(cfg)
			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Equal(t, tt.errorMsg, err.Error())
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("abc")

	assert.Equal(t, "abc", cfg.APIKey)
	assert.Equal(t, "https://pixabay.com/api/", cfg.BaseURL)
	assert.Equal(t, "photo", cfg.ImageType)
	assert.Equal(t, "horizontal", cfg.Orientation)
	assert.True(t, cfg.SafeSearch)
	assert.Equal(t, 40, cfg.PerPage)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
}

func TestSearch_SendsFixedParameters(t *testing.T) {
	mock := testutil.NewMockPixabay()
	defer mock.Close()
	mock.SetTotal("red cats & dogs", 5)

	client := newTestClient(t, mock)
	_, err := client.Search(context.Background(), "red cats & dogs", 2)
	require.NoError(t, err)

	got := mock.LastRequest()
	assert.Equal(t, "test-key", got.Get("key"))
	assert.Equal(t, "red cats & dogs", got.Get("q"))
	assert.Equal(t, "photo", got.Get("image_type"))
	assert.Equal(t, "horizontal", got.Get("orientation"))
	assert.Equal(t, "true", got.Get("safesearch"))
	assert.Equal(t, "40", got.Get("per_page"))
	assert.Equal(t, "2", got.Get("page"))
}

func TestSearch_MapsHits(t *testing.T) {
	mock := testutil.NewMockPixabay()
	defer mock.Close()
	mock.SetTotal("cats", 120)

	client := newTestClient(t, mock)
	batch, err := client.Search(context.Background(), "cats", 1)
	require.NoError(t, err)

	require.Len(t, batch.Items, 40)
	assert.Equal(t, 120, batch.TotalCount)

	first := batch.Items[0]
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "https://cdn.pixabay.example/1_640.jpg", first.ThumbnailURL)
	assert.Equal(t, "https://cdn.pixabay.example/1_1280.jpg", first.FullSizeURL)
	assert.Equal(t, "cats, photo 1", first.Tags)
	assert.Equal(t, 3, first.Likes)
	assert.Equal(t, 100, first.Views)
	assert.Equal(t, 1, first.Comments)
	assert.Equal(t, 10, first.Downloads)
}

func TestSearch_ZeroHits(t *testing.T) {
	mock := testutil.NewMockPixabay()
	defer mock.Close()

	client := newTestClient(t, mock)
	batch, err := client.Search(context.Background(), "zzzzxyznotfound", 1)
	require.NoError(t, err)

	assert.Empty(t, batch.Items)
	assert.Zero(t, batch.TotalCount)
}

func TestSearch_FailuresNormalized(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		class  ErrorClass
	}{
		{"bad request", http.StatusBadRequest, "[ERROR 400] invalid key", ErrorClassClient},
		{"too many requests", http.StatusTooManyRequests, "[ERROR 429] too many", ErrorClassRateLimit},
		{"server error", http.StatusInternalServerError, "", ErrorClassServer},
		{"bad body", http.StatusOK, "<html>not json</html>", ErrorClassDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockPixabay()
			defer mock.Close()
			mock.FailWith(tt.status, tt.body)

			client := newTestClient(t, mock)
			batch, err := client.Search(context.Background(), "cats", 1)

			assert.Nil(t, batch)
			require.ErrorIs(t, err, ErrFetchFailed)

			var fetchErr *FetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, tt.class, fetchErr.Class)
		})
	}
}

func TestSearch_NetworkFailure(t *testing.T) {
	mock := testutil.NewMockPixabay()
	client := newTestClient(t, mock)
	mock.Close()

	_, err := client.Search(context.Background(), "cats", 1)
	require.ErrorIs(t, err, ErrFetchFailed)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, ErrorClassNetwork, fetchErr.Class)
}

func TestSearch_InvalidPage(t *testing.T) {
	mock := testutil.NewMockPixabay()
	defer mock.Close()

	client := newTestClient(t, mock)
	_, err := client.Search(context.Background(), "cats", 0)

	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Zero(t, mock.RequestCount())
}

func TestSearch_ContextCancelled(t *testing.T) {
	mock := testutil.NewMockPixabay()
	defer mock.Close()
	mock.SetDelay(200 * time.Millisecond)

	client := newTestClient(t, mock)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Search(ctx, "cats", 1)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestSearch_ServesFromCache(t *testing.T) {
	mock := testutil.NewMockPixabay()
	defer mock.Close()
	mock.SetTotal("cats", 50)

	store, err := cache.OpenSQLite(filepath.Join(t.TempDir(), "cache.db"), zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	cfg := DefaultConfig("test-key")
	cfg.BaseURL = mock.URL()
	cfg.Cache = cache.NewManager(store)
	client, err := New(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := client.Search(ctx, "cats", 1)
	require.NoError(t, err)
	second, err := client.Search(ctx, "cats", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, mock.RequestCount())
	assert.Equal(t, first, second)

	// a different page is a different key
	_, err = client.Search(ctx, "cats", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, mock.RequestCount())
}

func TestSearch_FailuresAreNotCached(t *testing.T) {
	mock := testutil.NewMockPixabay()
	defer mock.Close()
	mock.SetTotal("cats", 10)
	mock.FailWith(http.StatusServiceUnavailable, "down")

	store, err := cache.OpenSQLite(filepath.Join(t.TempDir(), "cache.db"), zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	cfg := DefaultConfig("test-key")
	cfg.BaseURL = mock.URL()
	cfg.Cache = cache.NewManager(store)
	client, err := New(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = client.Search(ctx, "cats", 1)
	require.ErrorIs(t, err, ErrFetchFailed)

	mock.Recover()
	batch, err := client.Search(ctx, "cats", 1)
	require.NoError(t, err)
	assert.Len(t, batch.Items, 10)
	assert.Equal(t, 2, mock.RequestCount())
}
