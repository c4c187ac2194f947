package gallery

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Sternrassler/pixabay-gallery/pkg/pagination"
	"github.com/Sternrassler/pixabay-gallery/pkg/pixabay"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(from, to int) []pixabay.ResultItem {
	var out []pixabay.ResultItem
	for i := from; i <= to; i++ {
		out = append(out, pixabay.ResultItem{
			ID:           i,
			ThumbnailURL: fmt.Sprintf("https://cdn.example/%d_640.jpg", i),
			FullSizeURL:  fmt.Sprintf("https://cdn.example/%d_1280.jpg", i),
			Tags:         "cat, animal",
			Likes:        i * 3,
			Views:        i * 100,
			Comments:     i,
			Downloads:    i * 10,
		})
	}
	return out
}

func newTestSink() (*Sink, *Board, *Lightbox) {
	board := NewBoard()
	lightbox := NewLightbox()
	return NewSink(board, lightbox, zerolog.Nop()), board, lightbox
}

func TestEntriesFrom(t *testing.T) {
	entries := EntriesFrom(items(1, 2))
	require.Len(t, entries, 2)

	assert.Equal(t, "https://cdn.example/1_640.jpg", entries[0].ThumbnailURL)
	assert.Equal(t, "https://cdn.example/1_1280.jpg", entries[0].FullSizeURL)
	assert.Equal(t, "cat, animal", entries[0].Alt)
	assert.Equal(t, 200, entries[1].Views)
	assert.Equal(t, 20, entries[1].Downloads)

	assert.Empty(t, EntriesFrom(nil))
}

func TestSink_ReplaceThenAppend(t *testing.T) {
	sink, board, lightbox := newTestSink()

	added := sink.Render(items(1, 40), pagination.ModeReplace, true)
	assert.Len(t, added, 40)
	assert.Equal(t, 40, board.Len())
	assert.True(t, board.LoadMoreVisible())
	assert.Equal(t, 40, lightbox.Bound())

	added = sink.Render(items(41, 80), pagination.ModeAppend, true)
	assert.Len(t, added, 40)
	assert.Equal(t, 80, board.Len())
	assert.Equal(t, 80, lightbox.Bound())

	sink.Render(items(81, 120), pagination.ModeAppend, false)
	assert.Equal(t, 120, board.Len())
	assert.False(t, board.LoadMoreVisible())
	assert.Equal(t, 120, lightbox.Bound())
	assert.Equal(t, 3, lightbox.Rebinds())

	entries := board.Entries()
	assert.Equal(t, "https://cdn.example/1_1280.jpg", entries[0].FullSizeURL)
	assert.Equal(t, "https://cdn.example/120_1280.jpg", entries[119].FullSizeURL)
}

func TestSink_ResubmitReplaces(t *testing.T) {
	sink, board, lightbox := newTestSink()

	sink.Render(items(1, 80), pagination.ModeReplace, true)
	sink.Render(items(500, 510), pagination.ModeReplace, false)

	assert.Equal(t, 11, board.Len())
	assert.False(t, lightbox.IsBound("https://cdn.example/1_1280.jpg"))
	assert.True(t, lightbox.IsBound("https://cdn.example/500_1280.jpg"))
	assert.Equal(t, 11, lightbox.Bound())
}

func TestSink_Clear(t *testing.T) {
	sink, board, lightbox := newTestSink()

	sink.Render(items(1, 40), pagination.ModeReplace, true)
	sink.Clear()

	assert.Zero(t, board.Len())
	assert.False(t, board.LoadMoreVisible())
	assert.Zero(t, lightbox.Bound())
}

func TestSink_HideLoadMore(t *testing.T) {
	sink, board, _ := newTestSink()

	sink.Render(items(1, 40), pagination.ModeReplace, true)
	sink.HideLoadMore()

	assert.Equal(t, 40, board.Len())
	assert.False(t, board.LoadMoreVisible())
}

func TestSink_NilViewer(t *testing.T) {
	board := NewBoard()
	sink := NewSink(board, nil, zerolog.Nop())

	assert.NotPanics(t, func() {
		sink.Render(items(1, 3), pagination.ModeReplace, false)
		sink.Clear()
	})
}

func TestLightbox_RebindIdempotent(t *testing.T) {
	lightbox := NewLightbox()
	entries := EntriesFrom(items(1, 5))

	for i := 0; i < 10; i++ {
		lightbox.Rebind(DefaultSelector, entries)
	}
	assert.Equal(t, 5, lightbox.Bound())
	assert.Equal(t, 10, lightbox.Rebinds())

	// duplicate entries collapse onto one binding
	lightbox.Rebind("", append(entries, entries...))
	assert.Equal(t, 5, lightbox.Bound())
}

func TestLightbox_Options(t *testing.T) {
	lightbox := NewLightbox()

	opts := lightbox.Options()
	assert.Equal(t, ".gallery a", opts.Selector)
	assert.Equal(t, "alt", opts.CaptionsData)
	assert.Equal(t, "bottom", opts.CaptionPosition)

	lightbox.Rebind("#results a", nil)
	assert.Equal(t, "#results a", lightbox.Options().Selector)

	lightbox.Rebind("", nil)
	assert.Equal(t, "#results a", lightbox.Options().Selector)
}

func TestRenderCards(t *testing.T) {
	html, err := RenderCards(EntriesFrom(items(1, 2)))
	require.NoError(t, err)

	out := string(html)
	assert.Equal(t, 2, strings.Count(out, `class="photo-card"`))
	assert.Contains(t, out, `<a href="https://cdn.example/1_1280.jpg">`)
	assert.Contains(t, out, `src="https://cdn.example/2_640.jpg"`)
	assert.Contains(t, out, `alt="cat, animal"`)
	assert.Contains(t, out, `loading="lazy"`)
	assert.Contains(t, out, "<b>Likes</b> 3")
	assert.Contains(t, out, "<b>Views</b> 200")
	assert.Contains(t, out, "<b>Comments</b> 2")
	assert.Contains(t, out, "<b>Downloads</b> 20")
}

func TestRenderCards_Escapes(t *testing.T) {
	html, err := RenderCards([]Entry{{
		ThumbnailURL: "https://cdn.example/x.jpg",
		FullSizeURL:  "javascript:alert(1)",
		Alt:          `"><script>alert(1)</script>`,
	}})
	require.NoError(t, err)

	out := string(html)
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "javascript:alert")
}

func TestRenderCards_Empty(t *testing.T) {
	html, err := RenderCards(nil)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(html)))
}

func TestBoard_Markup(t *testing.T) {
	board := NewBoard()
	board.Replace(EntriesFrom(items(1, 3)))

	html, err := board.Markup()
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(html), `class="photo-card"`))
}

func TestBoard_EntriesIsCopy(t *testing.T) {
	board := NewBoard()
	board.Replace(EntriesFrom(items(1, 2)))

	entries := board.Entries()
	entries[0].Alt = "changed"

	assert.Equal(t, "cat, animal", board.Entries()[0].Alt)
}
