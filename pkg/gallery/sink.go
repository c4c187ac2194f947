package gallery

import (
	"github.com/Sternrassler/pixabay-gallery/pkg/pagination"
	"github.com/Sternrassler/pixabay-gallery/pkg/pixabay"
	"github.com/rs/zerolog"
)

// Surface is where entries are displayed. *Board implements it.
type Surface interface {
	Replace(entries []Entry)
	Append(entries []Entry)
	Entries() []Entry
	SetLoadMoreVisible(visible bool)
}

// Viewer enlarges clicked entries. *Lightbox implements it.
type Viewer interface {
	Rebind(selector string, entries []Entry)
}

// Sink commits result pages to a surface.
type Sink struct {
	surface  Surface
	viewer   Viewer
	selector string
	logger   zerolog.Logger
}

// NewSink creates a sink. The viewer is scoped with DefaultSelector.
func NewSink(surface Surface, viewer Viewer, logger zerolog.Logger) *Sink {
	return &Sink{
		surface:  surface,
		viewer:   viewer,
		selector: DefaultSelector,
		logger:   logger,
	}
}

// Render commits items in mode, rebinds the viewer over everything on display
// and shows the load-more trigger only when hasMore. It returns the new entries.
func (s *Sink) Render(items []pixabay.ResultItem, mode pagination.Mode, hasMore bool) []Entry {
	entries := EntriesFrom(items)

	switch mode {
	case pagination.ModeAppend:
		s.surface.Append(entries)
	default:
		s.surface.Replace(entries)
	}

	s.rebind()
	s.surface.SetLoadMoreVisible(hasMore)

	s.logger.Debug().
		Str("mode", mode.String()).
		Int("added", len(entries)).
		Bool("load_more", hasMore).
		Msg("Gallery updated")

	return entries
}

// Clear empties the gallery and hides the trigger.
func (s *Sink) Clear() {
	s.surface.Replace(nil)
	s.rebind()
	s.surface.SetLoadMoreVisible(false)
}

// HideLoadMore hides the trigger without touching the entries.
func (s *Sink) HideLoadMore() {
	s.surface.SetLoadMoreVisible(false)
}

func (s *Sink) rebind() {
	if s.viewer != nil {
		s.viewer.Rebind(s.selector, s.surface.Entries())
	}
}
