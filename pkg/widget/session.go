package widget

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Sternrassler/pixabay-gallery/pkg/gallery"
	"github.com/Sternrassler/pixabay-gallery/pkg/notify"
	"github.com/Sternrassler/pixabay-gallery/pkg/pagination"
	"github.com/rs/zerolog"
)

// Update describes what one event changed on the page.
type Update struct {
	Mode pagination.Mode
	// Entries are the cards added by this event (all cards for ModeReplace).
	Entries []gallery.Entry
	HasMore bool
	// Exhausted is set when the search has no further pages, including
	// re-confirmations for triggers that arrive after the end.
	Exhausted bool
	State     State
	// Changed is false when the event left the gallery untouched.
	Changed bool
	// Err is the error that ended the event, if any. It has already been
	// reported through the notifier where the user needs to see it.
	Err error
}

// Session is the search widget of one visitor.
type Session struct {
	id string

	mu    sync.Mutex
	state State
	seq   uint64

	ctx    context.Context
	cancel context.CancelFunc

	controller *pagination.Controller
	board      *gallery.Board
	lightbox   *gallery.Lightbox
	sink       *gallery.Sink
	recorder   *notify.Recorder
	notifier   notify.Notifier
	logger     zerolog.Logger
}

// NewSession wires a session over a shared fetcher and throttle.
func NewSession(id string, fetcher pagination.Fetcher, throttle pagination.Throttle, perPage int, logger zerolog.Logger) *Session {
	logger = logger.With().Str("session", id).Logger()
	ctx, cancel := context.WithCancel(context.Background())

	board := gallery.NewBoard()
	lightbox := gallery.NewLightbox()
	recorder := notify.NewRecorder()

	return &Session{
		id:         id,
		state:      StateIdle,
		ctx:        ctx,
		cancel:     cancel,
		controller: pagination.NewController(fetcher, throttle, perPage, logger),
		board:      board,
		lightbox:   lightbox,
		sink:       gallery.NewSink(board, lightbox, logger),
		recorder:   recorder,
		notifier:   notify.NewLogging(recorder, logger),
		logger:     logger,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Board() *gallery.Board { return s.board }

func (s *Session) Lightbox() *gallery.Lightbox { return s.lightbox }

// Pagination returns the controller's state snapshot.
func (s *Session) Pagination() pagination.State { return s.controller.State() }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// DrainNotices returns notices raised since the last drain.
func (s *Session) DrainNotices() []notify.Notice {
	return s.recorder.Drain()
}

// Close cancels any pending rate limiter wait. Later events fail with ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	s.state = StateClosed
	s.mu.Unlock()
	s.cancel()
}

// Submit handles a form submission.
func (s *Session) Submit(ctx context.Context, query string) Update {
	if strings.TrimSpace(query) == "" {
		return s.rejectEmpty()
	}

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return Update{State: StateClosed, Err: ErrSessionClosed}
	}
	s.seq++
	seq := s.seq
	s.state = StateSearching
	s.mu.Unlock()

	ctx, stop := s.bind(ctx)
	defer stop()

	out, err := s.controller.StartSearch(ctx, query)
	return s.apply(seq, StateIdle, out, err)
}

// LoadMore handles the load-more button and the scroll threshold. A query that
// differs from the active search is treated as a new submission.
func (s *Session) LoadMore(ctx context.Context, query string) Update {
	q := strings.TrimSpace(query)
	if q == "" {
		return s.rejectEmpty()
	}
	if q != s.controller.State().Query {
		return s.Submit(ctx, q)
	}

	s.mu.Lock()
	switch {
	case s.state == StateClosed:
		s.mu.Unlock()
		return Update{State: StateClosed, Err: ErrSessionClosed}
	case s.state.busy():
		st := s.state
		s.mu.Unlock()
		s.logger.Debug().Str("state", st.String()).Msg("Load-more trigger ignored")
		return Update{Mode: pagination.ModeAppend, State: st, HasMore: s.board.LoadMoreVisible()}
	case s.state.terminal():
		st := s.state
		s.mu.Unlock()
		up := Update{Mode: pagination.ModeAppend, State: st}
		if st == StateNoMoreResults {
			// the controller re-confirms exhaustion without a fetch
			out, err := s.controller.LoadNextPage(ctx, q)
			up.Exhausted = err == nil && out.Status == pagination.StatusExhausted
		}
		return up
	}
	seq := s.seq
	prev := s.state
	s.state = StateLoadingMore
	s.mu.Unlock()

	ctx, stop := s.bind(ctx)
	defer stop()

	out, err := s.controller.LoadNextPage(ctx, q)
	return s.apply(seq, prev, out, err)
}

// apply commits an outcome unless a newer submission started meanwhile.
// onCancel is the state restored when the caller went away.
func (s *Session) apply(seq uint64, onCancel State, out *pagination.Outcome, err error) Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return Update{State: StateClosed, Err: ErrSessionClosed}
	}
	if seq != s.seq || errors.Is(err, pagination.ErrStaleResponse) {
		s.logger.Debug().Msg("Dropping outcome of superseded event")
		return Update{State: s.state, HasMore: s.board.LoadMoreVisible(), Err: pagination.ErrStaleResponse}
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.logger.Debug().Err(err).Msg("Event canceled")
			s.state = onCancel
			return Update{State: s.state, HasMore: s.board.LoadMoreVisible(), Err: err}
		}
		s.logger.Error().Err(err).Msg("Search failed")
		s.notifier.Notify(notify.Notice{Level: notify.LevelFailure, Message: notify.MsgFetchFailed})
		s.state = StateIdle
		return Update{State: s.state, HasMore: s.board.LoadMoreVisible(), Err: err}
	}

	up := Update{Mode: out.Mode, HasMore: out.HasMore, Changed: true}

	switch out.Status {
	case pagination.StatusFound:
		up.Entries = s.sink.Render(out.Items, pagination.ModeReplace, out.HasMore)
		s.notifier.Notify(notify.Found(out.TotalCount))
		if out.HasMore {
			s.state = StateDisplayingResults
		} else {
			s.state = StateNoMoreResults
		}

	case pagination.StatusNotFound:
		s.sink.Clear()
		s.notifier.Notify(notify.Notice{Level: notify.LevelFailure, Message: notify.MsgNoResults})
		s.state = StateEmptyResult

	case pagination.StatusMore:
		up.Entries = s.sink.Render(out.Items, out.Mode, true)
		s.state = StateDisplayingResults

	case pagination.StatusExhausted:
		if len(out.Items) > 0 {
			up.Entries = s.sink.Render(out.Items, out.Mode, false)
		} else {
			s.sink.HideLoadMore()
			up.Changed = false
		}
		s.notifier.Notify(notify.Notice{Level: notify.LevelInfo, Message: notify.MsgEndOfResults})
		s.state = StateNoMoreResults
		up.Exhausted = true
	}

	up.State = s.state
	return up
}

func (s *Session) rejectEmpty() Update {
	s.notifier.Notify(notify.Notice{Level: notify.LevelWarning, Message: notify.MsgEmptyQuery})
	return Update{State: s.State(), HasMore: s.board.LoadMoreVisible(), Err: pagination.ErrEmptyQuery}
}

// bind derives a context that also ends when the session is closed.
func (s *Session) bind(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
