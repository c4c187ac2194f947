// Package notify carries user-facing messages from a search session to
// whatever displays them.
package notify

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Level is the toast kind.
type Level string

const (
	LevelSuccess Level = "success"
	LevelFailure Level = "failure"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Messages shown to the user.
const (
	MsgEmptyQuery   = "Please enter a search query."
	MsgFoundFormat  = "Hooray! We found %d images."
	MsgNoResults    = "Sorry, there are no images matching your search query. Please try again."
	MsgEndOfResults = "We're sorry, but you've reached the end of search results."
	MsgFetchFailed  = "Images could not be loaded."
)

// Notice is one message.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Found returns the success notice for a search with total hits.
func Found(total int) Notice {
	return Notice{Level: LevelSuccess, Message: fmt.Sprintf(MsgFoundFormat, total)}
}

// Notifier receives notices.
type Notifier interface {
	Notify(n Notice)
}

// Recorder keeps notices until they are drained.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Drain returns the pending notices and forgets them.
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notices
	r.notices = nil
	return out
}

// Pending returns a copy of the pending notices without draining them.
func (r *Recorder) Pending() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Logging writes each notice to logger, then forwards it to next (if any).
type Logging struct {
	next   Notifier
	logger zerolog.Logger
}

// NewLogging wraps next.
func NewLogging(next Notifier, logger zerolog.Logger) *Logging {
	return &Logging{next: next, logger: logger}
}

func (l *Logging) Notify(n Notice) {
	var ev *zerolog.Event
	switch n.Level {
	case LevelFailure:
		ev = l.logger.Warn()
	case LevelWarning:
		ev = l.logger.Info()
	default:
		ev = l.logger.Debug()
	}
	ev.Str("notice_level", string(n.Level)).Msg(n.Message)

	if l.next != nil {
		l.next.Notify(n)
	}
}
