// Package widget runs the search form's control loop server-side: one
// Session per visitor maps form submissions and load-more triggers onto the
// pagination controller, the gallery sink and the notifier.
package widget

import (
	"errors"
)

// ErrSessionClosed is reported for events that arrive after Close.
var ErrSessionClosed = errors.New("session closed")

// State is the session's position in the search lifecycle.
type State int

const (
	StateIdle State = iota
	StateSearching
	StateDisplayingResults
	StateLoadingMore
	StateNoMoreResults
	StateEmptyResult
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateDisplayingResults:
		return "displaying_results"
	case StateLoadingMore:
		return "loading_more"
	case StateNoMoreResults:
		return "no_more_results"
	case StateEmptyResult:
		return "empty_result"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// busy reports whether a fetch is in flight.
func (s State) busy() bool {
	return s == StateSearching || s == StateLoadingMore
}

// terminal reports whether load-more triggers are ignored until the next submit.
func (s State) terminal() bool {
	return s == StateNoMoreResults || s == StateEmptyResult
}
