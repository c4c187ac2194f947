package pagination

import (
	"errors"

	"github.com/Sternrassler/pixabay-gallery/pkg/pixabay"
)

var (
	// ErrEmptyQuery is returned for blank or whitespace-only queries. No call is made.
	ErrEmptyQuery = errors.New("search query is empty")

	// ErrStaleResponse is returned when a newer search started while a page was in flight.
	ErrStaleResponse = errors.New("response belongs to a superseded search")
)

// Mode tells the render sink how to commit a page.
type Mode int

const (
	ModeReplace Mode = iota
	ModeAppend
)

func (m Mode) String() string {
	if m == ModeAppend {
		return "append"
	}
	return "replace"
}

// Status is the pagination outcome of one trigger.
type Status int

const (
	StatusFound Status = iota
	StatusNotFound
	StatusMore
	StatusExhausted
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusMore:
		return "more"
	case StatusExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// State is the pagination state of the active search.
type State struct {
	Query       string `json:"query"`
	CurrentPage int    `json:"current_page"`
	TotalCount  int    `json:"total_count"`
	PerPage     int    `json:"per_page"`
}

// HasMore reports whether pages remain after CurrentPage.
func (s State) HasMore() bool {
	return s.CurrentPage*s.PerPage < s.TotalCount
}

// MaxPage is ceil(TotalCount / PerPage).
func (s State) MaxPage() int {
	if s.PerPage <= 0 {
		return 0
	}
	return (s.TotalCount + s.PerPage - 1) / s.PerPage
}

// Outcome is the result of StartSearch or LoadNextPage.
type Outcome struct {
	Status     Status
	Mode       Mode
	Query      string
	Page       int
	Items      []pixabay.ResultItem
	TotalCount int
	HasMore    bool
}
