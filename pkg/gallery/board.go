package gallery

import (
	"html/template"
	"sync"
)

// Board is an in-memory gallery surface. Each session owns one.
type Board struct {
	mu       sync.RWMutex
	entries  []Entry
	loadMore bool
}

// NewBoard returns an empty board with the load-more trigger hidden.
func NewBoard() *Board {
	return &Board{}
}

// Replace drops all entries and shows entries instead.
func (b *Board) Replace(entries []Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append([]Entry(nil), entries...)
}

// Append adds entries after the existing ones.
func (b *Board) Append(entries []Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, entries...)
}

// Entries returns a copy of the displayed entries.
func (b *Board) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Entry(nil), b.entries...)
}

// Len returns the number of displayed entries.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

func (b *Board) SetLoadMoreVisible(visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loadMore = visible
}

func (b *Board) LoadMoreVisible() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loadMore
}

// Markup renders every displayed entry.
func (b *Board) Markup() (template.HTML, error) {
	return RenderCards(b.Entries())
}
