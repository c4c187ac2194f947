package gallery

import (
	"sync"
)

// DefaultSelector scopes the lightbox to links inside the gallery container.
const DefaultSelector = ".gallery a"

// LightboxOptions are handed to the SimpleLightbox script on the page.
type LightboxOptions struct {
	Selector        string `json:"selector"`
	CaptionsData    string `json:"captionsData"`
	CaptionPosition string `json:"captionPosition"`
}

// Lightbox tracks which entries the viewer is bound to. Rebinding replaces the
// bound set with the current entries, so it is safe to call after every
// gallery mutation: an entry is never bound twice.
type Lightbox struct {
	mu      sync.Mutex
	options LightboxOptions
	bound   map[string]struct{}
	rebinds int
}

// NewLightbox returns a viewer with alt-text captions shown at the bottom.
func NewLightbox() *Lightbox {
	return &Lightbox{
		options: LightboxOptions{
			Selector:        DefaultSelector,
			CaptionsData:    "alt",
			CaptionPosition: "bottom",
		},
		bound: make(map[string]struct{}),
	}
}

// Rebind binds the viewer over entries under selector.
func (l *Lightbox) Rebind(selector string, entries []Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if selector != "" {
		l.options.Selector = selector
	}
	bound := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		bound[e.FullSizeURL] = struct{}{}
	}
	l.bound = bound
	l.rebinds++
}

// Bound returns the number of distinct entries the viewer covers.
func (l *Lightbox) Bound() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.bound)
}

// IsBound reports whether the entry linking to fullSizeURL is covered.
func (l *Lightbox) IsBound(fullSizeURL string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.bound[fullSizeURL]
	return ok
}

// Rebinds counts Rebind calls; the page script refreshes once per call.
func (l *Lightbox) Rebinds() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rebinds
}

// Options returns the script options.
func (l *Lightbox) Options() LightboxOptions {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.options
}
