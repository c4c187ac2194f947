// Package gallery turns result pages into gallery entries, commits them to a
// surface and keeps the lightbox viewer bound to whatever is on display.
package gallery

import (
	"github.com/Sternrassler/pixabay-gallery/pkg/pixabay"
)

// Entry is one displayed photo card.
type Entry struct {
	ThumbnailURL string `json:"thumbnail_url"`
	FullSizeURL  string `json:"full_size_url"`
	// Alt holds the tags; the lightbox uses it as caption.
	Alt       string `json:"alt"`
	Likes     int    `json:"likes"`
	Views     int    `json:"views"`
	Comments  int    `json:"comments"`
	Downloads int    `json:"downloads"`
}

// EntriesFrom builds one entry per item, keeping order.
func EntriesFrom(items []pixabay.ResultItem) []Entry {
	entries := make([]Entry, len(items))
	for i, it := range items {
		entries[i] = Entry{
			ThumbnailURL: it.ThumbnailURL,
			FullSizeURL:  it.FullSizeURL,
			Alt:          it.Tags,
			Likes:        it.Likes,
			Views:        it.Views,
			Comments:     it.Comments,
			Downloads:    it.Downloads,
		}
	}
	return entries
}
