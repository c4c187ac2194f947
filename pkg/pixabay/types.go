package pixabay

// ResultItem is one image hit. All fields pass through from the API untouched.
type ResultItem struct {
	ID           int
	ThumbnailURL string
	FullSizeURL  string
	PageURL      string
	Tags         string
	Likes        int
	Views        int
	Comments     int
	Downloads    int
}

// ResultBatch is one page of hits plus the number of hits reachable through the API.
// TotalCount is stable across pages of the same query.
type ResultBatch struct {
	Items      []ResultItem
	TotalCount int
}

// searchHit mirrors an element of the "hits" array.
type searchHit struct {
	ID            int    `json:"id"`
	PageURL       string `json:"pageURL"`
	Tags          string `json:"tags"`
	WebformatURL  string `json:"webformatURL"`
	LargeImageURL string `json:"largeImageURL"`
	Views         int    `json:"views"`
	Downloads     int    `json:"downloads"`
	Likes         int    `json:"likes"`
	Comments      int    `json:"comments"`
}

// searchResponse mirrors the body of GET /api/.
type searchResponse struct {
	Total     int         `json:"total"`
	TotalHits int         `json:"totalHits"`
	Hits      []searchHit `json:"hits"`
}

func (r *searchResponse) toBatch() *ResultBatch {
	items := make([]ResultItem, len(r.Hits))
	for i, h := range r.Hits {
		items[i] = ResultItem{
			ID:           h.ID,
			ThumbnailURL: h.WebformatURL,
			FullSizeURL:  h.LargeImageURL,
			PageURL:      h.PageURL,
			Tags:         h.Tags,
			Likes:        h.Likes,
			Views:        h.Views,
			Comments:     h.Comments,
			Downloads:    h.Downloads,
		}
	}
	return &ResultBatch{Items: items, TotalCount: r.TotalHits}
}
