// Package testutil provides a fake Pixabay search endpoint for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// MockHit is the JSON shape of one hit served by MockPixabay.
type MockHit struct {
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

type mockResponse struct {
	Total     int       `json:"total"`
	TotalHits int       `json:"totalHits"`
	Hits      []MockHit `json:"hits"`
}

// MockPixabay is a configurable fake of GET /api/.
// Queries registered with SetTotal answer with generated hits, sliced by the
// request's page and per_page. Unknown queries have zero hits.
type MockPixabay struct {
	server *httptest.Server
	mu     sync.RWMutex

	totals   map[string]int
	status   int
	body     string
	delay    time.Duration
	requests []url.Values
}

// NewMockPixabay starts the fake server.
func NewMockPixabay() *MockPixabay {
	mock := &MockPixabay{totals: make(map[string]int)}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the search endpoint URL, suitable as a client BaseURL.
func (m *MockPixabay) URL() string {
	return m.server.URL + "/api/"
}

// Close shuts down the mock server.
func (m *MockPixabay) Close() {
	m.server.Close()
}

// SetTotal registers query with total hits.
func (m *MockPixabay) SetTotal(query string, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals[query] = total
}

// FailWith makes every request answer with status and body until Recover is called.
func (m *MockPixabay) FailWith(status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	m.body = body
}

// Recover clears a failure set by FailWith.
func (m *MockPixabay) Recover() {
	m.FailWith(0, "")
}

// SetDelay delays every response.
func (m *MockPixabay) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// RequestCount returns the number of requests received.
func (m *MockPixabay) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// LastRequest returns the query parameters of the most recent request.
func (m *MockPixabay) LastRequest() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// Reset clears recorded requests.
func (m *MockPixabay) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

func (m *MockPixabay) handle(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	m.mu.Lock()
	m.requests = append(m.requests, params)
	status, body, delay := m.status, m.body, m.delay
	total := m.totals[params.Get("q")]
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if status != 0 {
		w.WriteHeader(status)
		w.Write([]byte(body))
		return
	}

	if params.Get("key") == "" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("[ERROR 400] \"key\" is a required parameter."))
		return
	}

	page, _ := strconv.Atoi(params.Get("page"))
	perPage, _ := strconv.Atoi(params.Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(mockResponse{
		Total:     total,
		TotalHits: total,
		Hits:      GenerateHits(params.Get("q"), total, page, perPage),
	})
}

// GenerateHits returns the hits that page of a query with total results holds.
func GenerateHits(query string, total, page, perPage int) []MockHit {
	first := (page - 1) * perPage
	if first >= total {
		return []MockHit{}
	}
	last := first + perPage
	if last > total {
		last = total
	}

	hits := make([]MockHit, 0, last-first)
	for i := first; i < last; i++ {
		id := i + 1
		hits = append(hits, MockHit{
			ID:            id,
			PageURL:       fmt.Sprintf("https://pixabay.example/photos/%d/", id),
			Tags:          fmt.Sprintf("%s, photo %d", query, id),
			WebformatURL:  fmt.Sprintf("https://cdn.pixabay.example/%d_640.jpg", id),
			LargeImageURL: fmt.Sprintf("https://cdn.pixabay.example/%d_1280.jpg", id),
			Views:         id * 100,
			Downloads:     id * 10,
			Likes:         id * 3,
			Comments:      id,
		})
	}
	return hits
}
