package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/pixabay-gallery/pkg/cache"
	"github.com/Sternrassler/pixabay-gallery/pkg/gallery"
	"github.com/Sternrassler/pixabay-gallery/pkg/metrics"
	"github.com/Sternrassler/pixabay-gallery/pkg/notify"
	"github.com/Sternrassler/pixabay-gallery/pkg/widget"
)

const sessionCookie = "gallery_session"

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// pageData feeds templates/index.html.
type pageData struct {
	Query    string
	Cards    template.HTML
	HasMore  bool
	Lightbox gallery.LightboxOptions
}

// eventResponse is the JSON answer to /search and /more.
type eventResponse struct {
	Markup    template.HTML   `json:"markup"`
	Mode      string          `json:"mode"`
	Changed   bool            `json:"changed"`
	HasMore   bool            `json:"hasMore"`
	Exhausted bool            `json:"exhausted"`
	State     string          `json:"state"`
	Notices   []notify.Notice `json:"notices"`
}

type server struct {
	registry *widget.Registry
	store    cache.Store
	logger   zerolog.Logger
}

func newServer(registry *widget.Registry, store cache.Store, logger zerolog.Logger) *server {
	return &server{registry: registry, store: store, logger: logger}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /search", s.handleEvent(func(sess *widget.Session, r *http.Request, q string) widget.Update {
		return sess.Submit(r.Context(), q)
	}))
	mux.HandleFunc("POST /more", s.handleEvent(func(sess *widget.Session, r *http.Request, q string) widget.Update {
		return sess.LoadMore(r.Context(), q)
	}))
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler(s.store))
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// readyHandler reports 503 while the response cache backend is unreachable.
func readyHandler(store cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if _, err := store.Get(ctx, "gallery:ready"); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			http.Error(w, "cache unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}

// session returns the caller's session and refreshes the cookie.
func (s *server) session(w http.ResponseWriter, r *http.Request) *widget.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}

	sess, created := s.registry.Acquire(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	cards, err := sess.Board().Markup()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to render gallery")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	body := brotli.HTTPCompressor(w, r)
	defer body.Close()

	data := pageData{
		Query:    sess.Pagination().Query,
		Cards:    cards,
		HasMore:  sess.Board().LoadMoreVisible(),
		Lightbox: sess.Lightbox().Options(),
	}
	if err := pageTemplate.Execute(body, data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render page")
	}
}

type eventFunc func(sess *widget.Session, r *http.Request, query string) widget.Update

func (s *server) handleEvent(run eventFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		sess := s.session(w, r)
		up := run(sess, r, r.PostFormValue("searchQuery"))
		if up.Err != nil {
			s.logger.Debug().Err(up.Err).Str("session", sess.ID()).Msg("Event ended with error")
		}

		resp := eventResponse{
			Mode:      up.Mode.String(),
			Changed:   up.Changed,
			HasMore:   up.HasMore,
			Exhausted: up.Exhausted,
			State:     up.State.String(),
			Notices:   sess.DrainNotices(),
		}
		if resp.Notices == nil {
			resp.Notices = []notify.Notice{}
		}
		if up.Changed {
			markup, err := gallery.RenderCards(up.Entries)
			if err != nil {
				s.logger.Error().Err(err).Msg("Failed to render cards")
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			resp.Markup = markup
		}

		w.Header().Set("Content-Type", "application/json")
		body := brotli.HTTPCompressor(w, r)
		defer body.Close()
		if err := json.NewEncoder(body).Encode(resp); err != nil {
			s.logger.Error().Err(err).Msg("Failed to write response")
		}
	}
}
