package widget

import (
	"sync"
	"time"

	"github.com/apibillme/cache"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/pixabay-gallery/pkg/pagination"
)

const (
	// DefaultCapacity bounds the number of live sessions.
	DefaultCapacity = 256
	// DefaultIdleTTL is how long an untouched session survives.
	DefaultIdleTTL = 1 * time.Hour
)

var sessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "gallery_sessions_created_total",
	Help: "Total widget sessions created",
})

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	Capacity int
	IdleTTL  time.Duration
	PerPage  int
}

// DefaultRegistryConfig returns the default registry settings.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		Capacity: DefaultCapacity,
		IdleTTL:  DefaultIdleTTL,
	}
}

// Registry holds the sessions of all visitors. Every session shares the
// same fetcher and throttle, so the upstream rate limit is process-wide.
type Registry struct {
	mu       sync.Mutex
	sessions cache.Cache
	fetcher  pagination.Fetcher
	throttle pagination.Throttle
	perPage  int
	logger   zerolog.Logger
}

// NewRegistry creates a registry. Non-positive capacity and TTL fall back to defaults.
func NewRegistry(cfg RegistryConfig, fetcher pagination.Fetcher, throttle pagination.Throttle, logger zerolog.Logger) *Registry {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	return &Registry{
		sessions: cache.New(cfg.Capacity, cache.WithTTL(cfg.IdleTTL)),
		fetcher:  fetcher,
		throttle: throttle,
		perPage:  cfg.PerPage,
		logger:   logger,
	}
}

// Lookup returns the live session for id.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(id)
}

// Acquire returns the session for id, creating one under a fresh id when id
// is unknown, expired or closed. created reports whether a new session was made.
func (r *Registry) Acquire(id string) (session *Session, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.lookup(id); ok {
		return s, false
	}

	s := NewSession(uuid.NewString(), r.fetcher, r.throttle, r.perPage, r.logger)
	r.sessions.Set(s.ID(), s)
	sessionsCreatedTotal.Inc()

	r.logger.Debug().Str("session", s.ID()).Msg("Session created")
	return s, true
}

func (r *Registry) lookup(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	v, ok := r.sessions.Get(id)
	if !ok {
		return nil, false
	}
	s, ok := v.(*Session)
	if !ok || s.State() == StateClosed {
		return nil, false
	}
	return s, true
}
