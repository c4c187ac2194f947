package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	rateLimitWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_rate_limit_waits_total",
		Help: "Total number of search calls delayed by the rate limiter",
	})

	rateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gallery_rate_limit_wait_seconds",
		Help:    "Time search calls spent suspended by the rate limiter",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
	})
)

// Limiter serializes callers and enforces MinInterval between them.
type Limiter struct {
	gate     *semaphore.Weighted // one caller inside Wait at a time
	stateMu  sync.Mutex          // guards last
	bucket   *rate.Limiter
	interval time.Duration
	last     time.Time
	logger   zerolog.Logger
}

// NewLimiter creates a limiter letting one call through per interval.
// A non-positive interval falls back to MinInterval.
func NewLimiter(interval time.Duration, logger zerolog.Logger) *Limiter {
	if interval <= 0 {
		interval = MinInterval
	}
	return &Limiter{
		gate:     semaphore.NewWeighted(1),
		bucket:   rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
		logger:   logger,
	}
}

// Wait blocks until the caller may invoke the search endpoint, then records
// the invocation. Callers are served one at a time in arrival order; a caller
// whose ctx ends, queued or suspended, gives up and gets the ctx error.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.gate.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	defer l.gate.Release(1)

	var waited time.Duration
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		// The token is taken at the moment of invocation, so the bucket's
		// refill starts from the recorded timestamp.
		now := time.Now()
		r := l.bucket.ReserveN(now, 1)
		delay := r.DelayFrom(now)
		if delay == 0 {
			l.stateMu.Lock()
			l.last = now
			l.stateMu.Unlock()
			break
		}
		r.CancelAt(now)

		if waited == 0 {
			rateLimitWaitsTotal.Inc()
			l.logger.Debug().Dur("wait", delay).Msg("Throttling search call")
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("rate limit wait: %w", ctx.Err())
		case <-timer.C:
			waited += delay
		}
	}

	if waited > 0 {
		rateLimitWaitSeconds.Observe(waited.Seconds())
	}
	return nil
}

// State returns a snapshot of the limiter.
func (l *Limiter) State() State {
	l.stateMu.Lock()
	defer l.stateMu.Unlock()
	return State{
		LastInvocation: l.last,
		MinInterval:    l.interval,
	}
}

// Interval returns the configured minimum spacing.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}
