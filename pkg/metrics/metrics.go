// Package metrics exposes the Prometheus registry used by the gallery service.
// Metrics are declared with promauto in the package that owns them (pixabay,
// ratelimit, cache, pagination, widget); this package only serves them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the default gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics reference
//
// Fetch client (pkg/pixabay):
//   - gallery_pixabay_requests_total{status} (Counter)
//   - gallery_pixabay_request_duration_seconds (Histogram)
//   - gallery_pixabay_errors_total{class} (Counter): client, server, rate_limit, network, decode
//
// Rate limiter (pkg/ratelimit):
//   - gallery_rate_limit_waits_total (Counter): invocations that had to be delayed
//   - gallery_rate_limit_wait_seconds (Histogram): time spent suspended
//
// Response cache (pkg/cache):
//   - gallery_cache_hits_total{backend} (Counter)
//   - gallery_cache_misses_total (Counter)
//   - gallery_cache_errors_total{operation} (Counter)
//
// Pagination (pkg/pagination):
//   - gallery_pages_fetched_total{mode} (Counter): replace, append
//   - gallery_search_outcomes_total{status} (Counter): found, not_found, more, exhausted
//   - gallery_stale_responses_total (Counter)
//
// Sessions (pkg/widget):
//   - gallery_sessions_created_total (Counter)
//
// Example queries:
//
//	# cache hit ratio
//	sum(rate(gallery_cache_hits_total[5m])) /
//	(sum(rate(gallery_cache_hits_total[5m])) + rate(gallery_cache_misses_total[5m]))
//
//	# upstream p95
//	histogram_quantile(0.95, rate(gallery_pixabay_request_duration_seconds_bucket[5m]))
