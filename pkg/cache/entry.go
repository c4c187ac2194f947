package cache

import (
	"time"
)

// CacheEntry is a cached upstream response body.
type CacheEntry struct {
	// Data is the raw response body.
	Data []byte `json:"data"`

	// ContentType of the cached body.
	ContentType string `json:"content_type"`

	// StatusCode of the cached response. Only 2xx responses are cached.
	StatusCode int `json:"status_code"`

	// Expires is when the entry stops being served.
	Expires time.Time `json:"expires"`

	// CachedAt is when the entry was stored.
	CachedAt time.Time `json:"cached_at"`
}

// IsExpired returns true if the cache entry has expired.
func (e *CacheEntry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration, or 0 if already expired.
func (e *CacheEntry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
