package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// redactedParams never take part in a cache key.
var redactedParams = map[string]bool{
	"key": true,
}

// CacheKey identifies a cached search response.
type CacheKey struct {
	// Endpoint is the upstream path, e.g. "/api/".
	Endpoint string

	// QueryParams are the request query parameters.
	QueryParams url.Values
}

// String generates a deterministic cache key string.
// Format: gallery:endpoint:param1=val1:param2=val2
//
// Example:
//
//	gallery:api:image_type=photo:orientation=horizontal:page=2:per_page=40:q=cats:safesearch=true
func (k CacheKey) String() string {
	parts := []string{"gallery"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			if redactedParams[key] {
				continue
			}
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, url.QueryEscape(k.QueryParams.Get(key))))
		}
	}

	return strings.Join(parts, ":")
}
