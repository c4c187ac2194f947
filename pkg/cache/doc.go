// Package cache stores raw Pixabay search responses so that repeated
// query/page combinations are answered without another upstream call.
//
// Pixabay asks API consumers to cache results for 24 hours. The Manager
// implements that on top of a pluggable Store:
//
//   - RedisStore shares the cache between several gallery instances.
//   - SQLiteStore keeps a single-node cache in a local database file.
//
// # Basic Usage
//
//	store := cache.NewRedisStore(redis.NewClient(&redis.Options{Addr: "localhost:6379"}))
//	manager := cache.NewManager(store)
//
//	key := cache.CacheKey{Endpoint: "/api/", QueryParams: params}
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from Pixabay, then
//		entry, _ = cache.ResponseToEntry(resp, cache.DefaultTTL)
//		_ = manager.Set(ctx, key, entry)
//	}
//
// The API key is never part of a cache key, so rotating it keeps the cache warm.
package cache
