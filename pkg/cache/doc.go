// Package cache provides the correlation-keyed result cache.
//
// Results are stored as JSON under a deterministic key with a fixed
// time-to-live. Expiry is passive: a read of an expired entry is a miss.
// There is no invalidation API; entries simply age out.
//
// Two Store backends are available:
//
//   - MemoryStore: in-process map guarded by a RWMutex, with an optional
//     background sweeper that drops expired entries.
//   - Manager: Redis backend; Redis expires keys natively and reads
//     double-check the stored expiry.
//
// # Basic Usage
//
//	store := cache.NewMemoryStore()
//	results := cache.NewResultCache(store, cache.DefaultTTL)
//
//	// Writer side
//	if err := results.Put(ctx, token, value); err != nil {
//		return err
//	}
//
//	// Reader side
//	var got Value
//	err := results.Get(ctx, token, &got)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// not written yet, or expired
//	}
//
// # Metrics
//
//   - teamstats_cache_hits_total{backend} - Cache hits
//   - teamstats_cache_misses_total{backend} - Cache misses (absent or expired)
//   - teamstats_cache_errors_total{operation} - Cache operation errors
//   - teamstats_cache_entries{backend="memory"} - Entries held in memory
//
// Both backends are safe for concurrent use by many readers and writers.
package cache
