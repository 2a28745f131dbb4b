package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by backend (memory, redis)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamstats_cache_hits_total",
			Help: "Total number of result cache hits",
		},
		[]string{"backend"},
	)

	// CacheMisses tracks cache misses by backend, expired entries included
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamstats_cache_misses_total",
			Help: "Total number of result cache misses",
		},
		[]string{"backend"},
	)

	// CacheEntries tracks entries currently held by the memory backend
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "teamstats_cache_entries",
			Help: "Current number of entries in the result cache",
		},
		[]string{"backend"},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamstats_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "encode", "decode"
	)
)
