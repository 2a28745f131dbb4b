// Package metrics exposes the Prometheus registry used by teamstats.
// All metrics are defined in their respective packages (client, cache, queue,
// worker, pipeline, bulk) and registered via promauto.
//
// This package provides the /metrics handler and a reference of all metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gatherer is the source the /metrics handler reads from.
var Gatherer = prometheus.DefaultGatherer

// Handler serves all registered metrics in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Source Metrics (pkg/client):
//   - teamstats_source_requests_total{status} (Counter): Upstream requests by HTTP status
//   - teamstats_source_request_duration_seconds (Histogram): Upstream request duration
//   - teamstats_source_errors_total{class} (Counter): Fetch errors by class (client, server, network, unexpected)
//
// Queue Metrics (pkg/queue):
//   - teamstats_queue_depth (Gauge): Tasks waiting in the queue
//   - teamstats_queue_enqueued_total (Counter): Tasks enqueued
//   - teamstats_queue_processed_total{result} (Counter): Tasks handed to a handler (ok, error, panic)
//
// Worker Metrics (pkg/worker):
//   - teamstats_workers_active (Gauge): Running queue consumers
//   - teamstats_task_duration_seconds{result} (Histogram): Handler duration (success, failure)
//
// Pipeline Metrics (pkg/pipeline):
//   - teamstats_pipeline_outcomes_total{outcome} (Counter): Requests by outcome (ok, no_data, fetch_failed, parse_failed)
//
// Bulk Metrics (pkg/bulk):
//   - teamstats_bulk_run_duration_seconds (Histogram): Full bulk run duration
//   - teamstats_bulk_team_results_total{outcome} (Counter): Per-team branch results
//
// Cache Metrics (pkg/cache):
//   - teamstats_cache_hits_total{backend} (Counter): Result cache hits (memory, redis)
//   - teamstats_cache_misses_total{backend} (Counter): Result cache misses, expired entries included
//   - teamstats_cache_entries{backend} (Gauge): Entries held by the memory backend
//   - teamstats_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Share of requests that ended without data
//   sum(rate(teamstats_pipeline_outcomes_total{outcome!="ok"}[5m])) /
//   sum(rate(teamstats_pipeline_outcomes_total[5m]))
//
//   # Queue backlog
//   teamstats_queue_depth > 100
//
//   # Upstream error rate by class
//   rate(teamstats_source_errors_total[5m])
//
//   # P95 upstream latency
//   histogram_quantile(0.95, rate(teamstats_source_request_duration_seconds_bucket[5m]))
