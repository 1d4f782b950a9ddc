// Package metrics exposes Prometheus counters and histograms for the
// ingest and query paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracedb_events_ingested_total",
		Help: "Total number of events fanned out to the indices.",
	})

	BatchesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracedb_batches_completed_total",
		Help: "Total number of endEventBatch calls.",
	})

	ZonesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracedb_zones_created_total",
		Help: "Total number of distinct zones discovered.",
	})

	DiagnosticsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracedb_diagnostics_total",
		Help: "Total number of diagnostics raised, labelled by code and severity.",
	}, []string{"code", "severity"})

	BatchIngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracedb_batch_ingest_duration_ms",
		Help:    "Wall time of one endEventBatch call (index finalization and renumbering), in milliseconds; traceEvent calls are not included.",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 1000},
	})

	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tracedb_query_duration_ms",
		Help:    "Query evaluation latency in milliseconds, labelled by kind.",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 1000},
	}, []string{"kind"})

	RebuildWindowWidened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracedb_rebuild_window_widened_total",
		Help: "Total number of dirty batches whose scope-forest rebuild exceeded the configured window.",
	})
)
