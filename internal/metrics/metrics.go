// Package metrics exposes Prometheus instrumentation for queries and reloads.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"college-predictor/internal/models"
)

const namespace = "college_predictor"

// Metrics groups the collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	Queries         *prometheus.CounterVec
	QueryMatches    *prometheus.HistogramVec
	QueryDuration   prometheus.Histogram
	Reloads         *prometheus.CounterVec
	SnapshotRecords prometheus.Gauge
	SnapshotVersion prometheus.Gauge
	SnapshotLoaded  prometheus.Gauge
}

// New creates and registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Prediction queries by outcome.",
		}, []string{"outcome"}),
		QueryMatches: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_matches",
			Help:      "Matches returned per query, by status.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}, []string{"status"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Time spent filtering one query.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		Reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Cutoff snapshot reload attempts by result.",
		}, []string{"result"}),
		SnapshotRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_records",
			Help:      "Rows in the active cutoff snapshot.",
		}),
		SnapshotVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_version",
			Help:      "Version of the active cutoff snapshot.",
		}),
		SnapshotLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_loaded_timestamp_seconds",
			Help:      "Unix time the active snapshot was built.",
		}),
	}

	reg.MustRegister(
		m.Queries,
		m.QueryMatches,
		m.QueryDuration,
		m.Reloads,
		m.SnapshotRecords,
		m.SnapshotVersion,
		m.SnapshotLoaded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveQuery records a finished query. A nil result counts as an error.
func (m *Metrics) ObserveQuery(result *models.Result, took time.Duration) {
	if m == nil {
		return
	}
	if result == nil {
		m.Queries.WithLabelValues("error").Inc()
		return
	}

	outcome := "matched"
	if result.IsEmpty() {
		outcome = "empty"
	}
	m.Queries.WithLabelValues(outcome).Inc()
	m.QueryDuration.Observe(took.Seconds())
	for status, n := range result.Counts {
		m.QueryMatches.WithLabelValues(status).Observe(float64(n))
	}
}

// ObserveReload records a reload attempt. records, version and loadedAt are only
// applied on success.
func (m *Metrics) ObserveReload(err error, records int, version uint64, loadedAt time.Time) {
	if m == nil {
		return
	}
	if err != nil {
		m.Reloads.WithLabelValues("failure").Inc()
		return
	}
	m.Reloads.WithLabelValues("success").Inc()
	m.SnapshotRecords.Set(float64(records))
	m.SnapshotVersion.Set(float64(version))
	m.SnapshotLoaded.Set(float64(loadedAt.Unix()))
}
