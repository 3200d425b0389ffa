package search

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics holds Prometheus metrics for upstream Search Console calls.
type UpstreamMetrics struct {
	queries *prometheus.CounterVec
	latency *prometheus.HistogramVec
	rows    *prometheus.CounterVec
}

// NewUpstreamMetrics registers the metrics with registerer, or with
// prometheus.DefaultRegisterer when nil.
func NewUpstreamMetrics(registerer prometheus.Registerer) *UpstreamMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &UpstreamMetrics{
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gsc",
				Subsystem: "upstream",
				Name:      "requests_total",
				Help:      "Total number of Search Console API calls",
			},
			[]string{"operation", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gsc",
				Subsystem: "upstream",
				Name:      "latency_seconds",
				Help:      "Latency of Search Console API calls",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gsc",
				Subsystem: "upstream",
				Name:      "rows_total",
				Help:      "Total number of rows returned by Search Analytics queries",
			},
			[]string{"operation"},
		),
	}

	registerer.MustRegister(m.queries, m.latency, m.rows)
	return m
}

func (m *UpstreamMetrics) observe(operation string, start time.Time, rows int, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.queries.WithLabelValues(operation, status).Inc()
	m.latency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err == nil {
		m.rows.WithLabelValues(operation).Add(float64(rows))
	}
}
