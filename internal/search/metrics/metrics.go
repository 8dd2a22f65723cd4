// Package metrics exposes Prometheus instrumentation for the search engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the search path.
type Metrics struct {
	SearchesTotal           *prometheus.CounterVec
	ExternalGatewayFailures prometheus.Counter
	TelemetryFailures       prometheus.Counter
	ResultsReturned         prometheus.Histogram
}

// New creates and registers the search metrics on the default registerer.
func New() *Metrics {
	return &Metrics{
		SearchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "immersion_searches_total",
			Help: "Total number of searches executed, by sort strategy.",
		}, []string{"sorted_by"}),
		ExternalGatewayFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "immersion_external_gateway_failures_total",
			Help: "External company-matching calls that failed and degraded to zero results.",
		}),
		TelemetryFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "immersion_search_telemetry_failures_total",
			Help: "Search telemetry writes that failed and were absorbed.",
		}),
		ResultsReturned: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "immersion_search_results_returned",
			Help:    "Number of merged results returned per search.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		}),
	}
}

// ObserveSearch records one completed search.
func (m *Metrics) ObserveSearch(sortedBy string, resultCount int) {
	m.SearchesTotal.WithLabelValues(sortedBy).Inc()
	m.ResultsReturned.Observe(float64(resultCount))
}
