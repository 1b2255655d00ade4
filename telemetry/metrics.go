// Package telemetry exposes Prometheus metrics for the recompute pipeline.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "realestate_insights"

// Fetch outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeStale   = "stale"
	OutcomeSkipped = "skipped"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	Fetches         *prometheus.CounterVec
	Recomputations  *prometheus.CounterVec
	ComputeDuration prometheus.Histogram
	DatasetSize     prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return NewMetricsWith(reg, reg)
}

// NewMetricsWith registers the collectors on reg and serves them from g.
func NewMetricsWith(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Dataset fetches by city and outcome",
		}, []string{"city", "outcome"}),
		Recomputations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recomputations_total",
			Help:      "Chart recomputations by trigger",
		}, []string{"trigger"}),
		ComputeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compute_duration_seconds",
			Help:      "Time spent grouping, summarising and projecting one dataset",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		DatasetSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Records held in the current dataset",
		}),
		gatherer: g,
	}
}

// ObserveFetch counts one fetch completion.
func (m *Metrics) ObserveFetch(city, outcome string) {
	if m == nil {
		return
	}
	m.Fetches.WithLabelValues(city, outcome).Inc()
}

// ObserveCompute records one recomputation and its duration.
func (m *Metrics) ObserveCompute(trigger string, elapsed time.Duration, records int) {
	if m == nil {
		return
	}
	m.Recomputations.WithLabelValues(trigger).Inc()
	m.ComputeDuration.Observe(elapsed.Seconds())
	m.DatasetSize.Set(float64(records))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
