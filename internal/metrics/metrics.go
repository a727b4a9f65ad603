// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts what happens to the live view. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	reg *prometheus.Registry

	operations     *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	featuresAdded  prometheus.Counter
	featuresErased prometheus.Counter
	nodesPruned    prometheus.Counter
	loadErrors     prometheus.Counter
	viewFeatures   prometheus.Gauge
}

// New registers the annotree collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "annotree_operations_total",
			Help: "Merges, erases and reverse complements applied to the view, by outcome",
		}, []string{"kind", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "annotree_operation_duration_seconds",
			Help:    "Time spent applying one operation to the view",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.25, 1},
		}, []string{"kind"}),
		featuresAdded: f.NewCounter(prometheus.CounterOpts{
			Name: "annotree_features_added_total",
			Help: "Features merged into the view",
		}),
		featuresErased: f.NewCounter(prometheus.CounterOpts{
			Name: "annotree_features_erased_total",
			Help: "Features erased from the view",
		}),
		nodesPruned: f.NewCounter(prometheus.CounterOpts{
			Name: "annotree_nodes_pruned_total",
			Help: "Empty alignments, blocks and sets removed by erases",
		}),
		loadErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "annotree_load_errors_total",
			Help: "Fragments that failed to load",
		}),
		viewFeatures: f.NewGauge(prometheus.GaugeOpts{
			Name: "annotree_view_features",
			Help: "Features currently in the view",
		}),
	}
}

// Observe records one operation.
func (m *Metrics) Observe(kind, code string, took time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(kind, code).Inc()
	m.duration.WithLabelValues(kind).Observe(took.Seconds())
}

func (m *Metrics) Added(features int) {
	if m == nil {
		return
	}
	m.featuresAdded.Add(float64(features))
}

func (m *Metrics) Erased(features, pruned int) {
	if m == nil {
		return
	}
	m.featuresErased.Add(float64(features))
	m.nodesPruned.Add(float64(pruned))
}

func (m *Metrics) LoadError() {
	if m == nil {
		return
	}
	m.loadErrors.Inc()
}

func (m *Metrics) SetViewFeatures(n int) {
	if m == nil {
		return
	}
	m.viewFeatures.Set(float64(n))
}

// Registry exposes the underlying registry, for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
