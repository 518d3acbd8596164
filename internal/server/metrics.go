package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	renders        *prometheus.CounterVec
	renderDuration prometheus.Histogram
	exports        *prometheus.CounterVec
	sessions       prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bikeshare_renders_total",
			Help: "Total view renders by outcome.",
		}, []string{"outcome"}), // ok, empty, error
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bikeshare_render_duration_seconds",
			Help:    "Duration of filter and aggregate recomputation.",
			Buckets: prometheus.DefBuckets,
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bikeshare_exports_total",
			Help: "Total filtered-data exports by dataset and format.",
		}, []string{"dataset", "format"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bikeshare_sessions",
			Help: "Number of sessions held in memory.",
		}),
	}
	registry.MustRegister(m.renders, m.renderDuration, m.exports, m.sessions)
	return m
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeRender(outcome string, started time.Time) {
	m.renders.WithLabelValues(outcome).Inc()
	m.renderDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) observeExport(dataset, format string) {
	m.exports.WithLabelValues(dataset, format).Inc()
}

func (m *Metrics) setSessions(n int) {
	m.sessions.Set(float64(n))
}
