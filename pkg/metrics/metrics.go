// Package metrics exposes Prometheus metrics for the CLI's long-running
// watch mode. The engine's own telemetry goes through OpenTelemetry; this
// package covers the outer surface: runs started from documents, document
// reloads, and the scrape endpoint itself.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the watch surface
type Metrics struct {
	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	runEmissions *prometheus.CounterVec

	documentReloads *prometheus.CounterVec
	pipelinesLoaded prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics instance with a private registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fluxion_runs_total",
				Help: "Total number of pipeline runs by outcome",
			},
			[]string{"pipeline", "outcome"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fluxion_run_duration_seconds",
				Help:    "Pipeline run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"pipeline"},
		),

		runEmissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fluxion_run_emissions_total",
				Help: "Total number of output snapshots emitted",
			},
			[]string{"pipeline"},
		),

		documentReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fluxion_document_reloads_total",
				Help: "Total number of document reload attempts by status",
			},
			[]string{"status"},
		),

		pipelinesLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "fluxion_pipelines_loaded",
				Help: "Number of pipelines in the currently loaded document",
			},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.runsTotal,
		m.runDuration,
		m.runEmissions,
		m.documentReloads,
		m.pipelinesLoaded,
	)

	return m
}

// RecordRun records metrics for a finished pipeline run
func (m *Metrics) RecordRun(pipeline, outcome string, emissions int, duration time.Duration) {
	m.runsTotal.WithLabelValues(pipeline, outcome).Inc()
	m.runDuration.WithLabelValues(pipeline).Observe(duration.Seconds())
	if emissions > 0 {
		m.runEmissions.WithLabelValues(pipeline).Add(float64(emissions))
	}
}

// RecordDocumentReload records a document reload attempt
func (m *Metrics) RecordDocumentReload(status string) {
	m.documentReloads.WithLabelValues(status).Inc()
}

// SetPipelinesLoaded updates the loaded pipeline gauge
func (m *Metrics) SetPipelinesLoaded(count int) {
	m.pipelinesLoaded.Set(float64(count))
}

// Handler returns an HTTP handler serving the private registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
