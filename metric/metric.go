// Package metric provides Prometheus instrumentation for extraction runs.
// Attaching it is optional; a nil *Metrics records nothing.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Run statuses used as label values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Metrics holds the extraction-level metrics.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal          *prometheus.CounterVec
	RunDuration        prometheus.Histogram
	DescriptorsWritten prometheus.Counter
}

// New creates a Metrics instance backed by its own Prometheus registry,
// with Go runtime and process collectors included.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "strobe",
				Subsystem: "extractor",
				Name:      "runs_total",
				Help:      "Total number of extraction runs",
			},
			[]string{"status"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "strobe",
				Subsystem: "extractor",
				Name:      "run_duration_seconds",
				Help:      "Extraction run duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		DescriptorsWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "strobe",
				Subsystem: "pool",
				Name:      "descriptors_written_total",
				Help:      "Total number of descriptor keys committed to pools",
			},
		),
	}

	registry.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.DescriptorsWritten,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the underlying Prometheus registry for scraping.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRun records the outcome of one extraction run.
func (m *Metrics) ObserveRun(status string, duration time.Duration, descriptors int) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(duration.Seconds())
	if descriptors > 0 {
		m.DescriptorsWritten.Add(float64(descriptors))
	}
}
