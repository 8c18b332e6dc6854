// Package metrics exposes run statistics as Prometheus metrics. A run is a
// one-shot process, so the registry is written to a node-exporter textfile
// instead of being scraped.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "iganalyzer"

// Record outcomes
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Collector holds the analyzer metrics in a private registry
type Collector struct {
	registry *prometheus.Registry

	recordsTotal    *prometheus.CounterVec
	rejectionsTotal *prometheus.CounterVec
	warningsTotal   *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	lastRun         prometheus.Gauge
}

// NewCollector creates a collector with its own registry
func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.recordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Input records by normalization outcome",
		},
		[]string{"outcome"},
	)

	c.rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Rejected input records by reason",
		},
		[]string{"reason"},
	)

	c.warningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Coerced fields of accepted records by reason",
		},
		[]string{"reason"},
	)

	c.stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to ~26s
		},
		[]string{"stage"},
	)

	c.lastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed analysis",
		},
	)

	c.registry.MustRegister(
		c.recordsTotal,
		c.rejectionsTotal,
		c.warningsTotal,
		c.stageDuration,
		c.lastRun,
		collectors.NewGoCollector(),
	)

	return c
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordOutcome adds n records with the given outcome
func (c *Collector) RecordOutcome(outcome string, n int) {
	c.recordsTotal.WithLabelValues(outcome).Add(float64(n))
}

// RecordRejections adds rejection counts keyed by reason
func (c *Collector) RecordRejections(byReason map[string]int) {
	for reason, n := range byReason {
		c.rejectionsTotal.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordWarnings adds warning counts keyed by reason
func (c *Collector) RecordWarnings(byReason map[string]int) {
	for reason, n := range byReason {
		c.warningsTotal.WithLabelValues(reason).Add(float64(n))
	}
}

// ObserveStage records how long a pipeline stage took
func (c *Collector) ObserveStage(stage string, d time.Duration) {
	c.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// MarkCompleted stamps the completion time of a run
func (c *Collector) MarkCompleted(t time.Time) {
	c.lastRun.Set(float64(t.Unix()))
}

// WriteTextfile writes the registry in the Prometheus text format to path
func (c *Collector) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
