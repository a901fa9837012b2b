// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/taibuivan/vnshelf/internal/platform/constants"
)

const metricsNamespace = "vnshelf_ingest"

// Metrics holds the counters of ingestion runs.
//
// A run is a short-lived batch process, so values are pushed to a
// Pushgateway once at the end instead of being scraped.
type Metrics struct {
	RunsTotal      *prometheus.CounterVec
	PagesFetched   prometheus.Counter
	RecordsWritten prometheus.Counter
	Truncations    prometheus.Counter
	RunDuration    prometheus.Histogram

	registry *prometheus.Registry
}

// NewMetrics registers the ingestion collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "runs_total",
			Help:      "Ingestion runs by final state",
		},
		[]string{"state"}, // "committed", "rolled_back", "failed"
	)

	m.PagesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "pages_fetched_total",
		Help:      "Source pages fetched",
	})

	m.RecordsWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "records_written_total",
		Help:      "Records committed to the catalog",
	})

	m.Truncations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "truncated_runs_total",
		Help:      "Runs stopped by the page ceiling while the source had more data",
	})

	m.RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of an ingestion run",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	m.registry.MustRegister(m.RunsTotal, m.PagesFetched, m.RecordsWritten, m.Truncations, m.RunDuration)

	return m
}

// Observe records the outcome of one run.
func (m *Metrics) Observe(summary *Summary) {
	if m == nil || summary == nil {
		return
	}

	m.RunsTotal.WithLabelValues(summary.State.metricLabel()).Inc()
	m.PagesFetched.Add(float64(summary.Pages))
	m.RecordsWritten.Add(float64(summary.Written))
	if summary.Truncated {
		m.Truncations.Inc()
	}
	m.RunDuration.Observe(summary.Duration.Seconds())
}

// Push sends the collected values to a Pushgateway under the ingest job.
func (m *Metrics) Push(context context.Context, gatewayURL string) error {
	err := push.New(gatewayURL, constants.MetricsJobName).
		Gatherer(m.registry).
		PushContext(context)
	if err != nil {
		return fmt.Errorf("ingest: push metrics: %w", err)
	}
	return nil
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
