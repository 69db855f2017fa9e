package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// Metrics are the collectors exposed on /metrics. Each Handler owns its own
// registry so several handlers can coexist in one process.
type Metrics struct {
	Registry     *prometheus.Registry
	Processed    *prometheus.CounterVec
	Transactions prometheus.Histogram
	Duration     prometheus.Histogram
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statements_processed_total",
			Help: "Uploaded statements by outcome.",
		}, []string{"status"}),
		Transactions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "statement_transactions",
			Help:    "Transactions reconstructed per statement.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "statement_processing_seconds",
			Help:    "Time spent evaluating a statement.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.Registry.MustRegister(
		m.Processed,
		m.Transactions,
		m.Duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
