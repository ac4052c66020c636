// Package metrics exposes Prometheus metrics for the shared memory
// transport. The transport itself never logs or counts anything, and data loss
// on a lapped reader is invisible inside pkg/shm, so the
// consuming process drives these counters from what it observes.
package metrics

import (
	"net/http"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transport holds the per-process transport metrics.
type Transport struct {
	registry *prometheus.Registry
	logger   log.Logger

	dequeued    *prometheus.CounterVec
	enqueued    *prometheus.CounterVec
	gaps        *prometheus.CounterVec
	lag         *prometheus.GaugeVec
	pollLatency prometheus.Histogram
}

// NewTransport builds a registry with the transport metric set.
func NewTransport(namespace string) *Transport {
	registry := prometheus.NewRegistry()

	m := &Transport{
		registry: registry,
		logger:   log.Root().New("module", "metrics"),

		enqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shm_messages_enqueued_total",
			Help:      "Messages this process published, by queue",
		}, []string{"queue"}),

		dequeued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shm_messages_dequeued_total",
			Help:      "Messages this process consumed, by queue",
		}, []string{"queue"}),

		gaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shm_sequence_gaps_total",
			Help:      "Messages lost to ring overwrite, by queue (reader fell behind)",
		}, []string{"queue"}),

		lag: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "shm_reader_lag",
			Help:      "Head minus reader cursor, by queue",
		}, []string{"queue"}),

		pollLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "shm_dequeue_latency_nanoseconds",
			Help:      "Publish-to-dequeue latency sampled from record timestamps",
			Buckets:   []float64{100, 250, 500, 1000, 2500, 5000, 10000, 25000, 50000, 100000},
		}),
	}

	registry.MustRegister(m.enqueued, m.dequeued, m.gaps, m.lag, m.pollLatency)
	return m
}

// StartServer serves /metrics on port in the background.
func (m *Transport) StartServer(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			m.logger.Error("metrics server failed", "error", err)
		}
	}()
	m.logger.Info("metrics server listening", "port", port)
}

// Registry exposes the underlying registry for callers that mount the
// handler on their own mux.
func (m *Transport) Registry() *prometheus.Registry { return m.registry }

// Enqueued counts one published message.
func (m *Transport) Enqueued(queue string) {
	m.enqueued.WithLabelValues(queue).Inc()
}

// Dequeued counts one consumed message.
func (m *Transport) Dequeued(queue string) {
	m.dequeued.WithLabelValues(queue).Inc()
}

// Gap records n messages lost when the reader resynchronized after an
// overwrite.
func (m *Transport) Gap(queue string, n float64) {
	m.gaps.WithLabelValues(queue).Add(n)
}

// Lag reports how far the reader trails the writers.
func (m *Transport) Lag(queue string, lag float64) {
	m.lag.WithLabelValues(queue).Set(lag)
}

// DequeueLatency records one publish-to-dequeue sample in nanoseconds.
func (m *Transport) DequeueLatency(ns float64) {
	m.pollLatency.Observe(ns)
}
