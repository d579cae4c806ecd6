// Package metrics exposes Prometheus instrumentation for the roster store.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/charmas3r/recovery-token-project-sub000/docstore"
	"github.com/charmas3r/recovery-token-project-sub000/roster"
)

// Metrics holds the collectors for roster store operations. It implements
// roster.Recorder.
type Metrics struct {
	registry *prometheus.Registry
	ops      *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var _ roster.Recorder = (*Metrics)(nil)

// New creates a Metrics set on its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recoverytoken",
			Subsystem: "roster",
			Name:      "operations_total",
			Help:      "Roster store operations by outcome.",
		}, []string{"op", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "recoverytoken",
			Subsystem: "roster",
			Name:      "operation_seconds",
			Help:      "Roster store operation latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	m.registry.MustRegister(m.ops, m.latency)
	return m
}

// Observe records one completed store operation.
func (m *Metrics) Observe(op string, elapsed time.Duration, err error) {
	m.ops.WithLabelValues(op, outcome(err)).Inc()
	m.latency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// Handler serves the /metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// outcome buckets an operation error into a low-cardinality label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, docstore.ErrConflict):
		return "conflict"
	case errors.Is(err, docstore.ErrUnavailable):
		return "unavailable"
	}
	var verr *roster.ValidationError
	if errors.As(err, &verr) {
		return "invalid"
	}
	return "error"
}
