// ABOUTME: Prometheus instrumentation for backend calls and detail page events.
// ABOUTME: Uses a private registry exposed through Handler at /metrics.

package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "provadmin"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	backendRequests *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	pageEvents      *prometheus.CounterVec
	staleResponses  prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Backend API calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Backend API call latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		pageEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "page",
			Name:      "events_total",
			Help:      "Detail page events (load, delete, edit, close, saved).",
		}, []string{"event"}),
		staleResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "page",
			Name:      "stale_responses_total",
			Help:      "Provider list responses discarded because a newer fetch was issued.",
		}),
	}

	m.registry.MustRegister(
		m.backendRequests,
		m.backendDuration,
		m.pageEvents,
		m.staleResponses,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveBackend records one backend call that started at start.
func (m *Metrics) ObserveBackend(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.backendDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	m.backendRequests.WithLabelValues(operation, Outcome(err)).Inc()
}

// PageEvent counts a detail page event.
func (m *Metrics) PageEvent(event string) {
	if m == nil {
		return
	}
	m.pageEvents.WithLabelValues(event).Inc()
}

// StaleResponse counts a discarded provider list response.
func (m *Metrics) StaleResponse() {
	if m == nil {
		return
	}
	m.staleResponses.Inc()
}

// outcomer is implemented by errors that know their metrics label.
type outcomer interface {
	Outcome() string
}

// Outcome maps an error to a low-cardinality label.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var o outcomer
	if errors.As(err, &o) {
		return o.Outcome()
	}
	return "error"
}
