// Package metrics exposes Prometheus counters for repository events and
// HTTP traffic.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"clientrepo/internal/repository/observable"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	repoEvents    *prometheus.CounterVec
	clientsLoaded prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		repoEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clientrepo_repository_events_total",
			Help: "Repository events delivered to observers",
		}, []string{"event"}),
		clientsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clientrepo_clients_loaded",
			Help: "Number of clients returned by the last full read",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clientrepo_http_requests_total",
			Help: "HTTP requests processed",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clientrepo_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.repoEvents,
		m.clientsLoaded,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Update counts a repository event. It makes Metrics an observable.Observer.
func (m *Metrics) Update(ctx context.Context, ev observable.Event) {
	m.repoEvents.WithLabelValues(string(ev.Type)).Inc()
	if ev.Type == observable.EventClientsLoaded {
		m.clientsLoaded.Set(float64(len(ev.Clients())))
	}
}

// ObserveHTTP records one finished request
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
