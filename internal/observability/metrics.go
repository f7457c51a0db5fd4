// Package observability provides Prometheus metrics for the HTTP API.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth verification outcomes recorded by the auth filter.
const (
	AuthResultVerified = "verified"
	AuthResultInvalid  = "invalid"
	AuthResultExpired  = "expired"
)

// Metrics contains the custom taskboard collectors.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	AuthVerifications *prometheus.CounterVec
	registry          *prometheus.Registry
}

// NewMetrics creates a private registry with Go and process collectors and
// registers the taskboard metrics on it.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskboard_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskboard_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthVerifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskboard_auth_verifications_total",
				Help: "Bearer token verifications by result",
			},
			[]string{"result"},
		),
		registry: registry,
	}

	registry.MustRegister(m.RequestsTotal, m.RequestDuration, m.AuthVerifications)
	return m
}

// RecordAuth increments the verification counter for result. Safe on a nil receiver.
func (m *Metrics) RecordAuth(result string) {
	if m == nil {
		return
	}
	m.AuthVerifications.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
