// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for the canvas service.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "canvas"

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// HTTPRequestsTotal counts requests by route pattern, method and status.
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTPRequestDuration measures request latency by route pattern and method.
	HTTPRequestDuration *prometheus.HistogramVec

	// GenerationsTotal counts generations by capability, model and outcome.
	GenerationsTotal *prometheus.CounterVec
	// GenerationDuration measures model call latency.
	GenerationDuration *prometheus.HistogramVec

	// CommandsTotal counts dispatched commands by name and status.
	CommandsTotal *prometheus.CounterVec

	// QueriesTotal counts answered queries by name and status.
	QueriesTotal *prometheus.CounterVec
	// QueryDuration measures query latency by name.
	QueryDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		GenerationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "generation",
			Name:      "total",
			Help:      "Model generations by capability, model and outcome.",
		}, []string{"capability", "model", "outcome"}),
		GenerationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Model call latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"capability", "model"}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "commands",
			Name:      "total",
			Help:      "Commands dispatched by name and status.",
		}, []string{"command", "status"}),
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "queries",
			Name:      "total",
			Help:      "Queries answered by name and status.",
		}, []string{"query", "status"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "queries",
			Name:      "duration_seconds",
			Help:      "Query latency.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"query"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GenerationsTotal,
		m.GenerationDuration,
		m.CommandsTotal,
		m.QueriesTotal,
		m.QueryDuration,
	)
	return m
}

// ObserveGeneration records one finished generation.
func (m *Metrics) ObserveGeneration(capability, model, outcome string, elapsed time.Duration) {
	m.GenerationsTotal.WithLabelValues(capability, model, outcome).Inc()
	m.GenerationDuration.WithLabelValues(capability, model).Observe(elapsed.Seconds())
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveCommand records one dispatched command.
func (m *Metrics) ObserveCommand(command string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.CommandsTotal.WithLabelValues(command, status).Inc()
}

// ObserveQuery records one answered query.
func (m *Metrics) ObserveQuery(query string, elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.QueriesTotal.WithLabelValues(query, status).Inc()
	m.QueryDuration.WithLabelValues(query).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
