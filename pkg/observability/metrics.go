// Package observability holds the prometheus collectors for the
// walkout service: submission outcomes, external lookup latency and
// HTTP handler durations.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors the engine and adapters report into.
type Metrics struct {
	registry *prometheus.Registry

	submissions    *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
	httpDuration   *prometheus.HistogramVec
}

// New creates the collectors on a private registry so tests can hold
// several instances without double-registration panics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walkout_submissions_total",
				Help: "Section submissions by outcome",
			},
			[]string{"section", "outcome"},
		),
		lookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "walkout_lookup_duration_seconds",
				Help: "Duration of external rule-engine and note-analysis calls",
			},
			[]string{"service"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "walkout_http_request_duration_seconds",
				Help: "Duration of HTTP requests by route and status",
			},
			[]string{"route", "code"},
		),
	}

	reg.MustRegister(m.submissions, m.lookupDuration, m.httpDuration)
	return m
}

// CountSubmission records one submission outcome for a section.
func (m *Metrics) CountSubmission(section, outcome string) {
	m.submissions.WithLabelValues(section, outcome).Inc()
}

// ObserveLookup records the duration of an external call in seconds.
func (m *Metrics) ObserveLookup(service string, seconds float64) {
	m.lookupDuration.WithLabelValues(service).Observe(seconds)
}

// ObserveHTTP records one handled request.
func (m *Metrics) ObserveHTTP(route, code string, seconds float64) {
	m.httpDuration.WithLabelValues(route, code).Observe(seconds)
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
