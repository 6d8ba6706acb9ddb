// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles all collectors registered on one registry.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	UnderwritingDecisions *prometheus.CounterVec
	PoliciesIssuedTotal   prometheus.Counter
	PaymentsRecordedTotal prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		UnderwritingDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "underwriting_decisions_total",
			Help: "Finalized underwriting decisions by status and method.",
		}, []string{"status", "method"}),

		PoliciesIssuedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "policies_issued_total",
			Help: "Policies issued from approved applications.",
		}),

		PaymentsRecordedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "premium_payments_recorded_total",
			Help: "Premium payments transitioned to PAID.",
		}),
	}
}

// ObserveDecision records one finalized underwriting decision.
func (m *Metrics) ObserveDecision(status string, auto bool) {
	method := "manual"
	if auto {
		method = "auto"
	}
	m.UnderwritingDecisions.WithLabelValues(status, method).Inc()
}
