package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/leapstack-labs/needscheck/internal/engine"
)

// Metrics are the service's prometheus collectors.
type Metrics struct {
	validations *prometheus.CounterVec
	findings    *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "needscheck_validations_total",
			Help: "Validation runs by verdict.",
		}, []string{"verdict"}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "needscheck_findings_total",
			Help: "Findings by rule and severity.",
		}, []string{"rule", "severity"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "needscheck_validation_duration_seconds",
			Help:    "Time spent validating one document.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	reg.MustRegister(m.validations, m.findings, m.duration)
	return m
}

// Observe records one finished run.
func (m *Metrics) Observe(res *engine.Result) {
	m.validations.WithLabelValues(string(res.Verdict)).Inc()
	for _, d := range res.Findings() {
		m.findings.WithLabelValues(d.RuleID, d.Severity.String()).Inc()
	}
	m.duration.Observe(res.Duration.Seconds())
}
