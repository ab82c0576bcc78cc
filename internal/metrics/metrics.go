// Package metrics exposes Prometheus counters for the MCQ pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mcqengine"

// Metrics holds the pipeline collectors and the registry they live in.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	sections     *prometheus.CounterVec
	judgments    *prometheus.CounterVec
	warnings     *prometheus.CounterVec
	modelCalls   *prometheus.CounterVec
	modelLatency *prometheus.HistogramVec
}

// New creates a registry with the pipeline collectors plus the Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sections_total",
			Help:      "Sections processed by the pipeline, by outcome.",
		}, []string{"outcome"}),
		judgments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "judgments_total",
			Help:      "Evaluation judgments, by criterion and normalized answer.",
		}, []string{"criterion", "judgment"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Non-fatal pipeline warnings, by kind.",
		}, []string{"kind"}),
		modelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Model invocations, by role and outcome.",
		}, []string{"role", "outcome"}),
		modelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_seconds",
			Help:      "Model invocation latency, by role.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"role"}),
	}
	m.registry.MustRegister(
		m.sections, m.judgments, m.warnings, m.modelCalls, m.modelLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSection counts one section outcome ("accepted", "rejected", "failed").
func (m *Metrics) ObserveSection(outcome string) {
	if m == nil {
		return
	}
	m.sections.WithLabelValues(outcome).Inc()
}

// ObserveJudgment counts one criterion answer. Free-text answers other than
// yes/no/unavailable are bucketed as "other" to bound label cardinality.
func (m *Metrics) ObserveJudgment(criterion, judgment string) {
	if m == nil {
		return
	}
	switch judgment {
	case "yes", "no", "unavailable":
	default:
		judgment = "other"
	}
	m.judgments.WithLabelValues(criterion, judgment).Inc()
}

// ObserveWarning counts one warning.
func (m *Metrics) ObserveWarning(kind string) {
	if m == nil {
		return
	}
	m.warnings.WithLabelValues(kind).Inc()
}

// ObserveModelCall records one model invocation.
func (m *Metrics) ObserveModelCall(role string, err error, took time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.modelCalls.WithLabelValues(role, outcome).Inc()
	m.modelLatency.WithLabelValues(role).Observe(took.Seconds())
}
