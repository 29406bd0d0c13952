// Package prometheus provides a Prometheus TelemetryHook for rill
// clients. Register the hook's collectors with a registry and attach
// the hook to a client with core.WithTelemetry.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rill-labs/rill/core"
)

// Hook implements core.TelemetryHook backed by Prometheus collectors.
// Hook is safe for concurrent use.
type Hook struct {
	requestLatency *prometheus.HistogramVec
	requestsTotal  *prometheus.CounterVec
	tokensTotal    *prometheus.CounterVec
	activeRequests prometheus.Gauge
}

// NewHook creates a hook and registers its collectors with reg. Pass
// prometheus.DefaultRegisterer to use the default registry.
func NewHook(reg prometheus.Registerer) (*Hook, error) {
	h := &Hook{
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_request_duration_seconds",
				Help:    "End-to-end chat request latency in seconds.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"provider", "model"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_requests_total",
				Help: "Total chat requests by outcome.",
			},
			[]string{"provider", "model", "status"}, // status: "success" or "error"
		),
		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_tokens_total",
				Help: "Total tokens consumed.",
			},
			[]string{"provider", "model", "direction"}, // direction: "prompt" or "completion"
		),
		activeRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "llm_active_requests",
				Help: "Number of currently in-flight chat requests.",
			},
		),
	}

	for _, c := range []prometheus.Collector{
		h.requestLatency,
		h.requestsTotal,
		h.tokensTotal,
		h.activeRequests,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// OnRequestStart marks a request in flight.
func (h *Hook) OnRequestStart(e core.RequestStartEvent) {
	h.activeRequests.Inc()
}

// OnRequestEnd records latency, outcome, and token usage.
func (h *Hook) OnRequestEnd(e core.RequestEndEvent) {
	h.activeRequests.Dec()

	model := string(e.Model)
	h.requestLatency.WithLabelValues(e.Provider, model).Observe(e.Duration().Seconds())

	status := "success"
	if e.Err != nil {
		status = "error"
	}
	h.requestsTotal.WithLabelValues(e.Provider, model, status).Inc()

	if e.Usage.PromptTokens > 0 {
		h.tokensTotal.WithLabelValues(e.Provider, model, "prompt").Add(float64(e.Usage.PromptTokens))
	}
	if e.Usage.CompletionTokens > 0 {
		h.tokensTotal.WithLabelValues(e.Provider, model, "completion").Add(float64(e.Usage.CompletionTokens))
	}
}

var _ core.TelemetryHook = (*Hook)(nil)
