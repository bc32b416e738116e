package metrics

import "github.com/prometheus/client_golang/prometheus"

// CopilotMetrics exposes counters/histograms for the resubmission flows.
type CopilotMetrics struct {
	resolutionTotal   *prometheus.CounterVec
	reasonTotal       *prometheus.CounterVec
	generationSeconds *prometheus.HistogramVec
	generationErrors  prometheus.Counter
}

func NewCopilotMetrics(reg prometheus.Registerer) *CopilotMetrics {
	m := &CopilotMetrics{
		resolutionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "copilot",
			Subsystem: "policy",
			Name:      "resolution_total",
			Help:      "Policy resolution attempts by outcome",
		}, []string{"outcome"}),
		reasonTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "copilot",
			Subsystem: "rejection",
			Name:      "reason_total",
			Help:      "Classified rejection reasons by category",
		}, []string{"category"}),
		generationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "copilot",
			Subsystem: "generation",
			Name:      "latency_seconds",
			Help:      "Latency of text-generation calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		generationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "copilot",
			Subsystem: "generation",
			Name:      "errors_total",
			Help:      "Failed text-generation calls",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.resolutionTotal, m.reasonTotal, m.generationSeconds, m.generationErrors)
	return m
}

// Resolution outcome labels.
const (
	ResolutionMatched        = "matched"
	ResolutionPolicyNotFound = "policy_not_found"
	ResolutionTierNotMatched = "tier_not_matched"
)

func (m *CopilotMetrics) ObserveResolution(outcome string) {
	if m == nil {
		return
	}
	m.resolutionTotal.WithLabelValues(outcome).Inc()
}

func (m *CopilotMetrics) ObserveReason(category string) {
	if m == nil {
		return
	}
	m.reasonTotal.WithLabelValues(category).Inc()
}

func (m *CopilotMetrics) ObserveGeneration(mode string, seconds float64) {
	if m == nil {
		return
	}
	m.generationSeconds.WithLabelValues(mode).Observe(seconds)
}

func (m *CopilotMetrics) ObserveGenerationError() {
	if m == nil {
		return
	}
	m.generationErrors.Inc()
}
