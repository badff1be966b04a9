package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConditionalMetrics counts how conditional requests were resolved.
type ConditionalMetrics struct {
	outcomes *prometheus.CounterVec
}

func NewConditionalMetrics(reg prometheus.Registerer) *ConditionalMetrics {
	if reg == nil {
		return &ConditionalMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "conditional_request_outcomes_total",
		Help: "Conditional request outcomes partitioned by resource, operation and outcome.",
	}, []string{"resource", "operation", "outcome"})
	reg.MustRegister(outcomes)
	return &ConditionalMetrics{outcomes: outcomes}
}

// Record increments the counter for one resolved request.
func (c *ConditionalMetrics) Record(resource, operation, outcome string) {
	if c == nil || c.outcomes == nil {
		return
	}
	c.outcomes.WithLabelValues(normalizeLabel(resource), normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}
