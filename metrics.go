package caseload

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/legalops/caseload/internal/metrics"
)

// NewPrometheusMetrics returns a MetricsCollector that registers its
// collectors with reg under the given namespace ("caseload" when empty).
// Registration is lazy and idempotent, so two engines sharing a registry do
// not collide.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) MetricsCollector {
	return metrics.NewPrometheus(reg, namespace)
}

// NewNopMetrics returns a MetricsCollector that discards everything.
func NewNopMetrics() MetricsCollector {
	return metrics.NewNop()
}
