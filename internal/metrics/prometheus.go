package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/legalops/caseload/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Metrics are registered lazily on first use so creating a collector without
// recording anything registers nothing.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	assignments    *prometheus.CounterVec
	unassignments  *prometheus.CounterVec
	workerLoad     *prometheus.GaugeVec
	lockWait       prometheus.Histogram
	historyDropped prometheus.Counter
	autoOutcomes   *prometheus.CounterVec
	ruleMatches    *prometheus.CounterVec
	transferOpened prometheus.Counter
	transferClosed *prometheus.CounterVec
	staleTransfers prometheus.Counter
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Metrics namespace (defaults to "caseload" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "caseload"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.assignments = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "assignments_total",
			Help:      "Total committed assignment creations by role and origin.",
		}, []string{"role", "origin"})

		p.unassignments = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "unassignments_total",
			Help:      "Total committed assignment terminations by role.",
		}, []string{"role"})

		p.workerLoad = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "worker_weighted_load",
			Help:      "Current weighted load per worker.",
		}, []string{"worker_id"})

		p.lockWait = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "case_lock_wait_seconds",
			Help:      "Time spent waiting for the per-case critical section.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		})

		p.historyDropped = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "history_dropped_total",
			Help:      "History entries that could not be delivered to the sink.",
		})

		p.autoOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "assign",
			Name:      "auto_outcomes_total",
			Help:      "Auto-assignment outcomes (assigned, overflow, no_eligible_worker).",
		}, []string{"outcome"})

		p.ruleMatches = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "assign",
			Name:      "rule_matches_total",
			Help:      "Candidate pools produced per rule (rule_id 'fallback' for the practice-area fallback).",
		}, []string{"rule_id"})

		p.transferOpened = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "transfer",
			Name:      "requested_total",
			Help:      "Total transfer requests opened.",
		})

		p.transferClosed = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "transfer",
			Name:      "resolved_total",
			Help:      "Total transfer requests resolved by terminal status.",
		}, []string{"status"})

		p.staleTransfers = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "transfer",
			Name:      "stale_total",
			Help:      "Transfer approvals rejected because the source assignment moved.",
		})

		collectors := []prometheus.Collector{
			p.assignments, p.unassignments, p.workerLoad, p.lockWait,
			p.historyDropped, p.autoOutcomes, p.ruleMatches,
			p.transferOpened, p.transferClosed, p.staleTransfers,
		}
		for _, c := range collectors {
			if err := p.reg.Register(c); err != nil {
				// Another collector instance already registered the same
				// metrics on this registry; recording still works, the
				// duplicates just aren't gathered.
				var are prometheus.AlreadyRegisteredError
				if !errors.As(err, &are) {
					panic(err)
				}
			}
		}
	})
}

// RecordAssignment increments the assignment counter.
func (p *PrometheusCollector) RecordAssignment(role types.Role, auto bool) {
	p.ensureRegistered()

	origin := "manual"
	if auto {
		origin = "auto"
	}
	p.assignments.WithLabelValues(string(role), origin).Inc()
}

// RecordUnassignment increments the unassignment counter.
func (p *PrometheusCollector) RecordUnassignment(role types.Role) {
	p.ensureRegistered()
	p.unassignments.WithLabelValues(string(role)).Inc()
}

// SetWorkerLoad sets the weighted load gauge for a worker.
func (p *PrometheusCollector) SetWorkerLoad(workerID string, load float64) {
	p.ensureRegistered()
	p.workerLoad.WithLabelValues(workerID).Set(load)
}

// RecordLockWait observes time spent waiting for a case lock.
func (p *PrometheusCollector) RecordLockWait(seconds float64) {
	p.ensureRegistered()
	p.lockWait.Observe(seconds)
}

// RecordHistoryDropped increments the dropped history counter.
func (p *PrometheusCollector) RecordHistoryDropped() {
	p.ensureRegistered()
	p.historyDropped.Inc()
}

// RecordAutoAssignOutcome increments the auto-assignment outcome counter.
func (p *PrometheusCollector) RecordAutoAssignOutcome(outcome string) {
	p.ensureRegistered()
	p.autoOutcomes.WithLabelValues(outcome).Inc()
}

// RecordRuleMatch increments the per-rule match counter.
func (p *PrometheusCollector) RecordRuleMatch(ruleID string) {
	p.ensureRegistered()
	if ruleID == "" {
		ruleID = "fallback"
	}
	p.ruleMatches.WithLabelValues(ruleID).Inc()
}

// RecordTransferRequested increments the transfer request counter.
func (p *PrometheusCollector) RecordTransferRequested() {
	p.ensureRegistered()
	p.transferOpened.Inc()
}

// RecordTransferResolved increments the transfer resolution counter.
func (p *PrometheusCollector) RecordTransferResolved(status types.TransferStatus) {
	p.ensureRegistered()
	p.transferClosed.WithLabelValues(string(status)).Inc()
}

// RecordStaleTransfer increments the stale transfer counter.
func (p *PrometheusCollector) RecordStaleTransfer() {
	p.ensureRegistered()
	p.staleTransfers.Inc()
}
