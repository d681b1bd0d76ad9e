// Package rules evaluates assignment rules against cases and resolves the
// candidate pool for auto-assignment.
//
// Evaluation is first-match-wins: active rules are sorted by ascending
// Priority and the first rule whose predicate matches the case determines the
// candidate pool. When no rule matches, the fallback pool is every active
// worker covering the case's practice area.
package rules

import (
	"context"
	"fmt"
	"sort"

	"github.com/legalops/caseload/types"
)

// Engine resolves candidate pools from a rule source and worker directory.
type Engine struct {
	rules     types.RuleSource
	directory types.WorkerDirectory
	logger    types.Logger
	metrics   types.AssignMetrics
}

// New creates an Engine over the given rule source and worker directory.
func New(rules types.RuleSource, directory types.WorkerDirectory) *Engine {
	return &Engine{
		rules:     rules,
		directory: directory,
		logger:    nopLogger{},
		metrics:   nopAssignMetrics{},
	}
}

// SetLogger replaces the engine's logger.
func (e *Engine) SetLogger(logger types.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// SetMetrics replaces the engine's metrics collector.
func (e *Engine) SetMetrics(m types.AssignMetrics) {
	if m != nil {
		e.metrics = m
	}
}

// ResolveCandidates evaluates the rules against the case and returns the
// candidate pool.
//
// The pool carries the matched rule's ID, or an empty RuleID when the
// practice-area fallback produced it. Inactive workers never appear in the
// pool. Returns ErrRuleSourceUnavailable (wrapped) when the rule feed cannot
// be read, and ErrNoEligibleWorker when neither a matched rule nor the
// fallback yields any worker.
func (e *Engine) ResolveCandidates(ctx context.Context, ref types.CaseRef) (types.CandidatePool, error) {
	active, err := e.activeRulesSorted(ctx)
	if err != nil {
		return types.CandidatePool{}, err
	}

	for _, rule := range active {
		if !rule.Match.Matches(ref) {
			continue
		}

		pool, err := e.resolveTarget(ctx, ref, rule)
		if err != nil {
			return types.CandidatePool{}, err
		}
		e.metrics.RecordRuleMatch(rule.ID)
		e.logger.Debug("rule matched", "case_id", ref.ID, "rule_id", rule.ID, "candidates", len(pool.Workers))
		if len(pool.Workers) == 0 {
			// A matched rule with an empty pool does not fall through to
			// later rules; the rule decided the routing and the routing has
			// nobody eligible.
			return types.CandidatePool{}, fmt.Errorf("rule %s matched case %s but yielded no eligible worker: %w",
				rule.ID, ref.ID, types.ErrNoEligibleWorker)
		}
		return pool, nil
	}

	pool, err := e.fallbackPool(ctx, ref)
	if err != nil {
		return types.CandidatePool{}, err
	}
	e.metrics.RecordRuleMatch("")
	if len(pool.Workers) == 0 {
		return types.CandidatePool{}, fmt.Errorf("no active worker covers practice area %q: %w",
			ref.PracticeArea, types.ErrNoEligibleWorker)
	}
	return pool, nil
}

func (e *Engine) activeRulesSorted(ctx context.Context) ([]types.AssignmentRule, error) {
	all, err := e.rules.ActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrRuleSourceUnavailable, err)
	}

	active := make([]types.AssignmentRule, 0, len(all))
	for _, r := range all {
		if r.Active {
			active = append(active, r)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority < active[j].Priority
	})
	return active, nil
}

func (e *Engine) resolveTarget(ctx context.Context, ref types.CaseRef, rule types.AssignmentRule) (types.CandidatePool, error) {
	pool := types.CandidatePool{RuleID: rule.ID}

	switch rule.Target.Kind {
	case types.TargetWorker:
		w, err := e.directory.Worker(ctx, rule.Target.WorkerID)
		if err != nil {
			e.logger.Warn("rule targets unknown worker", "rule_id", rule.ID, "worker_id", rule.Target.WorkerID, "error", err)
			return pool, nil
		}
		if w.Active {
			pool.Workers = append(pool.Workers, w)
		}

	case types.TargetTeam:
		for _, id := range rule.Target.Team {
			w, err := e.directory.Worker(ctx, id)
			if err != nil {
				e.logger.Warn("rule team member not found", "rule_id", rule.ID, "worker_id", id, "error", err)
				continue
			}
			if w.Active {
				pool.Workers = append(pool.Workers, w)
			}
		}

	case types.TargetPracticeArea:
		workers, err := e.coveringWorkers(ctx, ref.PracticeArea)
		if err != nil {
			return types.CandidatePool{}, err
		}
		pool.Workers = workers

	default:
		return types.CandidatePool{}, fmt.Errorf("rule %s: unknown target kind %q: %w",
			rule.ID, rule.Target.Kind, types.ErrInvalidConfig)
	}

	return pool, nil
}

func (e *Engine) fallbackPool(ctx context.Context, ref types.CaseRef) (types.CandidatePool, error) {
	workers, err := e.coveringWorkers(ctx, ref.PracticeArea)
	if err != nil {
		return types.CandidatePool{}, err
	}
	return types.CandidatePool{Workers: workers}, nil
}

func (e *Engine) coveringWorkers(ctx context.Context, practiceArea string) ([]types.Worker, error) {
	all, err := e.directory.ListWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}

	var out []types.Worker
	for _, w := range all {
		if w.Active && w.HandlesPracticeArea(practiceArea) {
			out = append(out, w)
		}
	}
	return out, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Fatal(string, ...any) {}

type nopAssignMetrics struct{}

func (nopAssignMetrics) RecordAutoAssignOutcome(string) {}
func (nopAssignMetrics) RecordRuleMatch(string)         {}
