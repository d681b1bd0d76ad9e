package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/legalops/caseload/types"
)

// StaticRules implements a rule source with a fixed list of rules.
type StaticRules struct {
	mu    sync.RWMutex
	rules []types.AssignmentRule
}

var _ types.RuleSource = (*StaticRules)(nil)

// NewStaticRules creates a new static rule source.
//
// The source returns a fixed list of rules that never changes until Update is
// called. Useful for testing and for deployments whose routing rules are
// known at startup.
//
// Parameters:
//   - rules: Fixed list of rules
//
// Returns:
//   - *StaticRules: Initialized static source
//
// Example:
//
//	rules := []types.AssignmentRule{
//	    {ID: "r-family", Priority: 10, Active: true,
//	        Match:  types.MatchPredicate{PracticeArea: "family"},
//	        Target: types.TargetPolicy{Kind: types.TargetTeam, Team: []string{"w-1", "w-2"}}},
//	}
//	src := source.NewStaticRules(rules)
//	eng, err := caseload.NewEngine(&cfg, src, directory)
//	if err != nil { /* handle */ }
func NewStaticRules(rules []types.AssignmentRule) *StaticRules {
	s := &StaticRules{}
	s.Update(rules)
	return s
}

// ActiveRules returns the active subset of the stored rules.
//
// Returns:
//   - []types.AssignmentRule: Active rules, in stored order
//   - error: Always nil (never fails)
func (s *StaticRules) ActiveRules(_ context.Context) ([]types.AssignmentRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]types.AssignmentRule, 0, len(s.rules))
	for _, r := range s.rules {
		if r.Active {
			result = append(result, r)
		}
	}

	return result, nil
}

// Update replaces the rule list.
//
// This allows the static source to simulate rule-management changes, which is
// useful for testing rule refresh scenarios.
func (s *StaticRules) Update(rules []types.AssignmentRule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rules = make([]types.AssignmentRule, len(rules))
	copy(s.rules, rules)
}

// StaticDirectory implements a worker directory with a fixed roster.
type StaticDirectory struct {
	mu      sync.RWMutex
	workers map[string]types.Worker
	order   []string
}

var _ types.WorkerDirectory = (*StaticDirectory)(nil)

// NewStaticDirectory creates a new static worker directory.
//
// Parameters:
//   - workers: Fixed roster
//
// Returns:
//   - *StaticDirectory: Initialized static directory
func NewStaticDirectory(workers []types.Worker) *StaticDirectory {
	d := &StaticDirectory{}
	d.Update(workers)
	return d
}

// Worker returns the record for the given worker ID.
//
// Returns:
//   - types.Worker: The worker record
//   - error: ErrWorkerNotFound when no record exists
func (d *StaticDirectory) Worker(_ context.Context, id string) (types.Worker, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	w, ok := d.workers[id]
	if !ok {
		return types.Worker{}, fmt.Errorf("worker %s: %w", id, types.ErrWorkerNotFound)
	}

	return w, nil
}

// ListWorkers returns all workers in insertion order.
func (d *StaticDirectory) ListWorkers(_ context.Context) ([]types.Worker, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]types.Worker, 0, len(d.order))
	for _, id := range d.order {
		result = append(result, d.workers[id])
	}

	return result, nil
}

// Update replaces the roster. Later duplicates of a worker ID win.
func (d *StaticDirectory) Update(workers []types.Worker) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.workers = make(map[string]types.Worker, len(workers))
	d.order = d.order[:0]
	for _, w := range workers {
		if _, seen := d.workers[w.ID]; !seen {
			d.order = append(d.order, w.ID)
		}
		d.workers[w.ID] = w
	}
}
