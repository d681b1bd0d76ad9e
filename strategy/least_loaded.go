package strategy

import (
	"github.com/legalops/caseload/types"
)

// LeastLoaded picks the candidate with the lowest weighted load.
type LeastLoaded struct{}

var _ types.RankStrategy = (*LeastLoaded)(nil)

// NewLeastLoaded creates a new least-loaded ranking strategy.
//
// Ties are broken deterministically in three levels:
//  1. Lowest live weighted load
//  2. Lowest persisted baseline load (Worker.CurrentLoad)
//  3. Lexicographically smallest worker ID
//
// The same pool and loads therefore always produce the same pick, which keeps
// auto-assignment reproducible and testable.
//
// Returns:
//   - *LeastLoaded: Initialized strategy
//
// Example:
//
//	eng, err := caseload.NewEngine(&cfg, rules, directory,
//	    caseload.WithStrategy(strategy.NewLeastLoaded()),
//	)
//	if err != nil { /* handle */ }
func NewLeastLoaded() *LeastLoaded {
	return &LeastLoaded{}
}

// Pick returns the least-loaded candidate.
//
// Parameters:
//   - ref: The case being assigned (unused; the pick depends only on loads)
//   - pool: Capacity-filtered candidates
//
// Returns:
//   - types.Candidate: The selected candidate
//   - error: ErrEmptyPool when the pool is empty
func (s *LeastLoaded) Pick(_ types.CaseRef, pool []types.Candidate) (types.Candidate, error) {
	if len(pool) == 0 {
		return types.Candidate{}, ErrEmptyPool
	}

	best := pool[0]
	for _, c := range pool[1:] {
		if less(c, best) {
			best = c
		}
	}

	return best, nil
}

// less orders candidates by the three-level tie-break.
func less(a, b types.Candidate) bool {
	if a.Load.WeightedLoad != b.Load.WeightedLoad {
		return a.Load.WeightedLoad < b.Load.WeightedLoad
	}
	if a.Worker.CurrentLoad != b.Worker.CurrentLoad {
		return a.Worker.CurrentLoad < b.Worker.CurrentLoad
	}
	return a.Worker.ID < b.Worker.ID
}
