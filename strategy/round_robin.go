package strategy

import (
	"sort"

	"github.com/zeebo/xxh3"

	"github.com/legalops/caseload/types"
)

// RoundRobin spreads cases across the candidate pool by hashing the case ID.
type RoundRobin struct {
	seed uint64
}

var _ types.RankStrategy = (*RoundRobin)(nil)

// RoundRobinOption configures a RoundRobin strategy.
type RoundRobinOption func(*RoundRobin)

// NewRoundRobin creates a new hash-spread ranking strategy.
//
// The pick is a pure function of the case ID and the sorted pool: the case ID
// hash indexes into the pool, so a stream of distinct cases spreads evenly
// across candidates without the strategy holding a cursor. Re-running the
// same case against the same pool always picks the same worker.
//
// Parameters:
//   - opts: Optional configuration (WithSeed)
//
// Returns:
//   - *RoundRobin: Initialized strategy
func NewRoundRobin(opts ...RoundRobinOption) *RoundRobin {
	rr := &RoundRobin{}
	for _, opt := range opts {
		opt(rr)
	}

	return rr
}

// WithSeed sets a custom hash seed.
//
// Distinct seeds produce distinct spreads, which keeps two engines sharing a
// roster from always landing the same cases on the same workers.
//
// Parameters:
//   - seed: Hash seed value
//
// Returns:
//   - RoundRobinOption: Configuration option
func WithSeed(seed uint64) RoundRobinOption {
	return func(rr *RoundRobin) {
		rr.seed = seed
	}
}

// Pick returns the candidate the case ID hashes to.
//
// Parameters:
//   - ref: The case being assigned
//   - pool: Capacity-filtered candidates
//
// Returns:
//   - types.Candidate: The selected candidate
//   - error: ErrEmptyPool when the pool is empty
func (rr *RoundRobin) Pick(ref types.CaseRef, pool []types.Candidate) (types.Candidate, error) {
	if len(pool) == 0 {
		return types.Candidate{}, ErrEmptyPool
	}

	// Sort by worker ID first so the pick does not depend on pool order.
	sorted := make([]types.Candidate, len(pool))
	copy(sorted, pool)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Worker.ID < sorted[j].Worker.ID
	})

	h := xxh3.HashStringSeed(ref.ID, rr.seed)
	return sorted[h%uint64(len(sorted))], nil
}
