package caseload

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/legalops/caseload/source"
	"github.com/legalops/caseload/strategy"
	"github.com/legalops/caseload/types"
)

func tortsCase(id string) types.CaseRef {
	return types.CaseRef{ID: id, PracticeArea: "torts", CaseType: "negligence", Priority: types.PriorityMedium}
}

func TestAutoAssign_RulePrecedence(t *testing.T) {
	// A narrow family rule at priority 1 and a catch-all at priority 2: a
	// family case must resolve through the narrow rule's target.
	eng := newTestEngine(t, []types.AssignmentRule{
		{ID: "r-family", Priority: 1, Active: true,
			Match:  MatchPredicate{PracticeArea: "family"},
			Target: TargetPolicy{Kind: TargetWorker, WorkerID: "w-ada"}},
		{ID: "r-all", Priority: 2, Active: true,
			Match:  MatchPredicate{},
			Target: TargetPolicy{Kind: TargetWorker, WorkerID: "w-cey"}},
	})

	ref := types.CaseRef{ID: "case-fam", PracticeArea: "family", CaseType: "custody"}
	asgn, err := eng.AutoAssign(context.Background(), ref, paralegal)
	require.NoError(t, err)
	require.Equal(t, "w-ada", asgn.WorkerID)
	require.Equal(t, RolePrimary, asgn.Role)
	require.False(t, asgn.Overflow)

	history := eng.History(context.Background(), "case-fam")
	require.Len(t, history, 1)
	require.Equal(t, types.EventAutoAssigned, history[0].Event)
}

func TestAutoAssign_CapacityFilter(t *testing.T) {
	// w-ada and w-ben both cover torts with MaxLoad 2. Fill w-ada to
	// capacity; the next torts case must land on w-ben.
	eng := newTestEngine(t, nil)
	ctx := context.Background()

	for _, caseID := range []string{"case-1", "case-2"} {
		_, err := eng.Assign(ctx, AssignRequest{CaseID: caseID, WorkerID: "w-ada", Role: RolePrimary, Actor: paralegal})
		require.NoError(t, err)
	}

	asgn, err := eng.AutoAssign(ctx, tortsCase("case-3"), paralegal)
	require.NoError(t, err)
	require.Equal(t, "w-ben", asgn.WorkerID)
}

func TestAutoAssign_NoCoverage(t *testing.T) {
	eng := newTestEngine(t, nil)

	ref := types.CaseRef{ID: "case-mar", PracticeArea: "maritime"}
	_, err := eng.AutoAssign(context.Background(), ref, paralegal)
	require.ErrorIs(t, err, ErrNoEligibleWorker)
}

func TestAutoAssign_AlreadyOwned(t *testing.T) {
	eng := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := eng.Assign(ctx, AssignRequest{CaseID: "case-1", WorkerID: "w-ada", Role: RolePrimary, Actor: paralegal})
	require.NoError(t, err)

	_, err = eng.AutoAssign(ctx, tortsCase("case-1"), paralegal)
	require.ErrorIs(t, err, ErrAlreadyAssigned)
}

func TestAutoAssign_Overflow(t *testing.T) {
	// Fill both torts workers to capacity. The next torts case overflows to
	// the least-loaded one, flagged, with the hook fired.
	var overflowed atomic.Int32
	hooks := &Hooks{
		OnOverflow: func(_ context.Context, _ Assignment, _ WeightedLoad) error {
			overflowed.Add(1)
			return nil
		},
	}
	eng := newTestEngine(t, nil, WithHooks(hooks))
	ctx := context.Background()

	for i, workerID := range []string{"w-ada", "w-ada", "w-ben", "w-ben"} {
		_, err := eng.Assign(ctx, AssignRequest{
			CaseID: "seed-" + string(rune('a'+i)), WorkerID: workerID, Role: RolePrimary, Actor: paralegal,
		})
		require.NoError(t, err)
	}
	// Nudge w-ada to 2.5: w-ben at 2.0 is now strictly the least loaded.
	_, err := eng.Assign(ctx, AssignRequest{CaseID: "seed-sec", WorkerID: "w-ada", Role: RoleSecondary, Actor: paralegal})
	require.NoError(t, err)

	asgn, err := eng.AutoAssign(ctx, tortsCase("case-over"), paralegal)
	require.NoError(t, err)
	require.True(t, asgn.Overflow)
	require.Equal(t, "w-ben", asgn.WorkerID)

	require.Eventually(t, func() bool {
		return overflowed.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	history := eng.History(ctx, "case-over")
	require.Len(t, history, 1)
	require.Contains(t, history[0].Notes, "overflow")
}

func TestAutoAssign_TieBreakByWorkerID(t *testing.T) {
	// Equal live load and equal baseline: lexicographically smallest worker
	// ID wins.
	eng := newTestEngine(t, nil)

	asgn, err := eng.AutoAssign(context.Background(), tortsCase("case-tie"), paralegal)
	require.NoError(t, err)
	require.Equal(t, "w-ada", asgn.WorkerID)
}

func TestAutoAssign_BaselineLoadTieBreak(t *testing.T) {
	// Same live load; the persisted baseline counter decides.
	cfg := TestConfig()
	roster := []types.Worker{
		{ID: "w-aaa", PracticeAreas: []string{"torts"}, MaxLoad: 5, CurrentLoad: 9, Active: true},
		{ID: "w-zzz", PracticeAreas: []string{"torts"}, MaxLoad: 5, CurrentLoad: 1, Active: true},
	}
	eng, err := NewEngine(&cfg, source.NewStaticRules(nil), source.NewStaticDirectory(roster))
	require.NoError(t, err)

	asgn, err := eng.AutoAssign(context.Background(), tortsCase("case-base"), paralegal)
	require.NoError(t, err)
	require.Equal(t, "w-zzz", asgn.WorkerID)
}

func TestAutoAssign_CustomStrategy(t *testing.T) {
	eng := newTestEngine(t, nil, WithStrategy(strategy.NewRoundRobin()))

	asgn, err := eng.AutoAssign(context.Background(), tortsCase("case-rr"), paralegal)
	require.NoError(t, err)
	require.Contains(t, []string{"w-ada", "w-ben"}, asgn.WorkerID)
}
