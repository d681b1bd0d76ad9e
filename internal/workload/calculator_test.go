package workload

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/legalops/caseload/types"
)

type stubLoads map[string]types.WeightedLoad

func (s stubLoads) LoadOf(workerID string) types.WeightedLoad {
	wl := s[workerID]
	wl.WorkerID = workerID
	return wl
}

func (s stubLoads) LoadSnapshot() map[string]types.WeightedLoad {
	out := make(map[string]types.WeightedLoad, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

type stubDirectory []types.Worker

func (d stubDirectory) Worker(_ context.Context, id string) (types.Worker, error) {
	for _, w := range d {
		if w.ID == id {
			return w, nil
		}
	}
	return types.Worker{}, types.ErrWorkerNotFound
}

func (d stubDirectory) ListWorkers(_ context.Context) ([]types.Worker, error) {
	return d, nil
}

func TestWorkloadOf(t *testing.T) {
	calc := New(
		stubLoads{"w-1": {ActiveCount: 3, WeightedLoad: 2.5}},
		stubDirectory{{ID: "w-1", MaxLoad: 5, Active: true}},
	)

	wl, err := calc.WorkloadOf(context.Background(), "w-1")
	require.NoError(t, err)
	require.Equal(t, "w-1", wl.WorkerID)
	require.Equal(t, 3, wl.ActiveCount)
	require.InDelta(t, 2.5, wl.WeightedLoad, 1e-9)
	require.InDelta(t, 2.5, wl.CapacityRemaining, 1e-9)
}

func TestWorkloadOf_UnknownWorker(t *testing.T) {
	calc := New(stubLoads{}, stubDirectory{})

	_, err := calc.WorkloadOf(context.Background(), "ghost")
	require.ErrorIs(t, err, types.ErrWorkerNotFound)
}

func TestWorkloadOf_OverCapacityGoesNegative(t *testing.T) {
	calc := New(
		stubLoads{"w-1": {ActiveCount: 7, WeightedLoad: 7}},
		stubDirectory{{ID: "w-1", MaxLoad: 5}},
	)

	wl, err := calc.WorkloadOf(context.Background(), "w-1")
	require.NoError(t, err)
	require.InDelta(t, -2.0, wl.CapacityRemaining, 1e-9)
}

func TestTeamWorkload_SortedAndComplete(t *testing.T) {
	calc := New(
		stubLoads{
			"w-busy":  {ActiveCount: 4, WeightedLoad: 3.5},
			"w-light": {ActiveCount: 1, WeightedLoad: 0.5},
		},
		stubDirectory{
			{ID: "w-busy", MaxLoad: 5},
			{ID: "w-idle", MaxLoad: 5},
			{ID: "w-light", MaxLoad: 5},
		},
	)

	team, err := calc.TeamWorkload(context.Background())
	require.NoError(t, err)
	require.Len(t, team, 3)

	// Ascending weighted load; the worker with no assignments shows zero.
	require.Equal(t, "w-idle", team[0].WorkerID)
	require.Zero(t, team[0].WeightedLoad)
	require.InDelta(t, 5.0, team[0].CapacityRemaining, 1e-9)
	require.Equal(t, "w-light", team[1].WorkerID)
	require.Equal(t, "w-busy", team[2].WorkerID)
}

func TestTeamWorkload_TieBreakByID(t *testing.T) {
	calc := New(
		stubLoads{
			"w-b": {ActiveCount: 1, WeightedLoad: 1},
			"w-a": {ActiveCount: 1, WeightedLoad: 1},
		},
		stubDirectory{{ID: "w-b"}, {ID: "w-a"}},
	)

	team, err := calc.TeamWorkload(context.Background())
	require.NoError(t, err)
	require.Equal(t, "w-a", team[0].WorkerID)
	require.Equal(t, "w-b", team[1].WorkerID)
}

func TestIsOverloaded(t *testing.T) {
	calc := New(stubLoads{
		"w-full":  {ActiveCount: 5, WeightedLoad: 5},
		"w-free":  {ActiveCount: 2, WeightedLoad: 2},
		"w-nocap": {ActiveCount: 100, WeightedLoad: 100},
	}, nil)

	require.True(t, calc.IsOverloaded(types.Worker{ID: "w-full", MaxLoad: 5}))
	require.False(t, calc.IsOverloaded(types.Worker{ID: "w-free", MaxLoad: 5}))
	require.False(t, calc.IsOverloaded(types.Worker{ID: "w-nocap", MaxLoad: 0}))
}
