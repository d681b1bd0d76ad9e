package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/legalops/caseload/types"
)

func testConfig() Config {
	return Config{
		Weights:     types.DefaultRoleWeights(),
		LockTimeout: 200 * time.Millisecond,
		LockRetries: 1,
	}
}

var actor = types.Actor{ID: "u-1", Display: "Test User"}

func TestAssign_Primary(t *testing.T) {
	s := New(testConfig())

	asgn, err := s.Assign(context.Background(), AssignParams{
		CaseID:   "case-1",
		WorkerID: "w-1",
		Role:     types.RolePrimary,
		Actor:    actor,
	})
	require.NoError(t, err)
	require.NotEmpty(t, asgn.ID)
	require.Equal(t, types.StatusActive, asgn.Status)
	require.Equal(t, types.RolePrimary, asgn.Role)
	require.False(t, asgn.AssignedAt.IsZero())

	load := s.LoadOf("w-1")
	require.Equal(t, 1, load.ActiveCount)
	require.InDelta(t, 1.0, load.WeightedLoad, 1e-9)

	history := s.History("case-1")
	require.Len(t, history, 1)
	require.Equal(t, types.EventAssigned, history[0].Event)
	require.Equal(t, actor, history[0].Actor)
}

func TestAssign_SecondPrimaryFails(t *testing.T) {
	s := New(testConfig())
	ctx := context.Background()

	_, err := s.Assign(ctx, AssignParams{CaseID: "case-1", WorkerID: "w-1", Role: types.RolePrimary, Actor: actor})
	require.NoError(t, err)

	// Second primary must fail and must not touch the load counter.
	_, err = s.Assign(ctx, AssignParams{CaseID: "case-1", WorkerID: "w-2", Role: types.RolePrimary, Actor: actor})
	require.ErrorIs(t, err, types.ErrAlreadyAssigned)

	require.Equal(t, 0, s.LoadOf("w-2").ActiveCount)
	require.Equal(t, 1, s.LoadOf("w-1").ActiveCount)
	require.Len(t, s.ActiveForCase("case-1"), 1)
}

func TestAssign_SecondaryRoles(t *testing.T) {
	s := New(testConfig())
	ctx := context.Background()

	_, err := s.Assign(ctx, AssignParams{CaseID: "case-1", WorkerID: "w-1", Role: types.RolePrimary, Actor: actor})
	require.NoError(t, err)

	// Multiple secondary/supporting assignments by different workers are allowed.
	_, err = s.Assign(ctx, AssignParams{CaseID: "case-1", WorkerID: "w-2", Role: types.RoleSecondary, Actor: actor})
	require.NoError(t, err)
	_, err = s.Assign(ctx, AssignParams{CaseID: "case-1", WorkerID: "w-3", Role: types.RoleSecondary, Actor: actor})
	require.NoError(t, err)
	_, err = s.Assign(ctx, AssignParams{CaseID: "case-1", WorkerID: "w-4", Role: types.RoleSupporting, Actor: actor})
	require.NoError(t, err)

	require.Len(t, s.ActiveForCase("case-1"), 4)
	require.InDelta(t, 0.5, s.LoadOf("w-2").WeightedLoad, 1e-9)
	require.InDelta(t, 0.0, s.LoadOf("w-4").WeightedLoad, 1e-9)

	// Same worker cannot stack roles on one case.
	_, err = s.Assign(ctx, AssignParams{CaseID: "case-1", WorkerID: "w-2", Role: types.RoleSupporting, Actor: actor})
	require.ErrorIs(t, err, types.ErrDuplicateAssignment)
}

func TestAssign_InvalidRole(t *testing.T) {
	s := New(testConfig())

	_, err := s.Assign(context.Background(), AssignParams{CaseID: "c", WorkerID: "w", Role: "OWNER", Actor: actor})
	require.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestUnassign(t *testing.T) {
	s := New(testConfig())
	ctx := context.Background()

	_, err := s.Assign(ctx, AssignParams{CaseID: "case-1", WorkerID: "w-1", Role: types.RolePrimary, Actor: actor})
	require.NoError(t, err)

	removed, err := s.Unassign(ctx, UnassignParams{CaseID: "case-1", WorkerID: "w-1", Reason: "client request", Actor: actor})
	require.NoError(t, err)
	require.Equal(t, types.StatusRemoved, removed.Status)
	require.NotNil(t, removed.UnassignedAt)
	require.Equal(t, "client request", removed.Reason)

	require.Equal(t, 0, s.LoadOf("w-1").ActiveCount)
	require.InDelta(t, 0.0, s.LoadOf("w-1").WeightedLoad, 1e-9)
	require.Empty(t, s.ActiveForCase("case-1"))

	// Case is assignable again after unassignment.
	_, err = s.Assign(ctx, AssignParams{CaseID: "case-1", WorkerID: "w-2", Role: types.RolePrimary, Actor: actor})
	require.NoError(t, err)
}

func TestUnassign_NotAssigned(t *testing.T) {
	s := New(testConfig())

	_, err := s.Unassign(context.Background(), UnassignParams{CaseID: "case-1", WorkerID: "w-1", Actor: actor})
	require.ErrorIs(t, err, types.ErrNotAssigned)
}

func TestTransferPrimary(t *testing.T) {
	s := New(testConfig())
	ctx := context.Background()

	_, err := s.Assign(ctx, AssignParams{CaseID: "case-1", WorkerID: "w-1", Role: types.RolePrimary, Actor: actor})
	require.NoError(t, err)

	approver := types.Actor{ID: "mgr-1"}
	newPrimary, err := s.TransferPrimary(ctx, TransferParams{
		CaseID:       "case-1",
		FromWorkerID: "w-1",
		ToWorkerID:   "w-2",
		Actor:        approver,
		Notes:        "workload rebalance",
	})
	require.NoError(t, err)
	require.Equal(t, "w-2", newPrimary.WorkerID)
	require.Equal(t, types.RolePrimary, newPrimary.Role)

	// Old owner's load decremented, new owner's incremented.
	require.Equal(t, 0, s.LoadOf("w-1").ActiveCount)
	require.Equal(t, 1, s.LoadOf("w-2").ActiveCount)

	active := s.ActiveForCase("case-1")
	require.Len(t, active, 1)
	require.Equal(t, "w-2", active[0].WorkerID)

	history := s.History("case-1")
	last := history[len(history)-1]
	require.Equal(t, types.EventTransferApproved, last.Event)
	require.Equal(t, "w-1", last.FromWorkerID)
	require.Equal(t, "w-2", last.WorkerID)
}

func TestTransferPrimary_Stale(t *testing.T) {
	s := New(testConfig())
	ctx := context.Background()

	_, err := s.Assign(ctx, AssignParams{CaseID: "case-1", WorkerID: "w-1", Role: types.RolePrimary, Actor: actor})
	require.NoError(t, err)

	// Source does not hold the primary.
	_, err = s.TransferPrimary(ctx, TransferParams{CaseID: "case-1", FromWorkerID: "w-9", ToWorkerID: "w-2", Actor: actor})
	require.ErrorIs(t, err, types.ErrStaleTransfer)

	// Nothing changed.
	require.Equal(t, 1, s.LoadOf("w-1").ActiveCount)
	require.Equal(t, 0, s.LoadOf("w-2").ActiveCount)
	require.Len(t, s.ActiveForCase("case-1"), 1)
}

func TestTransferPrimary_PromotesSecondary(t *testing.T) {
	s := New(testConfig())
	ctx := context.Background()

	_, err := s.Assign(ctx, AssignParams{CaseID: "case-1", WorkerID: "w-1", Role: types.RolePrimary, Actor: actor})
	require.NoError(t, err)
	_, err = s.Assign(ctx, AssignParams{CaseID: "case-1", WorkerID: "w-2", Role: types.RoleSecondary, Actor: actor})
	require.NoError(t, err)

	_, err = s.TransferPrimary(ctx, TransferParams{CaseID: "case-1", FromWorkerID: "w-1", ToWorkerID: "w-2", Actor: actor})
	require.NoError(t, err)

	// The promoted worker holds exactly one active assignment (PRIMARY),
	// and its load reflects the role change: 0.5 -> 1.0.
	active := s.ActiveForWorker("w-2")
	require.Len(t, active, 1)
	require.Equal(t, types.RolePrimary, active[0].Role)
	require.InDelta(t, 1.0, s.LoadOf("w-2").WeightedLoad, 1e-9)
}

func TestActivePrimary_CorruptState(t *testing.T) {
	s := New(testConfig())
	ctx := context.Background()

	_, err := s.Assign(ctx, AssignParams{CaseID: "case-1", WorkerID: "w-1", Role: types.RolePrimary, Actor: actor})
	require.NoError(t, err)

	// Forge a second active primary row behind the store's back to simulate
	// a broken serialization guarantee.
	s.mu.Lock()
	forged := &types.Assignment{
		ID: "forged", CaseID: "case-1", WorkerID: "w-2",
		Role: types.RolePrimary, Status: types.StatusActive,
	}
	s.byCase["case-1"] = append(s.byCase["case-1"], forged)
	s.mu.Unlock()

	_, _, err = s.ActivePrimary("case-1")
	require.ErrorIs(t, err, types.ErrCorruptState)

	// Mutations on the corrupted case must halt loudly too.
	_, err = s.Assign(ctx, AssignParams{CaseID: "case-1", WorkerID: "w-3", Role: types.RolePrimary, Actor: actor})
	require.ErrorIs(t, err, types.ErrCorruptState)
}

func TestAcquireCase_Timeout(t *testing.T) {
	cfg := testConfig()
	cfg.LockTimeout = 20 * time.Millisecond
	cfg.LockRetries = 2
	s := New(cfg)

	release, err := s.acquireCase(context.Background(), "case-1")
	require.NoError(t, err)

	// A second acquisition times out after bounded retries.
	start := time.Now()
	_, err = s.acquireCase(context.Background(), "case-1")
	require.ErrorIs(t, err, types.ErrOperationTimedOut)
	require.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)

	release()

	// Lock is usable again after release.
	release2, err := s.acquireCase(context.Background(), "case-1")
	require.NoError(t, err)
	release2()
}

func TestAcquireCase_ContextCancelled(t *testing.T) {
	s := New(testConfig())

	release, err := s.acquireCase(context.Background(), "case-1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = s.acquireCase(ctx, "case-1")
	require.ErrorIs(t, err, types.ErrOperationTimedOut)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

type failingSink struct{ calls int }

func (f *failingSink) Append(_ context.Context, _ types.HistoryEntry) error {
	f.calls++
	return context.DeadlineExceeded
}

func TestSinkFailure_DoesNotFailOperation(t *testing.T) {
	s := New(testConfig())
	sink := &failingSink{}
	s.SetSink(sink)

	_, err := s.Assign(context.Background(), AssignParams{
		CaseID: "case-1", WorkerID: "w-1", Role: types.RolePrimary, Actor: actor,
	})
	require.NoError(t, err)
	require.Equal(t, 1, sink.calls)

	// The store's own log still has the entry.
	require.Len(t, s.History("case-1"), 1)
}

func TestLoadSnapshot_Consistency(t *testing.T) {
	s := New(testConfig())
	ctx := context.Background()

	for _, tc := range []struct {
		caseID, workerID string
		role             types.Role
	}{
		{"case-1", "w-1", types.RolePrimary},
		{"case-2", "w-1", types.RoleSecondary},
		{"case-3", "w-2", types.RolePrimary},
	} {
		_, err := s.Assign(ctx, AssignParams{CaseID: tc.caseID, WorkerID: tc.workerID, Role: tc.role, Actor: actor})
		require.NoError(t, err)
	}

	snap := s.LoadSnapshot()
	require.InDelta(t, 1.5, snap["w-1"].WeightedLoad, 1e-9)
	require.Equal(t, 2, snap["w-1"].ActiveCount)
	require.InDelta(t, 1.0, snap["w-2"].WeightedLoad, 1e-9)
}

func TestCustomWeights(t *testing.T) {
	cfg := testConfig()
	cfg.Weights = types.RoleWeights{Primary: 1.0, Secondary: 0.25, Supporting: 0.1}
	s := New(cfg)
	ctx := context.Background()

	_, err := s.Assign(ctx, AssignParams{CaseID: "case-1", WorkerID: "w-1", Role: types.RoleSupporting, Actor: actor})
	require.NoError(t, err)
	_, err = s.Assign(ctx, AssignParams{CaseID: "case-2", WorkerID: "w-1", Role: types.RoleSecondary, Actor: actor})
	require.NoError(t, err)

	require.InDelta(t, 0.35, s.LoadOf("w-1").WeightedLoad, 1e-9)
}
