package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/legalops/caseload/types"
)

type stubRules []types.AssignmentRule

func (r stubRules) ActiveRules(_ context.Context) ([]types.AssignmentRule, error) {
	return r, nil
}

type failingRules struct{}

func (failingRules) ActiveRules(_ context.Context) ([]types.AssignmentRule, error) {
	return nil, errors.New("feed down")
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

var directory = stubDirectory{
	{ID: "w-family", PracticeAreas: []string{"family"}, Active: true},
	{ID: "w-ip-1", PracticeAreas: []string{"ip"}, Active: true},
	{ID: "w-ip-2", PracticeAreas: []string{"ip", "corporate"}, Active: true},
	{ID: "w-inactive", PracticeAreas: []string{"ip"}, Active: false},
}

func familyCase() types.CaseRef {
	return types.CaseRef{ID: "case-1", PracticeArea: "family", CaseType: "custody", Priority: types.PriorityHigh}
}

func TestResolveCandidates_FirstMatchWins(t *testing.T) {
	e := New(stubRules{
		{ID: "r-broad", Priority: 20, Active: true,
			Match:  types.MatchPredicate{PracticeArea: "family"},
			Target: types.TargetPolicy{Kind: types.TargetWorker, WorkerID: "w-ip-1"}},
		{ID: "r-specific", Priority: 10, Active: true,
			Match:  types.MatchPredicate{PracticeArea: "family", CaseTypes: []string{"custody"}},
			Target: types.TargetPolicy{Kind: types.TargetWorker, WorkerID: "w-family"}},
	}, directory)

	// r-specific has the lower Priority number and matches, so r-broad is
	// never consulted even though it also matches.
	pool, err := e.ResolveCandidates(context.Background(), familyCase())
	require.NoError(t, err)
	require.Equal(t, "r-specific", pool.RuleID)
	require.Len(t, pool.Workers, 1)
	require.Equal(t, "w-family", pool.Workers[0].ID)
}

func TestResolveCandidates_InactiveRuleSkipped(t *testing.T) {
	e := New(stubRules{
		{ID: "r-off", Priority: 1, Active: false,
			Match:  types.MatchPredicate{PracticeArea: "family"},
			Target: types.TargetPolicy{Kind: types.TargetWorker, WorkerID: "w-ip-1"}},
		{ID: "r-on", Priority: 2, Active: true,
			Match:  types.MatchPredicate{PracticeArea: "family"},
			Target: types.TargetPolicy{Kind: types.TargetWorker, WorkerID: "w-family"}},
	}, directory)

	pool, err := e.ResolveCandidates(context.Background(), familyCase())
	require.NoError(t, err)
	require.Equal(t, "r-on", pool.RuleID)
}

func TestResolveCandidates_TeamTarget(t *testing.T) {
	e := New(stubRules{
		{ID: "r-team", Priority: 1, Active: true,
			Match:  types.MatchPredicate{PracticeArea: "ip"},
			Target: types.TargetPolicy{Kind: types.TargetTeam, Team: []string{"w-ip-1", "w-ip-2", "w-inactive", "w-ghost"}}},
	}, directory)

	ref := types.CaseRef{ID: "case-2", PracticeArea: "ip", CaseType: "patent"}
	pool, err := e.ResolveCandidates(context.Background(), ref)
	require.NoError(t, err)
	require.Equal(t, "r-team", pool.RuleID)

	// Inactive and unknown members are dropped, not errors.
	ids := make([]string, 0, len(pool.Workers))
	for _, w := range pool.Workers {
		ids = append(ids, w.ID)
	}
	require.Equal(t, []string{"w-ip-1", "w-ip-2"}, ids)
}

func TestResolveCandidates_PracticeAreaTarget(t *testing.T) {
	e := New(stubRules{
		{ID: "r-area", Priority: 1, Active: true,
			Match:  types.MatchPredicate{MinPriority: types.PriorityHigh},
			Target: types.TargetPolicy{Kind: types.TargetPracticeArea}},
	}, directory)

	ref := types.CaseRef{ID: "case-3", PracticeArea: "ip", Priority: types.PriorityCritical}
	pool, err := e.ResolveCandidates(context.Background(), ref)
	require.NoError(t, err)
	require.Equal(t, "r-area", pool.RuleID)
	require.Len(t, pool.Workers, 2)
}

func TestResolveCandidates_FallbackByPracticeArea(t *testing.T) {
	e := New(stubRules{
		{ID: "r-other", Priority: 1, Active: true,
			Match:  types.MatchPredicate{PracticeArea: "corporate"},
			Target: types.TargetPolicy{Kind: types.TargetWorker, WorkerID: "w-ip-2"}},
	}, directory)

	// No rule matches a family case, so the fallback pool is every active
	// worker covering the practice area, with an empty RuleID.
	pool, err := e.ResolveCandidates(context.Background(), familyCase())
	require.NoError(t, err)
	require.Empty(t, pool.RuleID)
	require.Len(t, pool.Workers, 1)
	require.Equal(t, "w-family", pool.Workers[0].ID)
}

func TestResolveCandidates_MatchedRuleEmptyPoolDoesNotFallThrough(t *testing.T) {
	e := New(stubRules{
		{ID: "r-dead", Priority: 1, Active: true,
			Match:  types.MatchPredicate{PracticeArea: "family"},
			Target: types.TargetPolicy{Kind: types.TargetWorker, WorkerID: "w-inactive"}},
		{ID: "r-alive", Priority: 2, Active: true,
			Match:  types.MatchPredicate{PracticeArea: "family"},
			Target: types.TargetPolicy{Kind: types.TargetWorker, WorkerID: "w-family"}},
	}, directory)

	_, err := e.ResolveCandidates(context.Background(), familyCase())
	require.ErrorIs(t, err, types.ErrNoEligibleWorker)
}

func TestResolveCandidates_NoWorkerAtAll(t *testing.T) {
	e := New(stubRules{}, directory)

	ref := types.CaseRef{ID: "case-4", PracticeArea: "maritime"}
	_, err := e.ResolveCandidates(context.Background(), ref)
	require.ErrorIs(t, err, types.ErrNoEligibleWorker)
}

func TestResolveCandidates_RuleSourceUnavailable(t *testing.T) {
	e := New(failingRules{}, directory)

	_, err := e.ResolveCandidates(context.Background(), familyCase())
	require.ErrorIs(t, err, types.ErrRuleSourceUnavailable)
}

func TestResolveCandidates_UnknownTargetKind(t *testing.T) {
	e := New(stubRules{
		{ID: "r-bad", Priority: 1, Active: true,
			Match:  types.MatchPredicate{PracticeArea: "family"},
			Target: types.TargetPolicy{Kind: "REGION"}},
	}, directory)

	_, err := e.ResolveCandidates(context.Background(), familyCase())
	require.ErrorIs(t, err, types.ErrInvalidConfig)
}
