package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchPredicate_Matches(t *testing.T) {
	ref := CaseRef{
		ID:           "case-1",
		PracticeArea: "family",
		CaseType:     "divorce",
		Priority:     PriorityHigh,
	}

	tests := []struct {
		name      string
		predicate MatchPredicate
		want      bool
	}{
		{
			name:      "empty predicate matches everything",
			predicate: MatchPredicate{},
			want:      true,
		},
		{
			name:      "practice area equality",
			predicate: MatchPredicate{PracticeArea: "family"},
			want:      true,
		},
		{
			name:      "practice area mismatch",
			predicate: MatchPredicate{PracticeArea: "torts"},
			want:      false,
		},
		{
			name:      "case type membership",
			predicate: MatchPredicate{CaseTypes: []string{"custody", "divorce"}},
			want:      true,
		},
		{
			name:      "case type not in set",
			predicate: MatchPredicate{CaseTypes: []string{"custody"}},
			want:      false,
		},
		{
			name:      "priority at threshold",
			predicate: MatchPredicate{MinPriority: PriorityHigh},
			want:      true,
		},
		{
			name:      "priority below threshold",
			predicate: MatchPredicate{MinPriority: PriorityCritical},
			want:      false,
		},
		{
			name: "all conditions combined",
			predicate: MatchPredicate{
				PracticeArea: "family",
				CaseTypes:    []string{"divorce"},
				MinPriority:  PriorityMedium,
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.predicate.Matches(ref))
		})
	}
}

func TestRoleWeights_Weight(t *testing.T) {
	rw := DefaultRoleWeights()

	require.InDelta(t, 1.0, rw.Weight(RolePrimary), 1e-9)
	require.InDelta(t, 0.5, rw.Weight(RoleSecondary), 1e-9)
	require.InDelta(t, 0.0, rw.Weight(RoleSupporting), 1e-9)
	require.InDelta(t, 0.0, rw.Weight(Role("BOGUS")), 1e-9)
}

func TestTransferStatus_Terminal(t *testing.T) {
	require.False(t, TransferPending.Terminal())
	require.True(t, TransferApproved.Terminal())
	require.True(t, TransferRejected.Terminal())
}

func TestWorker_HandlesPracticeArea(t *testing.T) {
	w := Worker{ID: "w1", PracticeAreas: []string{"family", "torts"}}

	require.True(t, w.HandlesPracticeArea("torts"))
	require.False(t, w.HandlesPracticeArea("tax"))
}

func TestWorker_AtCapacity(t *testing.T) {
	tests := []struct {
		name string
		w    Worker
		load float64
		want bool
	}{
		{"below ceiling", Worker{MaxLoad: 2}, 1.5, false},
		{"at ceiling", Worker{MaxLoad: 2}, 2.0, true},
		{"over ceiling", Worker{MaxLoad: 2}, 2.5, true},
		{"zero means no ceiling", Worker{MaxLoad: 0}, 100, false},
		{"negative means no ceiling", Worker{MaxLoad: -1}, 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.w.AtCapacity(tt.load))
		})
	}
}
