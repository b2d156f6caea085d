package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qbSwapRoster() []RosterPlayer {
	return []RosterPlayer{
		{ID: "qb1", Name: "Cousins", Position: PositionQB, Team: "ATL", IsStarter: true, CurrentSlot: "QB"},
		{ID: "qb2", Name: "Daniels", Position: PositionQB, Team: "WAS", IsStarter: false, CurrentSlot: "BN"},
	}
}

func runQBSwap(t *testing.T, thresholdPct float64) (DiffSummary, LineupAssignment) {
	t.Helper()
	roster := qbSwapRoster()
	proj := map[string]float64{"qb1": 20.0, "qb2": 25.0}
	reqs := SlotRequirements{SlotQB: 1}

	current := BuildCurrentAssignment(roster)
	optimal := AssignSlots(roster, nil, proj, reqs, testLog())
	return GenerateChanges(current, optimal, proj, nil, thresholdPct, testLog()), optimal
}

func TestGenerateChanges_BenchWeakerStarter(t *testing.T) {
	summary, optimal := runQBSwap(t, 10.0)

	require.Len(t, optimal[SlotQB], 1)
	assert.Equal(t, "qb2", optimal[SlotQB][0].ID)

	require.Len(t, summary.Changes, 1)
	change := summary.Changes[0]
	require.NotNil(t, change.Out)
	assert.Equal(t, "qb1", change.Out.ID)
	assert.Equal(t, "qb2", change.In.ID)
	assert.Equal(t, 5.0, change.Improvement)
	assert.Equal(t, 25.0, change.ImprovementPct)
	assert.Equal(t, SlotQB, change.TargetSlot)

	require.Len(t, change.Chain.Steps, 2)
	assert.Equal(t, "Lower projection", change.Chain.Steps[0].Reason)
	assert.Equal(t, SlotBench, change.Chain.Steps[0].ToSlot)
	assert.Equal(t, "Higher projection", change.Chain.Steps[1].Reason)
	assert.Equal(t, SlotQB, change.Chain.Steps[1].ToSlot)

	assert.Equal(t, 5.0, summary.TheoreticalImprovement)
	assert.Equal(t, 5.0, summary.ActionableImprovement)
}

func TestGenerateChanges_ThresholdFiltersSwap(t *testing.T) {
	// Same swap, but 25% improvement does not clear a 30% threshold. The
	// optimal lineup still resolves internally; only the recommendation is
	// suppressed, so the two aggregates diverge.
	summary, optimal := runQBSwap(t, 30.0)

	require.Len(t, optimal[SlotQB], 1)
	assert.Equal(t, "qb2", optimal[SlotQB][0].ID)

	assert.Empty(t, summary.Changes)
	assert.Equal(t, 5.0, summary.TheoreticalImprovement)
	assert.Equal(t, 0.0, summary.ActionableImprovement)
}

func TestGenerateChanges_LockedStarterNeverSwapped(t *testing.T) {
	// Starter's game is FINAL with 2 points; bench player projects 20.
	// No recommendation despite the gap.
	final := 2.0
	roster := []RosterPlayer{
		{ID: "wrA", Name: "Ridley", Position: PositionWR, Team: "TEN", IsStarter: true, CurrentSlot: "WR1", CurrentPoints: &final},
		{ID: "wrB", Name: "Olave", Position: PositionWR, Team: "NO", IsStarter: false, CurrentSlot: "BN"},
	}
	proj := map[string]float64{"wrA": 2.0, "wrB": 20.0}
	locked := map[string]bool{"wrA": true}
	reqs := SlotRequirements{SlotWR: 1}

	current := BuildCurrentAssignment(roster)
	optimal := AssignSlots(roster, locked, proj, reqs, testLog())
	summary := GenerateChanges(current, optimal, proj, locked, 10.0, testLog())

	slot, ok := optimal.SlotOf("wrA")
	require.True(t, ok)
	assert.Equal(t, SlotWR, slot)
	assert.Empty(t, summary.Changes)
	assert.Equal(t, 0.0, summary.TheoreticalImprovement)
}

func TestGenerateChanges_EmptySlotFill(t *testing.T) {
	// Nobody currently starts at TE; the incoming player displaces no one,
	// outgoing projection is zero, and the chain is a single start-in.
	roster := []RosterPlayer{
		{ID: "te9", Name: "Kincaid", Position: PositionTE, Team: "BUF", IsStarter: false, CurrentSlot: "BN"},
	}
	proj := map[string]float64{"te9": 10.0}
	reqs := SlotRequirements{SlotTE: 1}

	current := BuildCurrentAssignment(roster)
	optimal := AssignSlots(roster, nil, proj, reqs, testLog())
	summary := GenerateChanges(current, optimal, proj, nil, 0.0, testLog())

	require.Len(t, summary.Changes, 1)
	change := summary.Changes[0]
	assert.Nil(t, change.Out)
	assert.Equal(t, 0.0, change.OutProjection)
	assert.Equal(t, 10.0, change.Improvement)
	assert.Equal(t, 0.0, change.ImprovementPct)
	require.Len(t, change.Chain.Steps, 1)
	assert.Equal(t, "Higher projection", change.Chain.Steps[0].Reason)
}

func TestGenerateChanges_ByeBenchOutReason(t *testing.T) {
	roster := []RosterPlayer{
		{ID: "rbBye", Name: "Walker", Position: PositionRB, Team: "SEA", IsStarter: true, CurrentSlot: "RB1"},
		{ID: "rbIn", Name: "Jacobs", Position: PositionRB, Team: "GB", IsStarter: false, CurrentSlot: "BN"},
	}
	// rbBye resolved to zero by the bye override upstream.
	proj := map[string]float64{"rbBye": 0.0, "rbIn": 14.0}
	reqs := SlotRequirements{SlotRB: 1}

	current := BuildCurrentAssignment(roster)
	optimal := AssignSlots(roster, nil, proj, reqs, testLog())
	summary := GenerateChanges(current, optimal, proj, nil, 0.0, testLog())

	require.Len(t, summary.Changes, 1)
	chain := summary.Changes[0].Chain
	require.Len(t, chain.Steps, 2)
	assert.Equal(t, "Player on BYE", chain.Steps[0].Reason)
}

func TestGenerateChanges_SortedByImprovementDescending(t *testing.T) {
	roster := []RosterPlayer{
		{ID: "rbOut", Name: "Conner", Position: PositionRB, Team: "ARI", IsStarter: true, CurrentSlot: "RB1"},
		{ID: "wrOut", Name: "Sutton", Position: PositionWR, Team: "DEN", IsStarter: true, CurrentSlot: "WR1"},
		{ID: "rbIn", Name: "Robinson", Position: PositionRB, Team: "WAS", IsStarter: false, CurrentSlot: "BN"},
		{ID: "wrIn", Name: "Wilson", Position: PositionWR, Team: "NYJ", IsStarter: false, CurrentSlot: "BN"},
	}
	proj := map[string]float64{"rbOut": 8.0, "wrOut": 10.0, "rbIn": 20.0, "wrIn": 13.0}
	reqs := SlotRequirements{SlotRB: 1, SlotWR: 1}

	current := BuildCurrentAssignment(roster)
	optimal := AssignSlots(roster, nil, proj, reqs, testLog())
	summary := GenerateChanges(current, optimal, proj, nil, 0.0, testLog())

	require.Len(t, summary.Changes, 2)
	assert.Equal(t, "rbIn", summary.Changes[0].In.ID, "largest improvement first")
	assert.Equal(t, "wrIn", summary.Changes[1].In.ID)
	assert.Equal(t, 15.0, summary.ActionableImprovement)
	assert.Equal(t, 15.0, summary.TheoreticalImprovement)
}

func TestGenerateChanges_AllReturnedChangesClearThreshold(t *testing.T) {
	summary, _ := runQBSwap(t, 20.0)
	for _, change := range summary.Changes {
		assert.GreaterOrEqual(t, change.ImprovementPct, 20.0)
	}
	require.Len(t, summary.Changes, 1)
}
