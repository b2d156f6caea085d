package optimizer

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProjections struct {
	records map[string]ProjectionRecord
	err     error
}

func (s stubProjections) WeekProjections(_ context.Context, _, _ int) (map[string]ProjectionRecord, error) {
	return s.records, s.err
}

type stubGameStatus struct {
	status map[string]GameStatus
	err    error
}

func (s stubGameStatus) WeekGameStatus(_ context.Context, _, _ int) (map[string]GameStatus, error) {
	return s.status, s.err
}

type stubLeagueConfig struct {
	labels []string
	err    error
}

func (s stubLeagueConfig) RosterSlotLabels(_ context.Context, _ string) ([]string, error) {
	return s.labels, s.err
}

type stubAvailable struct {
	pools map[Position][]AvailablePlayer
}

func (s stubAvailable) TopAvailable(_ context.Context, _ string, pos Position, _, _, _ int, _ ScoringFormat) ([]AvailablePlayer, error) {
	return s.pools[pos], nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestEngine(proj stubProjections, status stubGameStatus, league LeagueConfigProvider, avail AvailablePlayerProvider) *Engine {
	return NewEngine(proj, status, league, avail, 3.0, quietLogger())
}

func TestOptimizeLineup_EmptyRosterFailsWithNoTeamData(t *testing.T) {
	engine := newTestEngine(stubProjections{}, stubGameStatus{}, nil, nil)

	_, err := engine.OptimizeLineup(context.Background(), OptimizeRequest{
		Week: 5, Year: 2025, Format: FormatPPR,
	})

	assert.ErrorIs(t, err, ErrNoTeamData)
}

func TestOptimizeLineup_NoProjectionsForWeek(t *testing.T) {
	engine := newTestEngine(
		stubProjections{records: map[string]ProjectionRecord{}},
		stubGameStatus{status: map[string]GameStatus{}},
		nil, nil,
	)

	_, err := engine.OptimizeLineup(context.Background(), OptimizeRequest{
		Roster: qbSwapRoster(),
		Week:   5, Year: 2025, Format: FormatPPR,
	})

	assert.ErrorIs(t, err, ErrNoProjections,
		"a projection-less week must fail loudly, never emit an all-bench lineup")
}

func TestOptimizeLineup_UpstreamFetchFailurePropagates(t *testing.T) {
	boom := errors.New("upstream unavailable")
	engine := newTestEngine(
		stubProjections{err: boom},
		stubGameStatus{status: map[string]GameStatus{}},
		nil, nil,
	)

	_, err := engine.OptimizeLineup(context.Background(), OptimizeRequest{
		Roster: qbSwapRoster(),
		Week:   5, Year: 2025, Format: FormatPPR,
	})

	assert.ErrorIs(t, err, boom, "external fetch failures propagate unchanged")
}

func TestOptimizeLineup_RecommendsBenchStartSwap(t *testing.T) {
	roster := []RosterPlayer{
		{ID: "qb1", Name: "Cousins", Position: PositionQB, Team: "ATL", IsStarter: true, CurrentSlot: "QB", ProjectionKey: "p1"},
		{ID: "qb2", Name: "Daniels", Position: PositionQB, Team: "WAS", IsStarter: false, CurrentSlot: "BN", ProjectionKey: "p2"},
	}
	engine := newTestEngine(
		stubProjections{records: map[string]ProjectionRecord{
			"p1": {PPR: 20.0},
			"p2": {PPR: 25.0},
		}},
		stubGameStatus{status: map[string]GameStatus{}},
		stubLeagueConfig{labels: []string{"QB", "BN"}},
		nil,
	)

	result, err := engine.OptimizeLineup(context.Background(), OptimizeRequest{
		LeagueID: "league-1",
		Roster:   roster,
		Week:     5, Year: 2025, Format: FormatPPR,
		MinImprovementPct: 10.0,
	})

	require.NoError(t, err)
	require.Len(t, result.Changes, 1)
	assert.Equal(t, "qb2", result.Changes[0].In.ID)
	assert.Equal(t, 5.0, result.Changes[0].Improvement)
	assert.Equal(t, 25.0, result.Changes[0].ImprovementPct)
	assert.Equal(t, 25.0, result.ProjectedPoints)
	assert.Equal(t, 20.0, result.CurrentPoints)
	assert.Equal(t, 5.0, result.Improvement)
	assert.Equal(t, 5.0, result.ActionableImprovement)
	require.Len(t, result.MoveChains, 1)
	assert.Equal(t, "qb2", result.MoveChains[0].StartedPlayerID)
	require.Len(t, result.BenchedPlayers, 1)
	assert.Equal(t, "qb1", result.BenchedPlayers[0].ID)
}

func TestOptimizeLineup_ByeWeekPlayerNeverPreferred(t *testing.T) {
	// Bench RB on bye has a stored projection of 15; active starter
	// projects 8 and must keep the slot.
	roster := []RosterPlayer{
		{ID: "rbStart", Name: "Pollard", Position: PositionRB, Team: "TEN", IsStarter: true, CurrentSlot: "RB1", ProjectionKey: "p1"},
		{ID: "rbBye", Name: "Hall", Position: PositionRB, Team: "NYJ", IsStarter: false, CurrentSlot: "BN", ProjectionKey: "p2"},
	}
	engine := newTestEngine(
		stubProjections{records: map[string]ProjectionRecord{
			"p1": {PPR: 8.0},
			"p2": {PPR: 15.0},
		}},
		stubGameStatus{status: map[string]GameStatus{
			"NYJ": {Team: "NYJ", OnBye: true},
		}},
		stubLeagueConfig{labels: []string{"RB", "BN"}},
		nil,
	)

	result, err := engine.OptimizeLineup(context.Background(), OptimizeRequest{
		LeagueID: "league-1",
		Roster:   roster,
		Week:     12, Year: 2025, Format: FormatPPR,
	})

	require.NoError(t, err)
	require.Len(t, result.OptimalLineup[SlotRB], 1)
	assert.Equal(t, "rbStart", result.OptimalLineup[SlotRB][0].ID)
	assert.Empty(t, result.Changes)
}

func TestOptimizeLineup_AllLockedEqualsCurrentLineup(t *testing.T) {
	roster := fullRoster()
	status := map[string]GameStatus{}
	for _, p := range roster {
		status[p.Team] = GameStatus{Team: p.Team, Concluded: true}
	}
	records := map[string]ProjectionRecord{}
	for i, p := range roster {
		roster[i].ProjectionKey = "k" + p.ID
		records["k"+p.ID] = ProjectionRecord{PPR: fullProjections()[p.ID]}
	}
	engine := newTestEngine(
		stubProjections{records: records},
		stubGameStatus{status: status},
		nil, nil,
	)

	result, err := engine.OptimizeLineup(context.Background(), OptimizeRequest{
		Roster: roster,
		Week:   5, Year: 2025, Format: FormatPPR,
	})

	require.NoError(t, err)
	assert.Empty(t, result.Changes, "zero unlocked players means zero recommendations")
	assert.Equal(t, BuildCurrentAssignment(roster), result.OptimalLineup,
		"with everyone locked the optimal lineup is the current lineup")
}

func TestOptimizeLineup_Idempotent(t *testing.T) {
	roster := fullRoster()
	records := map[string]ProjectionRecord{}
	for i, p := range roster {
		roster[i].ProjectionKey = "k" + p.ID
		records["k"+p.ID] = ProjectionRecord{PPR: fullProjections()[p.ID]}
	}
	engine := newTestEngine(
		stubProjections{records: records},
		stubGameStatus{status: map[string]GameStatus{}},
		nil, nil,
	)
	req := OptimizeRequest{
		Roster: roster,
		Week:   5, Year: 2025, Format: FormatPPR,
		MinImprovementPct: 10.0,
	}

	first, err := engine.OptimizeLineup(context.Background(), req)
	require.NoError(t, err)
	second, err := engine.OptimizeLineup(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.OptimalLineup, second.OptimalLineup)
	assert.Equal(t, first.Changes, second.Changes)
	assert.Equal(t, first.Improvement, second.Improvement)
}

func TestOptimizeLineup_LeagueConfigFetchFailureFallsBack(t *testing.T) {
	roster := qbSwapRoster()
	engine := newTestEngine(
		stubProjections{records: map[string]ProjectionRecord{}},
		stubGameStatus{status: map[string]GameStatus{}},
		stubLeagueConfig{err: errors.New("league service down")},
		nil,
	)
	// Give the roster resolvable projections so the call reaches
	// requirement derivation.
	engine.projections = stubProjections{records: map[string]ProjectionRecord{"p1": {PPR: 20}, "p2": {PPR: 25}}}
	roster[0].ProjectionKey = "p1"
	roster[1].ProjectionKey = "p2"

	result, err := engine.OptimizeLineup(context.Background(), OptimizeRequest{
		LeagueID: "league-1",
		Roster:   roster,
		Week:     5, Year: 2025, Format: FormatPPR,
	})

	require.NoError(t, err, "requirement derivation never hard-fails")
	require.Len(t, result.OptimalLineup[SlotQB], 1, "inferred from the current starter")
	assert.Equal(t, "qb2", result.OptimalLineup[SlotQB][0].ID)
}
