package optimizer

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testLog() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func TestDeriveRequirements_LeagueConfigIsAuthoritative(t *testing.T) {
	// Current starters suggest a totally different shape; the league
	// config must win without any inference.
	roster := []RosterPlayer{
		{ID: "1", Position: PositionQB, IsStarter: true, CurrentSlot: "QB"},
		{ID: "2", Position: PositionQB, IsStarter: true, CurrentSlot: "SUPER_FLEX"},
	}
	leagueSlots := []string{"QB", "RB", "RB", "WR", "WR", "TE", "FLEX", "K", "DEF", "BN", "BN", "IR"}

	reqs := DeriveRequirements(leagueSlots, roster, testLog())

	assert.Equal(t, SlotRequirements{
		SlotQB:   1,
		SlotRB:   2,
		SlotWR:   2,
		SlotTE:   1,
		SlotFlex: 1,
		SlotK:    1,
		SlotDEF:  1,
	}, reqs)
	assert.NotContains(t, reqs, SlotBench, "bench is an unlimited sink, never a counted requirement")
	assert.NotContains(t, reqs, SlotSuperFlex)
}

func TestDeriveRequirements_InferredFromStarters(t *testing.T) {
	roster := []RosterPlayer{
		{ID: "1", Position: PositionQB, IsStarter: true, CurrentSlot: "QB"},
		{ID: "2", Position: PositionRB, IsStarter: true, CurrentSlot: "RB1"},
		{ID: "3", Position: PositionRB, IsStarter: true, CurrentSlot: "RB2"},
		{ID: "4", Position: PositionWR, IsStarter: true, CurrentSlot: "WR1"},
		{ID: "5", Position: PositionRB, IsStarter: false, CurrentSlot: "BN"},
	}

	reqs := DeriveRequirements(nil, roster, testLog())

	assert.Equal(t, SlotRequirements{
		SlotQB: 1,
		SlotRB: 2,
		SlotWR: 1,
	}, reqs)
}

func TestDeriveRequirements_TEInWRSlotCountsAsWRTEFlex(t *testing.T) {
	roster := []RosterPlayer{
		{ID: "1", Position: PositionTE, IsStarter: true, CurrentSlot: "WR2"},
		{ID: "2", Position: PositionTE, IsStarter: true, CurrentSlot: "WR/TE"},
		{ID: "3", Position: PositionWR, IsStarter: true, CurrentSlot: "WR1"},
	}

	reqs := DeriveRequirements(nil, roster, testLog())

	assert.Equal(t, 2, reqs[SlotWRTE], "TEs occupying WR-labeled slots count toward WR/TE flex")
	assert.Equal(t, 1, reqs[SlotWR])
	assert.Zero(t, reqs[SlotTE])
}

func TestDeriveRequirements_DefaultFallback(t *testing.T) {
	roster := []RosterPlayer{
		{ID: "1", Position: PositionRB, IsStarter: false, CurrentSlot: "BN"},
	}

	reqs := DeriveRequirements(nil, roster, testLog())

	assert.Equal(t, defaultRequirements(), reqs)
	assert.NotZero(t, reqs.TotalStarters(), "derived requirements must never be empty")
}

func TestNormalizeSlotLabel(t *testing.T) {
	cases := map[string]Slot{
		"QB":         SlotQB,
		"RB2":        SlotRB,
		"WR1":        SlotWR,
		"W/R/T":      SlotFlex,
		"WR/TE":      SlotWRTE,
		"REC_FLEX":   SlotRecFlex,
		"SUPER_FLEX": SlotSuperFlex,
		"RB/WR":      SlotWRRBFlex,
		"D/ST":       SlotDEF,
		"DST":        SlotDEF,
		"BE":         SlotBench,
		"IR":         SlotIR,
	}
	for label, want := range cases {
		got, ok := NormalizeSlotLabel(label)
		assert.True(t, ok, "label %q should normalize", label)
		assert.Equal(t, want, got, "label %q", label)
	}

	_, ok := NormalizeSlotLabel("GOALIE")
	assert.False(t, ok, "unknown labels must not be guessed")
}
