package optimizer

import (
	"sort"

	"github.com/sirupsen/logrus"
)

const (
	reasonLowerProjection  = "Lower projection"
	reasonPlayerOnBye      = "Player on BYE"
	reasonHigherProjection = "Higher projection"
)

// DiffSummary is the output of the diff stage: the surviving
// recommendations plus both improvement aggregates. The theoretical number
// covers every slot including locked players and filtered-out swaps; the
// actionable number sums only the surviving changes. They legitimately
// diverge and both are exposed.
type DiffSummary struct {
	Changes                []LineupChange
	TheoreticalImprovement float64
	ActionableImprovement  float64
}

// GenerateChanges compares the current lineup against the optimal one and
// emits the minimal ordered set of start/bench recommendations clearing
// the minimum-improvement threshold (a 0-100 percentage). Locked players
// never appear on either side.
func GenerateChanges(
	current, optimal LineupAssignment,
	proj map[string]float64,
	locked map[string]bool,
	thresholdPct float64,
	log *logrus.Entry,
) DiffSummary {
	currentStarters := starterSet(current)
	optimalStarters := starterSet(optimal)

	var toBench []RosterPlayer
	for _, player := range current.Starters() {
		if locked[player.ID] || optimalStarters[player.ID] {
			continue
		}
		toBench = append(toBench, player)
	}

	var toStart []RosterPlayer
	for _, player := range optimal.Starters() {
		if locked[player.ID] || currentStarters[player.ID] {
			continue
		}
		toStart = append(toStart, player)
	}

	// Weakest outs first, strongest ins first.
	sortByProjectionAscending(toBench, proj)
	sortByProjection(toStart, proj)

	matched := make([]bool, len(toBench))
	changes := make([]LineupChange, 0, len(toStart))
	filtered := 0

	for _, in := range toStart {
		target, ok := optimal.SlotOf(in.ID)
		if !ok {
			continue
		}

		out := matchOutgoing(toBench, matched, target, in.Position)

		inProj := proj[in.ID]
		outProj := 0.0
		if out != nil {
			outProj = proj[out.ID]
		}
		improvement := inProj - outProj
		pct := 0.0
		if outProj > 0 {
			pct = improvement / outProj * 100
		}

		if pct < thresholdPct {
			filtered++
			continue
		}

		changes = append(changes, LineupChange{
			Out:            out,
			In:             in,
			OutProjection:  outProj,
			InProjection:   inProj,
			Improvement:    improvement,
			ImprovementPct: pct,
			TargetSlot:     target,
			Chain:          buildMoveChain(out, in, outProj, inProj, target, improvement),
		})
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Improvement > changes[j].Improvement
	})

	actionable := 0.0
	for _, change := range changes {
		actionable += change.Improvement
	}

	summary := DiffSummary{
		Changes:                changes,
		TheoreticalImprovement: lineupTotal(optimal, proj) - lineupTotal(current, proj),
		ActionableImprovement:  actionable,
	}

	log.WithFields(logrus.Fields{
		"to_bench":                len(toBench),
		"to_start":                len(toStart),
		"changes":                 len(changes),
		"filtered_below_pct":      filtered,
		"threshold_pct":           thresholdPct,
		"theoretical_improvement": summary.TheoreticalImprovement,
		"actionable_improvement":  summary.ActionableImprovement,
	}).Debug("Lineup diff complete")

	return summary
}

// matchOutgoing finds the first not-yet-matched bench candidate whose
// number-stripped current slot equals the target slot, or whose position
// equals the incoming player's. No match is a valid outcome: the incoming
// player fills an empty slot and the outgoing projection is zero.
func matchOutgoing(toBench []RosterPlayer, matched []bool, target Slot, inPos Position) *RosterPlayer {
	for i := range toBench {
		if matched[i] {
			continue
		}
		stripped := StripSlotOrdinal(toBench[i].CurrentSlot)
		if stripped == string(target) || toBench[i].Position == inPos {
			matched[i] = true
			return &toBench[i]
		}
	}
	return nil
}

func buildMoveChain(out *RosterPlayer, in RosterPlayer, outProj, inProj float64, target Slot, improvement float64) MoveChain {
	chain := MoveChain{
		NetImprovement:  improvement,
		StartedPlayerID: in.ID,
	}

	if out != nil {
		benchReason := reasonLowerProjection
		if outProj == 0 {
			benchReason = reasonPlayerOnBye
		}
		fromSlot := SlotBench
		if normalized, ok := NormalizeSlotLabel(out.CurrentSlot); ok {
			fromSlot = normalized
		}
		chain.BenchedPlayerID = out.ID
		chain.Steps = append(chain.Steps, MoveStep{
			PlayerID:   out.ID,
			PlayerName: out.Name,
			FromSlot:   fromSlot,
			ToSlot:     SlotBench,
			Reason:     benchReason,
			Projection: outProj,
		})
	}

	chain.Steps = append(chain.Steps, MoveStep{
		PlayerID:   in.ID,
		PlayerName: in.Name,
		FromSlot:   SlotBench,
		ToSlot:     target,
		Reason:     reasonHigherProjection,
		Projection: inProj,
	})

	return chain
}

// lineupTotal sums starter value over every starting slot. A locked
// player's accrued points stand in for their projection once a game has
// started.
func lineupTotal(assignment LineupAssignment, proj map[string]float64) float64 {
	total := 0.0
	for _, player := range assignment.Starters() {
		total += playerValue(player, proj)
	}
	return total
}

func playerValue(player RosterPlayer, proj map[string]float64) float64 {
	if player.CurrentPoints != nil {
		return *player.CurrentPoints
	}
	return proj[player.ID]
}

func starterSet(assignment LineupAssignment) map[string]bool {
	set := make(map[string]bool)
	for _, player := range assignment.Starters() {
		set[player.ID] = true
	}
	return set
}

func sortByProjectionAscending(players []RosterPlayer, proj map[string]float64) {
	sort.SliceStable(players, func(i, j int) bool {
		pi := proj[players[i].ID]
		pj := proj[players[j].ID]
		if pi != pj {
			return pi < pj
		}
		return players[i].ID < players[j].ID
	})
}
