package optimizer

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// BuildCurrentAssignment reconstructs the lineup the user has set today
// from each player's current slot label. Non-starters and players with
// unrecognizable labels land on the bench.
func BuildCurrentAssignment(roster []RosterPlayer) LineupAssignment {
	current := LineupAssignment{}
	for _, player := range roster {
		slot := SlotBench
		if normalized, ok := NormalizeSlotLabel(player.CurrentSlot); ok {
			if player.IsStarter || normalized.IsSink() {
				slot = normalized
			}
		}
		current[slot] = append(current[slot], player)
	}
	return current
}

// AssignSlots computes the optimal lineup. Locked players keep their
// current slots verbatim; the unlocked pool fills the remaining vacancies
// greedily, exact-position slots first, then flexible slots in fixed
// priority order, highest projection first. Everyone left goes to the
// bench.
func AssignSlots(
	roster []RosterPlayer,
	locked map[string]bool,
	proj map[string]float64,
	reqs SlotRequirements,
	log *logrus.Entry,
) LineupAssignment {
	optimal := LineupAssignment{}

	// Locked players are merged in first so vacancy counts see them.
	for _, player := range roster {
		if !locked[player.ID] {
			continue
		}
		slot := SlotBench
		if normalized, ok := NormalizeSlotLabel(player.CurrentSlot); ok && (player.IsStarter || normalized.IsSink()) {
			slot = normalized
		}
		optimal[slot] = append(optimal[slot], player)
	}

	pool := make([]RosterPlayer, 0, len(roster))
	for _, player := range roster {
		if !locked[player.ID] {
			pool = append(pool, player)
		}
	}
	sortByProjection(pool, proj)

	for _, slot := range standardSlotOrder {
		pool = fillSlot(optimal, pool, slot, reqs[slot])
	}
	for _, slot := range flexFillOrder {
		pool = fillSlot(optimal, pool, slot, reqs[slot])
	}

	// Unconditional unlimited-capacity sink.
	optimal[SlotBench] = append(optimal[SlotBench], pool...)

	log.WithFields(logrus.Fields{
		"starters_assigned": len(optimal.Starters()),
		"benched":           len(optimal[SlotBench]),
	}).Debug("Slot assignment complete")

	return optimal
}

// fillSlot takes the highest-projected eligible players from the pool
// until the slot's requirement (minus already locked occupants) is met,
// and returns the pool with assigned players removed.
func fillSlot(optimal LineupAssignment, pool []RosterPlayer, slot Slot, required int) []RosterPlayer {
	vacancies := required - len(optimal[slot])
	if vacancies <= 0 {
		return pool
	}

	remaining := pool[:0:0]
	for _, player := range pool {
		if vacancies > 0 && slot.Eligible(player.Position) {
			optimal[slot] = append(optimal[slot], player)
			vacancies--
			continue
		}
		remaining = append(remaining, player)
	}
	return remaining
}

// sortByProjection orders the pool by projected points descending. Missing
// projections sort as zero for ordering only and are never materialized as
// scores. The sort is stable with player ID as an explicit secondary key,
// so equal-projection orderings are reproducible across calls.
func sortByProjection(pool []RosterPlayer, proj map[string]float64) {
	sort.SliceStable(pool, func(i, j int) bool {
		pi := proj[pool[i].ID]
		pj := proj[pool[j].ID]
		if pi != pj {
			return pi > pj
		}
		return pool[i].ID < pool[j].ID
	})
}
