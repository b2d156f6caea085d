package optimizer

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// SlotRequirements maps starting slot tags to required counts. Bench and
// IR are unlimited sinks and are never counted here.
type SlotRequirements map[Slot]int

// TotalStarters returns the number of required starting assignments.
func (r SlotRequirements) TotalStarters() int {
	total := 0
	for _, count := range r {
		total += count
	}
	return total
}

// defaultRequirements is the last-resort lineup shape when neither league
// configuration nor current starters are available.
func defaultRequirements() SlotRequirements {
	return SlotRequirements{
		SlotQB:   1,
		SlotRB:   2,
		SlotWR:   2,
		SlotTE:   1,
		SlotFlex: 1,
		SlotK:    1,
		SlotDEF:  1,
	}
}

// DeriveRequirements produces the slot requirement map. League slot labels
// are authoritative when present; otherwise requirements are inferred from
// the roster's current starters; otherwise the hardcoded default applies.
// The result is never empty.
func DeriveRequirements(leagueSlots []string, roster []RosterPlayer, log *logrus.Entry) SlotRequirements {
	if reqs := requirementsFromLeagueConfig(leagueSlots, log); len(reqs) > 0 {
		return reqs
	}
	if reqs := requirementsFromStarters(roster); len(reqs) > 0 {
		log.Debug("No league slot configuration, inferred requirements from current starters")
		return reqs
	}
	log.Warn("No league configuration or current starters, using default lineup requirements")
	return defaultRequirements()
}

func requirementsFromLeagueConfig(leagueSlots []string, log *logrus.Entry) SlotRequirements {
	reqs := SlotRequirements{}
	for _, label := range leagueSlots {
		slot, ok := NormalizeSlotLabel(label)
		if !ok {
			log.WithField("slot_label", label).Warn("Unknown league slot label, skipping")
			continue
		}
		if slot.IsSink() {
			continue
		}
		reqs[slot]++
	}
	return reqs
}

// requirementsFromStarters infers the lineup shape from where starters sit
// today. A TE occupying a WR-labeled slot (or a slot literally named with
// "WR/TE") counts as a WR/TE flex occupant, not a plain WR.
func requirementsFromStarters(roster []RosterPlayer) SlotRequirements {
	reqs := SlotRequirements{}
	for _, player := range roster {
		if !player.IsStarter {
			continue
		}
		slot, ok := NormalizeSlotLabel(player.CurrentSlot)
		if !ok {
			// Unrecognized label: count the player's own position.
			slot = Slot(player.Position)
		}
		if slot.IsSink() {
			continue
		}
		if player.Position == PositionTE &&
			(slot == SlotWR || strings.Contains(strings.ToUpper(player.CurrentSlot), "WR/TE")) {
			reqs[SlotWRTE]++
			continue
		}
		reqs[slot]++
	}
	return reqs
}
