package optimizer

import (
	"github.com/sirupsen/logrus"
)

// ClassifyLocks partitions the roster into locked players (game concluded
// this week) and the pool still available for optimization. Points already
// accrued from a finished game are immutable fact: a locked player's slot
// is copied into the optimal lineup untouched, so the recommendation never
// fabricates a lineup the user can no longer set.
func ClassifyLocks(roster []RosterPlayer, status map[string]GameStatus, log *logrus.Entry) (locked map[string]bool, optimizable []RosterPlayer) {
	locked = make(map[string]bool)
	optimizable = make([]RosterPlayer, 0, len(roster))

	for _, player := range roster {
		if st, ok := status[player.Team]; ok && st.Concluded {
			locked[player.ID] = true
			continue
		}
		optimizable = append(optimizable, player)
	}

	log.WithFields(logrus.Fields{
		"locked_count":      len(locked),
		"optimizable_count": len(optimizable),
	}).Debug("Roster lock classification complete")

	return locked, optimizable
}
