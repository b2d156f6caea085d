package optimizer

import (
	"github.com/sirupsen/logrus"
)

// ResolveProjections builds the player-ID -> projected points map for one
// week. The bye check runs before any projection lookup so a stale stored
// projection can never override a bye-week zero. Players without a lookup
// key or without a record are omitted entirely: absence of data is a
// distinct state from a zero score.
func ResolveProjections(
	roster []RosterPlayer,
	records map[string]ProjectionRecord,
	status map[string]GameStatus,
	format ScoringFormat,
	log *logrus.Entry,
) map[string]float64 {
	resolved := make(map[string]float64, len(roster))
	missing := 0

	for _, player := range roster {
		if player.ProjectionKey == "" {
			missing++
			continue
		}

		// Bye status always wins and is checked first.
		if st, ok := status[player.Team]; ok && st.OnBye {
			resolved[player.ID] = 0.0
			continue
		}

		record, ok := records[player.ProjectionKey]
		if !ok {
			missing++
			continue
		}
		resolved[player.ID] = record.Points(format)
	}

	log.WithFields(logrus.Fields{
		"roster_size":    len(roster),
		"resolved_count": len(resolved),
		"missing_count":  missing,
		"format":         format,
	}).Debug("Projections resolved")

	return resolved
}
