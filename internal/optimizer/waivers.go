package optimizer

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// defaultWaiverMargin is the absolute projection edge a free agent must
// hold over the weakest starter before an add is worth a waiver claim.
const defaultWaiverMargin = 3.0

// availablePoolSize is how deep the free-agent pool is fetched per
// position before filtering.
const availablePoolSize = 15

// GetWaiverRecommendations scans each core offensive position for free
// agents projecting more than the margin above the roster's weakest
// starter at that position, then ranks candidates across positions by
// impact and truncates to the caller's limit.
func (e *Engine) GetWaiverRecommendations(
	ctx context.Context,
	leagueID string,
	roster []RosterPlayer,
	week, year, limit int,
	format ScoringFormat,
) ([]WaiverRecommendation, error) {
	if len(roster) == 0 {
		return nil, ErrNoTeamData
	}
	log := e.logger.WithFields(logrus.Fields{
		"league_id": leagueID,
		"week":      week,
		"scan":      "waivers",
	})

	statusByTeam, err := e.gameStatus.WeekGameStatus(ctx, week, year)
	if err != nil {
		return nil, fmt.Errorf("fetching game status: %w", err)
	}
	records, err := e.projections.WeekProjections(ctx, week, year)
	if err != nil {
		return nil, fmt.Errorf("fetching projections: %w", err)
	}
	proj := ResolveProjections(roster, records, statusByTeam, format, log)

	var recommendations []WaiverRecommendation
	for _, pos := range OffensivePositions {
		weak, weakProj := weakestStarter(roster, proj, pos)
		if weak == nil {
			continue
		}

		pool, err := e.available.TopAvailable(ctx, leagueID, pos, week, year, availablePoolSize, format)
		if err != nil {
			return nil, fmt.Errorf("fetching available players at %s: %w", pos, err)
		}
		if len(pool) == 0 {
			continue
		}

		poolMean, poolStdDev := poolDispersion(pool)
		for _, candidate := range pool {
			impact := candidate.Projection - weakProj
			if impact <= e.waiverMargin {
				continue
			}
			z := 0.0
			if poolStdDev > 0 {
				z = (candidate.Projection - poolMean) / poolStdDev
			}
			recommendations = append(recommendations, WaiverRecommendation{
				Position:       pos,
				Add:            candidate,
				Drop:           weak,
				DropProjection: weakProj,
				Impact:         impact,
				PoolZScore:     z,
				Reason: fmt.Sprintf("%s projects %.1f points over %s",
					candidate.Name, impact, weak.Name),
			})
		}
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Impact > recommendations[j].Impact
	})
	if limit > 0 && len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}

	log.WithField("recommendations", len(recommendations)).Info("Waiver scan complete")
	return recommendations, nil
}

// weakestStarter returns the lowest-projected starter at a position. When
// the position has no starter, the weakest rostered player there is used
// so an empty comparison set never hides a clear upgrade.
func weakestStarter(roster []RosterPlayer, proj map[string]float64, pos Position) (*RosterPlayer, float64) {
	var weak *RosterPlayer
	weakProj := 0.0
	pick := func(starterOnly bool) {
		for i := range roster {
			player := &roster[i]
			if player.Position != pos || (starterOnly && !player.IsStarter) {
				continue
			}
			p := proj[player.ID]
			if weak == nil || p < weakProj {
				weak = player
				weakProj = p
			}
		}
	}
	pick(true)
	if weak == nil {
		pick(false)
	}
	return weak, weakProj
}

// poolDispersion returns the mean and standard deviation of the fetched
// pool's projections, used to situate each candidate within the pool.
func poolDispersion(pool []AvailablePlayer) (float64, float64) {
	values := make([]float64, len(pool))
	for i, p := range pool {
		values[i] = p.Projection
	}
	mean := stat.Mean(values, nil)
	stddev := stat.StdDev(values, nil)
	return mean, stddev
}
