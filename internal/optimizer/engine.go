package optimizer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Engine runs lineup optimization against a set of external collaborators.
// The computation itself is pure and synchronous: every call refetches its
// inputs and recomputes the full assignment and diff from scratch, with no
// state shared between invocations. Cancellation belongs to the caller via
// ctx around the upstream fetches.
type Engine struct {
	projections  ProjectionProvider
	gameStatus   GameStatusProvider
	leagueConfig LeagueConfigProvider
	available    AvailablePlayerProvider
	logger       *logrus.Logger
	waiverMargin float64
}

// NewEngine creates an optimization engine. leagueConfig may be nil, in
// which case slot requirements are always inferred from the roster.
func NewEngine(
	projections ProjectionProvider,
	gameStatus GameStatusProvider,
	leagueConfig LeagueConfigProvider,
	available AvailablePlayerProvider,
	waiverMargin float64,
	logger *logrus.Logger,
) *Engine {
	if waiverMargin <= 0 {
		waiverMargin = defaultWaiverMargin
	}
	return &Engine{
		projections:  projections,
		gameStatus:   gameStatus,
		leagueConfig: leagueConfig,
		available:    available,
		logger:       logger,
		waiverMargin: waiverMargin,
	}
}

// OptimizeRequest carries everything one optimize call needs. The
// minimum-improvement threshold is an explicit field (a 0-100 percentage)
// rather than an ambient setting, so concurrent calls cannot observe a
// mid-flight preference change.
type OptimizeRequest struct {
	LeagueID          string
	Roster            []RosterPlayer
	Week              int
	Year              int
	Format            ScoringFormat
	MinImprovementPct float64
}

// OptimizeLineup computes the highest-projected valid lineup for the
// roster and the minimal set of start/bench recommendations to reach it.
func (e *Engine) OptimizeLineup(ctx context.Context, req OptimizeRequest) (*OptimizationResult, error) {
	if len(req.Roster) == 0 {
		return nil, ErrNoTeamData
	}

	optimizationID := uuid.New().String()
	log := e.logger.WithFields(logrus.Fields{
		"optimization_id": optimizationID,
		"league_id":       req.LeagueID,
		"week":            req.Week,
		"year":            req.Year,
		"format":          req.Format,
	})
	log.WithField("roster_size", len(req.Roster)).Info("Starting lineup optimization")

	statusByTeam, err := e.gameStatus.WeekGameStatus(ctx, req.Week, req.Year)
	if err != nil {
		return nil, fmt.Errorf("fetching game status: %w", err)
	}
	records, err := e.projections.WeekProjections(ctx, req.Week, req.Year)
	if err != nil {
		return nil, fmt.Errorf("fetching projections: %w", err)
	}

	proj := ResolveProjections(req.Roster, records, statusByTeam, req.Format, log)
	if len(proj) == 0 {
		return nil, ErrNoProjections
	}

	reqs := DeriveRequirements(e.leagueSlotLabels(ctx, req.LeagueID, log), req.Roster, log)
	if reqs.TotalStarters() == 0 {
		return nil, ErrInvalidLineupRequirements
	}

	locked, _ := ClassifyLocks(req.Roster, statusByTeam, log)

	current := BuildCurrentAssignment(req.Roster)
	optimal := AssignSlots(req.Roster, locked, proj, reqs, log)
	diff := GenerateChanges(current, optimal, proj, locked, req.MinImprovementPct, log)

	chains := make([]MoveChain, len(diff.Changes))
	for i, change := range diff.Changes {
		chains[i] = change.Chain
	}

	result := &OptimizationResult{
		OptimizationID:        optimizationID,
		OptimalLineup:         optimal,
		BenchedPlayers:        optimal[SlotBench],
		ProjectedPoints:       lineupTotal(optimal, proj),
		CurrentPoints:         lineupTotal(current, proj),
		Improvement:           diff.TheoreticalImprovement,
		ActionableImprovement: diff.ActionableImprovement,
		Changes:               diff.Changes,
		MoveChains:            chains,
	}

	log.WithFields(logrus.Fields{
		"projected_points":        result.ProjectedPoints,
		"current_points":          result.CurrentPoints,
		"theoretical_improvement": result.Improvement,
		"actionable_improvement":  result.ActionableImprovement,
		"changes":                 len(result.Changes),
	}).Info("Lineup optimization completed")

	return result, nil
}

// leagueSlotLabels fetches the league's slot configuration when a provider
// is wired. Fetch failures are non-fatal: derivation falls back to starter
// inference, then the hardcoded default.
func (e *Engine) leagueSlotLabels(ctx context.Context, leagueID string, log *logrus.Entry) []string {
	if e.leagueConfig == nil || leagueID == "" {
		return nil
	}
	labels, err := e.leagueConfig.RosterSlotLabels(ctx, leagueID)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch league slot configuration, falling back to inference")
		return nil
	}
	return labels
}
