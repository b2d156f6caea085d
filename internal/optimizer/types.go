package optimizer

import (
	"context"
)

// Position is a player's single canonical position.
type Position string

const (
	PositionQB  Position = "QB"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionTE  Position = "TE"
	PositionK   Position = "K"
	PositionDEF Position = "DEF"
)

// OffensivePositions are the positions scanned for waiver upgrades.
var OffensivePositions = []Position{PositionQB, PositionRB, PositionWR, PositionTE}

// ScoringFormat selects which projection field applies to a league.
type ScoringFormat string

const (
	FormatPPR      ScoringFormat = "ppr"
	FormatHalfPPR  ScoringFormat = "half_ppr"
	FormatStandard ScoringFormat = "standard"
)

// RosterPlayer is one player on a fantasy roster as reported by the
// roster collaborator.
type RosterPlayer struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Position      Position `json:"position"`
	Team          string   `json:"team"`
	IsStarter     bool     `json:"is_starter"`
	CurrentSlot   string   `json:"current_slot,omitempty"`
	CurrentPoints *float64 `json:"current_points,omitempty"`
	ProjectionKey string   `json:"projection_key,omitempty"`
}

// ProjectionRecord is the raw weekly projection for one player, one field
// per scoring format.
type ProjectionRecord struct {
	PPR      float64 `json:"ppr"`
	HalfPPR  float64 `json:"half_ppr"`
	Standard float64 `json:"standard"`
}

// Points returns the field matching the requested scoring format,
// defaulting to PPR for unrecognized formats.
func (r ProjectionRecord) Points(format ScoringFormat) float64 {
	switch format {
	case FormatHalfPPR:
		return r.HalfPPR
	case FormatStandard:
		return r.Standard
	default:
		return r.PPR
	}
}

// GameStatus reports a team's real-world game state for one week.
type GameStatus struct {
	Team      string `json:"team"`
	OnBye     bool   `json:"on_bye"`
	Concluded bool   `json:"concluded"`
}

// LineupAssignment maps each slot to its ordered occupants. Every roster
// player appears in exactly one slot, bench included.
type LineupAssignment map[Slot][]RosterPlayer

// Players returns the occupants of a slot.
func (a LineupAssignment) Players(slot Slot) []RosterPlayer {
	return a[slot]
}

// Starters returns all players assigned to a starting slot (not bench/IR).
func (a LineupAssignment) Starters() []RosterPlayer {
	var starters []RosterPlayer
	for slot, players := range a {
		if slot.IsSink() {
			continue
		}
		starters = append(starters, players...)
	}
	return starters
}

// SlotOf locates the slot holding the given player ID.
func (a LineupAssignment) SlotOf(playerID string) (Slot, bool) {
	for slot, players := range a {
		for _, p := range players {
			if p.ID == playerID {
				return slot, true
			}
		}
	}
	return "", false
}

// MoveStep is one atomic reassignment inside a recommendation.
type MoveStep struct {
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	FromSlot   Slot    `json:"from_slot"`
	ToSlot     Slot    `json:"to_slot"`
	Reason     string  `json:"reason"`
	Projection float64 `json:"projection"`
}

// MoveChain is an ordered bench-out/start-in pair (or a single start-in)
// representing one actionable recommendation.
type MoveChain struct {
	Steps           []MoveStep `json:"steps"`
	NetImprovement  float64    `json:"net_improvement"`
	BenchedPlayerID string     `json:"benched_player_id,omitempty"`
	StartedPlayerID string     `json:"started_player_id"`
}

// LineupChange pairs an optional outgoing player with an incoming one.
// Improvement is always incoming minus outgoing projection (outgoing 0
// when no player is displaced).
type LineupChange struct {
	Out            *RosterPlayer `json:"out,omitempty"`
	In             RosterPlayer  `json:"in"`
	OutProjection  float64       `json:"out_projection"`
	InProjection   float64       `json:"in_projection"`
	Improvement    float64       `json:"improvement"`
	ImprovementPct float64       `json:"improvement_pct"`
	TargetSlot     Slot          `json:"target_slot"`
	Chain          MoveChain     `json:"chain"`
}

// OptimizationResult is the full outcome of one optimize call.
type OptimizationResult struct {
	OptimizationID        string           `json:"optimization_id"`
	OptimalLineup         LineupAssignment `json:"optimal_lineup"`
	BenchedPlayers        []RosterPlayer   `json:"benched_players"`
	ProjectedPoints       float64          `json:"projected_points"`
	CurrentPoints         float64          `json:"current_points"`
	Improvement           float64          `json:"improvement"`
	ActionableImprovement float64          `json:"actionable_improvement"`
	Changes               []LineupChange   `json:"changes"`
	MoveChains            []MoveChain      `json:"move_chains"`
}

// AvailablePlayer is a non-rostered player from the free-agent pool.
type AvailablePlayer struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Team       string   `json:"team"`
	Position   Position `json:"position"`
	Projection float64  `json:"projection"`
}

// WaiverRecommendation is one ADD/DROP upgrade candidate.
type WaiverRecommendation struct {
	Position       Position        `json:"position"`
	Add            AvailablePlayer `json:"add"`
	Drop           *RosterPlayer   `json:"drop,omitempty"`
	DropProjection float64         `json:"drop_projection"`
	Impact         float64         `json:"impact"`
	PoolZScore     float64         `json:"pool_z_score"`
	Reason         string          `json:"reason"`
}

// Consumed collaborator contracts. Implementations live outside the
// optimizer; the engine treats them as single-shot, already-resolved
// fetches and never retries or caches them.

// ProjectionProvider returns the raw weekly projection records keyed by
// each player's projection-lookup key.
type ProjectionProvider interface {
	WeekProjections(ctx context.Context, week, year int) (map[string]ProjectionRecord, error)
}

// GameStatusProvider returns per-team game state for a week, keyed by team.
type GameStatusProvider interface {
	WeekGameStatus(ctx context.Context, week, year int) (map[string]GameStatus, error)
}

// LeagueConfigProvider returns the league's raw roster slot labels, when
// the league exposes them.
type LeagueConfigProvider interface {
	RosterSlotLabels(ctx context.Context, leagueID string) ([]string, error)
}

// AvailablePlayerProvider returns a ranked pool of non-rostered players at
// a position.
type AvailablePlayerProvider interface {
	TopAvailable(ctx context.Context, leagueID string, pos Position, week, year, limit int, format ScoringFormat) ([]AvailablePlayer, error)
}

// RosterProvider returns a user's roster in a league.
type RosterProvider interface {
	Roster(ctx context.Context, leagueID, userID string) ([]RosterPlayer, error)
}

// UserPreferenceProvider returns the persisted minimum-improvement
// threshold as a 0-100 percentage.
type UserPreferenceProvider interface {
	MinImprovementPct(ctx context.Context, userID string) (float64, error)
}
