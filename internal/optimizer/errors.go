package optimizer

import "errors"

var (
	// ErrNoTeamData means the roster collaborator returned no players;
	// fatal to the call.
	ErrNoTeamData = errors.New("no team data available")

	// ErrNoProjections means no player on the roster resolved a projection
	// for the target week. The optimizer refuses to emit an all-bench
	// lineup in that state.
	ErrNoProjections = errors.New("no projections available for week")

	// ErrInvalidLineupRequirements means slot requirements resolved to an
	// empty map. Unreachable while the hardcoded default stands; kept as a
	// guard so a broken default cannot produce a degenerate lineup.
	ErrInvalidLineupRequirements = errors.New("invalid lineup requirements")
)
