package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rosterlab/lineup-service/internal/optimizer"
	"github.com/rosterlab/lineup-service/pkg/cache"
)

// SleeperClient implements the optimizer's collaborator contracts against
// the Sleeper fantasy API. Weekly fetches are cached in redis for a short
// TTL; the optimizer never sees the cache.
type SleeperClient struct {
	httpClient *http.Client
	baseURL    string
	cache      *cache.FetchCacheService
	cacheTTL   time.Duration
	logger     *logrus.Logger
}

// NewSleeperClient creates a new Sleeper API client. cacheService may be
// nil, in which case every call hits the API.
func NewSleeperClient(baseURL string, timeout time.Duration, cacheService *cache.FetchCacheService, cacheTTL time.Duration, logger *logrus.Logger) *SleeperClient {
	return &SleeperClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		cache:      cacheService,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

type sleeperLeague struct {
	LeagueID        string   `json:"league_id"`
	RosterPositions []string `json:"roster_positions"`
}

type sleeperRoster struct {
	RosterID int      `json:"roster_id"`
	OwnerID  string   `json:"owner_id"`
	Players  []string `json:"players"`
	Starters []string `json:"starters"`
}

type sleeperPlayer struct {
	PlayerID string `json:"player_id"`
	FullName string `json:"full_name"`
	Position string `json:"position"`
	Team     string `json:"team"`
}

type sleeperProjection struct {
	PlayerID string `json:"player_id"`
	Stats    struct {
		PtsPPR     float64 `json:"pts_ppr"`
		PtsHalfPPR float64 `json:"pts_half_ppr"`
		PtsStd     float64 `json:"pts_std"`
	} `json:"stats"`
	Player struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Position  string `json:"position"`
		Team      string `json:"team"`
	} `json:"player"`
}

type sleeperGame struct {
	Week   int    `json:"week"`
	Status string `json:"status"`
	Home   string `json:"home"`
	Away   string `json:"away"`
}

// Roster returns the user's roster in a league. Sleeper's starters array
// aligns positionally with the league's roster_positions, which yields
// each starter's current slot label.
func (c *SleeperClient) Roster(ctx context.Context, leagueID, userID string) ([]optimizer.RosterPlayer, error) {
	var league sleeperLeague
	if err := c.getJSON(ctx, fmt.Sprintf("%s/v1/league/%s", c.baseURL, leagueID), &league); err != nil {
		return nil, fmt.Errorf("fetching league %s: %w", leagueID, err)
	}

	var rosters []sleeperRoster
	if err := c.getJSON(ctx, fmt.Sprintf("%s/v1/league/%s/rosters", c.baseURL, leagueID), &rosters); err != nil {
		return nil, fmt.Errorf("fetching rosters for league %s: %w", leagueID, err)
	}

	var mine *sleeperRoster
	for i := range rosters {
		if rosters[i].OwnerID == userID {
			mine = &rosters[i]
			break
		}
	}
	if mine == nil {
		return nil, nil
	}

	meta, err := c.playerMetadata(ctx)
	if err != nil {
		return nil, err
	}

	starterSlot := make(map[string]string, len(mine.Starters))
	slotLabels := startingSlotLabels(league.RosterPositions)
	for i, playerID := range mine.Starters {
		if playerID == "" || playerID == "0" {
			continue
		}
		if i < len(slotLabels) {
			starterSlot[playerID] = slotLabels[i]
		}
	}

	roster := make([]optimizer.RosterPlayer, 0, len(mine.Players))
	for _, playerID := range mine.Players {
		p, ok := meta[playerID]
		if !ok {
			c.logger.WithField("player_id", playerID).Warn("Rostered player missing from player metadata")
			continue
		}
		slot, isStarter := starterSlot[playerID]
		if !isStarter {
			slot = "BN"
		}
		roster = append(roster, optimizer.RosterPlayer{
			ID:            playerID,
			Name:          p.FullName,
			Position:      optimizer.Position(p.Position),
			Team:          p.Team,
			IsStarter:     isStarter,
			CurrentSlot:   slot,
			ProjectionKey: playerID,
		})
	}
	return roster, nil
}

// RosterSlotLabels returns the league's configured slot labels.
func (c *SleeperClient) RosterSlotLabels(ctx context.Context, leagueID string) ([]string, error) {
	var league sleeperLeague
	if err := c.getJSON(ctx, fmt.Sprintf("%s/v1/league/%s", c.baseURL, leagueID), &league); err != nil {
		return nil, fmt.Errorf("fetching league %s: %w", leagueID, err)
	}
	return league.RosterPositions, nil
}

// WeekProjections returns the raw projection records for a week keyed by
// player ID.
func (c *SleeperClient) WeekProjections(ctx context.Context, week, year int) (map[string]optimizer.ProjectionRecord, error) {
	cacheKey := fmt.Sprintf("projections:%d:%d", year, week)
	records := map[string]optimizer.ProjectionRecord{}
	if c.cacheGet(ctx, cacheKey, &records) {
		return records, nil
	}

	url := fmt.Sprintf("%s/projections/nfl/%d/%d?season_type=regular", c.baseURL, year, week)
	var raw []sleeperProjection
	if err := c.getJSON(ctx, url, &raw); err != nil {
		return nil, fmt.Errorf("fetching projections week %d/%d: %w", week, year, err)
	}

	for _, entry := range raw {
		records[entry.PlayerID] = optimizer.ProjectionRecord{
			PPR:      entry.Stats.PtsPPR,
			HalfPPR:  entry.Stats.PtsHalfPPR,
			Standard: entry.Stats.PtsStd,
		}
	}

	c.cacheSet(ctx, cacheKey, records)
	return records, nil
}

// WeekGameStatus derives per-team game state from the season schedule: a
// team with no scheduled game that week is on bye; a game in complete
// status locks both participants.
func (c *SleeperClient) WeekGameStatus(ctx context.Context, week, year int) (map[string]optimizer.GameStatus, error) {
	cacheKey := fmt.Sprintf("gamestatus:%d:%d", year, week)
	status := map[string]optimizer.GameStatus{}
	if c.cacheGet(ctx, cacheKey, &status) {
		return status, nil
	}

	var games []sleeperGame
	if err := c.getJSON(ctx, fmt.Sprintf("%s/schedule/nfl/regular/%d", c.baseURL, year), &games); err != nil {
		return nil, fmt.Errorf("fetching schedule for %d: %w", year, err)
	}

	playing := map[string]bool{}
	allTeams := map[string]bool{}
	for _, game := range games {
		allTeams[game.Home] = true
		allTeams[game.Away] = true
		if game.Week != week {
			continue
		}
		concluded := game.Status == "complete"
		playing[game.Home] = true
		playing[game.Away] = true
		status[game.Home] = optimizer.GameStatus{Team: game.Home, Concluded: concluded}
		status[game.Away] = optimizer.GameStatus{Team: game.Away, Concluded: concluded}
	}
	for team := range allTeams {
		if !playing[team] {
			status[team] = optimizer.GameStatus{Team: team, OnBye: true}
		}
	}

	c.cacheSet(ctx, cacheKey, status)
	return status, nil
}

// TopAvailable ranks non-rostered players at a position by projection. The
// rostered set is every player on any roster in the league.
func (c *SleeperClient) TopAvailable(ctx context.Context, leagueID string, pos optimizer.Position, week, year, limit int, format optimizer.ScoringFormat) ([]optimizer.AvailablePlayer, error) {
	var rosters []sleeperRoster
	if err := c.getJSON(ctx, fmt.Sprintf("%s/v1/league/%s/rosters", c.baseURL, leagueID), &rosters); err != nil {
		return nil, fmt.Errorf("fetching rosters for league %s: %w", leagueID, err)
	}
	rostered := map[string]bool{}
	for _, r := range rosters {
		for _, id := range r.Players {
			rostered[id] = true
		}
	}

	records, err := c.WeekProjections(ctx, week, year)
	if err != nil {
		return nil, err
	}
	meta, err := c.playerMetadata(ctx)
	if err != nil {
		return nil, err
	}

	var available []optimizer.AvailablePlayer
	for playerID, record := range records {
		if rostered[playerID] {
			continue
		}
		p, ok := meta[playerID]
		if !ok || optimizer.Position(p.Position) != pos {
			continue
		}
		available = append(available, optimizer.AvailablePlayer{
			ID:         playerID,
			Name:       p.FullName,
			Team:       p.Team,
			Position:   pos,
			Projection: record.Points(format),
		})
	}

	sort.SliceStable(available, func(i, j int) bool {
		if available[i].Projection != available[j].Projection {
			return available[i].Projection > available[j].Projection
		}
		return available[i].ID < available[j].ID
	})
	if limit > 0 && len(available) > limit {
		available = available[:limit]
	}
	return available, nil
}

// playerMetadata fetches the full NFL player table. The table is large
// and changes rarely, so it is cached at ten times the weekly TTL.
func (c *SleeperClient) playerMetadata(ctx context.Context) (map[string]sleeperPlayer, error) {
	meta := map[string]sleeperPlayer{}
	if c.cacheGet(ctx, "players:nfl", &meta) {
		return meta, nil
	}

	if err := c.getJSON(ctx, fmt.Sprintf("%s/v1/players/nfl", c.baseURL), &meta); err != nil {
		return nil, fmt.Errorf("fetching player metadata: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, "players:nfl", meta, 10*c.cacheTTL); err != nil {
			c.logger.WithError(err).Warn("Failed to cache player metadata")
		}
	}
	return meta, nil
}

func (c *SleeperClient) getJSON(ctx context.Context, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d from %s: %s", resp.StatusCode, url, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}

func (c *SleeperClient) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if c.cache == nil {
		return false
	}
	return c.cache.Get(ctx, key, dest) == nil
}

func (c *SleeperClient) cacheSet(ctx context.Context, key string, value interface{}) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, value, c.cacheTTL); err != nil {
		c.logger.WithError(err).Warn("Failed to cache upstream fetch")
	}
}

// startingSlotLabels numbers repeated position labels ("RB", "RB" becomes
// "RB1", "RB2") so slot identity survives into diff matching, and leaves
// bench/IR labels untouched.
func startingSlotLabels(rosterPositions []string) []string {
	counts := map[string]int{}
	for _, label := range rosterPositions {
		counts[label]++
	}

	seen := map[string]int{}
	labels := make([]string, len(rosterPositions))
	for i, label := range rosterPositions {
		if label == "BN" || label == "IR" || counts[label] == 1 {
			labels[i] = label
			continue
		}
		seen[label]++
		labels[i] = fmt.Sprintf("%s%d", label, seen[label])
	}
	return labels
}
