package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rosterlab/lineup-service/internal/optimizer"
	"github.com/rosterlab/lineup-service/internal/storage"
	"github.com/rosterlab/lineup-service/internal/websocket"
	"github.com/rosterlab/lineup-service/pkg/config"
	"github.com/rosterlab/lineup-service/pkg/logger"
)

// LineupHandler serves lineup optimization and waiver recommendation
// endpoints.
type LineupHandler struct {
	engine  *optimizer.Engine
	rosters optimizer.RosterProvider
	prefs   optimizer.UserPreferenceProvider
	runs    *storage.RunStore
	wsHub   *websocket.Hub
	config  *config.Config
	logger  *logrus.Logger
}

// NewLineupHandler creates a new lineup handler. runs may be nil when no
// database is configured; audit rows are then skipped.
func NewLineupHandler(
	engine *optimizer.Engine,
	rosters optimizer.RosterProvider,
	prefs optimizer.UserPreferenceProvider,
	runs *storage.RunStore,
	wsHub *websocket.Hub,
	cfg *config.Config,
	logger *logrus.Logger,
) *LineupHandler {
	return &LineupHandler{
		engine:  engine,
		rosters: rosters,
		prefs:   prefs,
		runs:    runs,
		wsHub:   wsHub,
		config:  cfg,
		logger:  logger,
	}
}

// OptimizeLineupRequest is the request body for POST /lineup/optimize.
// MinImprovementPct is optional; when absent the user's saved preference
// (or the service default) applies.
type OptimizeLineupRequest struct {
	LeagueID          string   `json:"league_id" binding:"required"`
	UserID            string   `json:"user_id" binding:"required"`
	Week              int      `json:"week" binding:"required,min=1,max=18"`
	Year              int      `json:"year" binding:"required,min=2000"`
	ScoringFormat     string   `json:"scoring_format"`
	MinImprovementPct *float64 `json:"min_improvement_pct"`
}

// OptimizeLineup handles lineup optimization requests.
func (h *LineupHandler) OptimizeLineup(c *gin.Context) {
	var req OptimizeLineupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	ctx := c.Request.Context()
	roster, err := h.rosters.Roster(ctx, req.LeagueID, req.UserID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch roster")
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: "Failed to fetch roster",
			Code:  "UPSTREAM_ERROR",
		})
		return
	}

	threshold, err := h.resolveThreshold(c, req.UserID, req.MinImprovementPct)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to load user preference, using default")
		threshold = h.config.DefaultMinImprovementPct
	}

	result, err := h.engine.OptimizeLineup(ctx, optimizer.OptimizeRequest{
		LeagueID:          req.LeagueID,
		Roster:            roster,
		Week:              req.Week,
		Year:              req.Year,
		Format:            optimizer.ScoringFormat(req.ScoringFormat),
		MinImprovementPct: threshold,
	})
	if err != nil {
		h.respondOptimizeError(c, err)
		return
	}

	h.recordRun(c, &req, result)

	h.wsHub.NotifyUser(req.UserID, websocket.LineupUpdate{
		Type:     "lineup_optimized",
		LeagueID: req.LeagueID,
		Week:     req.Week,
		Payload:  result,
	})

	logger.WithOptimizationContext(result.OptimizationID, req.LeagueID, req.Week).WithFields(logrus.Fields{
		"user_id":     req.UserID,
		"changes":     len(result.Changes),
		"improvement": result.Improvement,
	}).Info("Lineup optimization completed")

	c.JSON(http.StatusOK, result)
}

// WaiverRecommendationsRequest is the request body for POST
// /waivers/recommendations.
type WaiverRecommendationsRequest struct {
	LeagueID      string `json:"league_id" binding:"required"`
	UserID        string `json:"user_id" binding:"required"`
	Week          int    `json:"week" binding:"required,min=1,max=18"`
	Year          int    `json:"year" binding:"required,min=2000"`
	ScoringFormat string `json:"scoring_format"`
	Limit         int    `json:"limit"`
}

// GetWaiverRecommendations handles waiver wire recommendation requests.
func (h *LineupHandler) GetWaiverRecommendations(c *gin.Context) {
	var req WaiverRecommendationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	ctx := c.Request.Context()
	roster, err := h.rosters.Roster(ctx, req.LeagueID, req.UserID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch roster")
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: "Failed to fetch roster",
			Code:  "UPSTREAM_ERROR",
		})
		return
	}

	limit := req.Limit
	if limit <= 0 || limit > h.config.MaxWaiverResults {
		limit = h.config.MaxWaiverResults
	}

	recommendations, err := h.engine.GetWaiverRecommendations(
		ctx,
		req.LeagueID,
		roster,
		req.Week,
		req.Year,
		limit,
		optimizer.ScoringFormat(req.ScoringFormat),
	)
	if err != nil {
		h.respondOptimizeError(c, err)
		return
	}

	h.wsHub.NotifyUser(req.UserID, websocket.LineupUpdate{
		Type:     "waiver_recommendations",
		LeagueID: req.LeagueID,
		Week:     req.Week,
		Payload:  recommendations,
	})

	logger.WithWaiverContext(req.LeagueID, req.Week).WithFields(logrus.Fields{
		"user_id":         req.UserID,
		"recommendations": len(recommendations),
	}).Info("Waiver recommendations delivered")

	c.JSON(http.StatusOK, gin.H{
		"league_id":       req.LeagueID,
		"week":            req.Week,
		"recommendations": recommendations,
	})
}

// GetRecentRuns returns the most recent optimization runs for a league.
func (h *LineupHandler) GetRecentRuns(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusNotImplemented, ErrorResponse{
			Error: "Run history requires a configured database",
			Code:  "NOT_CONFIGURED",
		})
		return
	}

	leagueID := c.Param("league_id")
	runs, err := h.runs.RecentForLeague(c.Request.Context(), leagueID, 20)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load optimization runs")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to load optimization runs",
			Code:  "STORAGE_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"league_id": leagueID,
		"runs":      runs,
	})
}

func (h *LineupHandler) resolveThreshold(c *gin.Context, userID string, explicit *float64) (float64, error) {
	if explicit != nil {
		return *explicit, nil
	}
	if h.prefs == nil {
		return h.config.DefaultMinImprovementPct, nil
	}
	return h.prefs.MinImprovementPct(c.Request.Context(), userID)
}

func (h *LineupHandler) recordRun(c *gin.Context, req *OptimizeLineupRequest, result *optimizer.OptimizationResult) {
	if h.runs == nil {
		return
	}
	run := &storage.OptimizationRun{
		OptimizationID:        result.OptimizationID,
		LeagueID:              req.LeagueID,
		UserID:                req.UserID,
		Week:                  req.Week,
		Year:                  req.Year,
		ScoringFormat:         req.ScoringFormat,
		ProjectedPoints:       result.ProjectedPoints,
		CurrentPoints:         result.CurrentPoints,
		Improvement:           result.Improvement,
		ActionableImprovement: result.ActionableImprovement,
		ChangeCount:           len(result.Changes),
		CreatedAt:             time.Now().UTC(),
	}
	if err := h.runs.Record(c.Request.Context(), run); err != nil {
		h.logger.WithError(err).Warn("Failed to record optimization run")
	}
}

func (h *LineupHandler) respondOptimizeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, optimizer.ErrNoTeamData):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: "No roster data available for this team",
			Code:  "NO_TEAM_DATA",
		})
	case errors.Is(err, optimizer.ErrNoProjections):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: "No projections available for this week",
			Code:  "NO_PROJECTIONS",
		})
	case errors.Is(err, optimizer.ErrInvalidLineupRequirements):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: "League lineup requirements could not be determined",
			Code:  "INVALID_LINEUP_REQUIREMENTS",
		})
	default:
		h.logger.WithError(err).Error("Lineup optimization failed")
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: "Lineup optimization failed",
			Code:  "OPTIMIZATION_ERROR",
			Details: map[string]string{
				"error": err.Error(),
			},
		})
	}
}
