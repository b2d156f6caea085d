package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rosterlab/lineup-service/internal/storage"
)

// PreferenceHandler serves the per-user optimizer settings endpoints.
type PreferenceHandler struct {
	store  *storage.PreferenceStore
	logger *logrus.Logger
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(store *storage.PreferenceStore, logger *logrus.Logger) *PreferenceHandler {
	return &PreferenceHandler{store: store, logger: logger}
}

// GetPreferences returns the user's saved threshold, falling back to the
// service default.
func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	userID := c.Param("user_id")
	pct, err := h.store.MinImprovementPct(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load user preference")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to load user preference",
			Code:  "STORAGE_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":             userID,
		"min_improvement_pct": pct,
	})
}

type updatePreferencesRequest struct {
	MinImprovementPct *float64 `json:"min_improvement_pct" binding:"required"`
}

// UpdatePreferences saves the user's threshold.
func (h *PreferenceHandler) UpdatePreferences(c *gin.Context) {
	userID := c.Param("user_id")

	var req updatePreferencesRequest
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

	if err := h.store.SetMinImprovementPct(c.Request.Context(), userID, *req.MinImprovementPct); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_PREFERENCE",
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":             userID,
		"min_improvement_pct": *req.MinImprovementPct,
	}).Info("User preference updated")

	c.JSON(http.StatusOK, gin.H{
		"user_id":             userID,
		"min_improvement_pct": *req.MinImprovementPct,
	})
}
