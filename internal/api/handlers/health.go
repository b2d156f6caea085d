package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rosterlab/lineup-service/internal/storage"
	"github.com/rosterlab/lineup-service/internal/websocket"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db     *storage.DB
	redis  *redis.Client
	wsHub  *websocket.Hub
	logger *logrus.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(
	db *storage.DB,
	redisClient *redis.Client,
	wsHub *websocket.Hub,
	logger *logrus.Logger,
) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redisClient,
		wsHub:  wsHub,
		logger: logger,
	}
}

// GetHealth returns the basic health status
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := HealthStatus{
		Status:    "ok",
		Service:   "lineup-service",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	// Database is optional; without it preferences and run history degrade
	// but optimization still works.
	if h.db != nil {
		if err := h.db.HealthCheck(); err != nil {
			response.Status = "degraded"
			response.Checks["database"] = "failed: " + err.Error()
		} else {
			response.Checks["database"] = "ok"
		}
	} else {
		response.Checks["database"] = "not_configured"
	}

	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			response.Status = "degraded"
			response.Checks["redis"] = "failed: " + err.Error()
		} else {
			response.Checks["redis"] = "ok"
		}
	} else {
		response.Checks["redis"] = "not_configured"
	}

	statusCode := http.StatusOK
	if response.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}

	c.JSON(statusCode, response)
}

// GetReady returns the readiness status
func (h *HealthHandler) GetReady(c *gin.Context) {
	response := HealthStatus{
		Status:    "ready",
		Service:   "lineup-service",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	// The fetch cache is a soft dependency; the service stays ready and
	// calls upstream directly when redis is down.
	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			response.Checks["redis"] = "failed: " + err.Error()
		} else {
			response.Checks["redis"] = "ok"
		}
	}

	if h.db != nil {
		if err := h.db.HealthCheck(); err != nil {
			response.Checks["database"] = "failed: " + err.Error()
		} else {
			response.Checks["database"] = "ok"
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetMetrics returns service metrics
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	metrics := map[string]interface{}{
		"service":               "lineup-service",
		"timestamp":             time.Now(),
		"websocket_connections": h.wsHub.GetConnectionCount(),
	}

	if h.redis != nil {
		if dbSize, err := h.redis.DBSize(c.Request.Context()).Result(); err == nil {
			metrics["cache"] = map[string]interface{}{
				"total_keys": dbSize,
			}
		}
		if fetchKeys, err := h.redis.Keys(c.Request.Context(), "fetch:*").Result(); err == nil {
			metrics["fetch_cache"] = map[string]interface{}{
				"cached_fetches": len(fetchKeys),
			}
		}
	}

	if h.db != nil {
		if sqlDB, err := h.db.DB.DB(); err == nil {
			stats := sqlDB.Stats()
			metrics["database"] = map[string]interface{}{
				"open_connections": stats.OpenConnections,
				"in_use":           stats.InUse,
				"idle":             stats.Idle,
			}
		}
	}

	c.JSON(http.StatusOK, metrics)
}
