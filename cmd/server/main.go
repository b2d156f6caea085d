package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rosterlab/lineup-service/internal/api/handlers"
	"github.com/rosterlab/lineup-service/internal/optimizer"
	"github.com/rosterlab/lineup-service/internal/providers"
	"github.com/rosterlab/lineup-service/internal/storage"
	"github.com/rosterlab/lineup-service/internal/websocket"
	"github.com/rosterlab/lineup-service/pkg/cache"
	"github.com/rosterlab/lineup-service/pkg/config"
	"github.com/rosterlab/lineup-service/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	structuredLogger := logger.InitLogger("info", cfg.IsDevelopment())
	logger.WithService("lineup-service").WithFields(logrus.Fields{
		"version":     "1.0.0",
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("Starting Lineup Service")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Database holds preferences and the run audit log; the service can
	// run without it in a degraded mode.
	var db *storage.DB
	var prefStore *storage.PreferenceStore
	var runStore *storage.RunStore
	db, err = storage.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logger.WithService("lineup-service").WithError(err).Warn("Database unavailable, preferences and run history disabled")
		db = nil
	} else {
		defer db.Close()
		prefStore = storage.NewPreferenceStore(db, cfg.DefaultMinImprovementPct)
		runStore = storage.NewRunStore(db)
	}

	// Redis backs the upstream fetch cache. Optimization still works
	// without it; every call then hits the Sleeper API directly.
	var fetchCache *cache.FetchCacheService
	var redisClient *redis.Client
	if opt, err := redis.ParseURL(cfg.RedisURL); err != nil {
		logger.WithService("lineup-service").WithError(err).Warn("Invalid Redis URL, fetch cache disabled")
	} else {
		redisClient = redis.NewClient(opt)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.WithService("lineup-service").WithError(err).Warn("Redis unavailable, fetch cache disabled")
			redisClient.Close()
			redisClient = nil
		} else {
			defer redisClient.Close()
			fetchCache = cache.NewFetchCacheService(redisClient, structuredLogger)
		}
	}

	sleeperClient := providers.NewSleeperClient(
		cfg.SleeperBaseURL,
		cfg.ExternalAPITimeout,
		fetchCache,
		cfg.ProjectionCacheTTL,
		structuredLogger,
	)

	engine := optimizer.NewEngine(
		sleeperClient,
		sleeperClient,
		sleeperClient,
		sleeperClient,
		cfg.WaiverMarginPoints,
		structuredLogger,
	)

	wsHub := websocket.NewHub(structuredLogger)
	go wsHub.Run()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	var prefProvider optimizer.UserPreferenceProvider
	if prefStore != nil {
		prefProvider = prefStore
	}
	lineupHandler := handlers.NewLineupHandler(
		engine,
		sleeperClient,
		prefProvider,
		runStore,
		wsHub,
		cfg,
		structuredLogger,
	)
	healthHandler := handlers.NewHealthHandler(db, redisClient, wsHub, structuredLogger)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/lineup/optimize", lineupHandler.OptimizeLineup)
		apiV1.POST("/waivers/recommendations", lineupHandler.GetWaiverRecommendations)
		apiV1.GET("/leagues/:league_id/runs", lineupHandler.GetRecentRuns)

		if prefStore != nil {
			preferenceHandler := handlers.NewPreferenceHandler(prefStore, structuredLogger)
			apiV1.GET("/users/:user_id/preferences", preferenceHandler.GetPreferences)
			apiV1.PUT("/users/:user_id/preferences", preferenceHandler.UpdatePreferences)
		}
	}

	// WebSocket endpoint for lineup update pushes
	router.GET("/ws/lineup-updates/:user_id", wsHub.HandleWebSocket)

	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)
	router.GET("/metrics", healthHandler.GetMetrics)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		logger.WithService("lineup-service").WithField("port", cfg.Port).Info("Lineup service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithService("lineup-service").Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.WithService("lineup-service").Info("Shutting down lineup service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithService("lineup-service").Fatalf("Lineup service forced to shutdown: %v", err)
	}

	logger.WithService("lineup-service").Info("Lineup service exited")
}
