package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// FetchCacheService caches upstream weekly fetches (projections, game
// status, free-agent pools) so repeated optimize calls inside one window
// do not hammer the external API. The optimizer itself never caches;
// this sits entirely inside the collaborator layer.
type FetchCacheService struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewFetchCacheService creates a new fetch cache service
func NewFetchCacheService(client *redis.Client, logger *logrus.Logger) *FetchCacheService {
	return &FetchCacheService{
		client: client,
		logger: logger,
	}
}

// Set stores a JSON-encoded value under a namespaced key.
func (c *FetchCacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	fullKey := fmt.Sprintf("fetch:%s", key)
	if err := c.client.Set(ctx, fullKey, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set cache value: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":  fullKey,
		"expiration": expiration,
	}).Debug("Cached upstream fetch")

	return nil
}

// Get loads a JSON-encoded value into dest. Returns redis.Nil via a
// wrapped error when the key is absent.
func (c *FetchCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	fullKey := fmt.Sprintf("fetch:%s", key)
	data, err := c.client.Get(ctx, fullKey).Result()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("cache miss for %s: %w", fullKey, err)
		}
		return fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	c.logger.WithField("cache_key", fullKey).Debug("Upstream fetch served from cache")
	return nil
}

// Delete removes a cached fetch.
func (c *FetchCacheService) Delete(ctx context.Context, key string) error {
	fullKey := fmt.Sprintf("fetch:%s", key)
	if err := c.client.Del(ctx, fullKey).Err(); err != nil {
		return fmt.Errorf("failed to delete cache value: %w", err)
	}
	return nil
}

// GetStatus returns cache statistics for the metrics endpoint.
func (c *FetchCacheService) GetStatus(ctx context.Context) map[string]interface{} {
	status := map[string]interface{}{
		"service":   "fetch-cache",
		"timestamp": time.Now(),
		"connected": true,
	}

	if dbSize := c.client.DBSize(ctx); dbSize.Err() == nil {
		status["db_size"] = dbSize.Val()
	}
	if keys, err := c.client.Keys(ctx, "fetch:*").Result(); err == nil {
		status["fetch_keys"] = len(keys)
	}

	return status
}
