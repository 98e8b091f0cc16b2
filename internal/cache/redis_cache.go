package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/sharp-lines-service/internal/models"
)

const keyPrefix = "lines:live:"

// RedisCache caches live lines in Redis so several server instances share them
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// RedisCacheConfig holds Redis cache configuration
type RedisCacheConfig struct {
	Addr     string // e.g., "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // e.g., 5 * time.Minute
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(config RedisCacheConfig, logger zerolog.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ttl := config.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "redis_cache").Logger(),
	}
}

// Get returns the cached lines for date and category, or ErrMiss
func (c *RedisCache) Get(ctx context.Context, date, category string) ([]models.GameLine, error) {
	data, err := c.client.Get(ctx, keyPrefix+entryKey(date, category)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	} else if err != nil {
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	var lines []models.GameLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lines: %w", err)
	}
	if lines == nil {
		lines = []models.GameLine{}
	}

	return lines, nil
}

// Set caches lines for date and category with the configured TTL
func (c *RedisCache) Set(ctx context.Context, date, category string, lines []models.GameLine) error {
	if lines == nil {
		lines = []models.GameLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to marshal lines: %w", err)
	}

	key := keyPrefix + entryKey(date, category)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in Redis: %w", err)
	}

	c.logger.Debug().
		Str("key", key).
		Int("count", len(lines)).
		Dur("ttl", c.ttl).
		Msg("cached live lines")

	return nil
}

// Ping checks Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
