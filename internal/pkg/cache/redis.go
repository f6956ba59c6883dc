package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/yigit/alumnihub/internal/app/models"
)

// NewRedisClient parses url, connects and pings
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.PoolTimeout = 30 * time.Second
	opts.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// StatsCache stores user stats summaries
type StatsCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserStats, bool)
	Set(ctx context.Context, stats *models.UserStats)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

const statsNamespace = "stats"

// RedisStatsCache keeps stats as JSON under stats:<user id>
type RedisStatsCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStatsCache creates a cache with the given entry lifetime
func NewRedisStatsCache(client redis.UniversalClient, ttl time.Duration, logger zerolog.Logger) *RedisStatsCache {
	return &RedisStatsCache{client: client, ttl: ttl, logger: logger}
}

func statsKey(userID uuid.UUID) string {
	return statsNamespace + ":" + userID.String()
}

// Get returns the cached stats. Misses and errors both report false.
func (c *RedisStatsCache) Get(ctx context.Context, userID uuid.UUID) (*models.UserStats, bool) {
	raw, err := c.client.Get(ctx, statsKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Stats cache read failed")
		}
		return nil, false
	}

	var stats models.UserStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		c.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Discarding corrupt stats cache entry")
		return nil, false
	}
	return &stats, true
}

// Set stores stats with the configured ttl
func (c *RedisStatsCache) Set(ctx context.Context, stats *models.UserStats) {
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statsKey(stats.UserID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("userID", stats.UserID.String()).Msg("Stats cache write failed")
	}
}

// Invalidate drops the cached stats of a user
func (c *RedisStatsCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := c.client.Del(ctx, statsKey(userID)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Stats cache invalidation failed")
	}
}

// NoopStatsCache never hits. Used when redis is disabled.
type NoopStatsCache struct{}

// Get implements StatsCache
func (NoopStatsCache) Get(context.Context, uuid.UUID) (*models.UserStats, bool) { return nil, false }

// Set implements StatsCache
func (NoopStatsCache) Set(context.Context, *models.UserStats) {}

// Invalidate implements StatsCache
func (NoopStatsCache) Invalidate(context.Context, uuid.UUID) {}
