package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/config"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/logger"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/model"
)

const statsKeyPrefix = "stats:course:"

// StatsCache keeps statistics snapshots in Redis. Aggregation runs
// concurrently with ingestion and a slightly stale snapshot is acceptable;
// ingestion drops the key after commit and the TTL bounds staleness when
// invalidation is missed.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewStatsCache(redisClient *RedisClient, cfg *config.Config) *StatsCache {
	ttl := cfg.Redis.StatsTTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &StatsCache{
		client: redisClient.Client(),
		ttl:    ttl,
		log:    logger.Get(),
	}
}

func (c *StatsCache) Get(ctx context.Context, courseID string) (*model.CourseStatistics, bool) {
	data, err := c.client.Get(ctx, statsKeyPrefix+courseID).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("course_id", courseID).Msg("Stats cache read failed")
		}
		return nil, false
	}

	var stats model.CourseStatistics
	if err := json.Unmarshal(data, &stats); err != nil {
		c.log.Warn().Err(err).Str("course_id", courseID).Msg("Stats cache entry corrupt, dropping")
		c.client.Del(ctx, statsKeyPrefix+courseID)
		return nil, false
	}
	return &stats, true
}

func (c *StatsCache) Set(ctx context.Context, courseID string, stats *model.CourseStatistics) {
	data, err := json.Marshal(stats)
	if err != nil {
		c.log.Warn().Err(err).Str("course_id", courseID).Msg("Failed to marshal stats snapshot")
		return
	}
	if err := c.client.Set(ctx, statsKeyPrefix+courseID, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("course_id", courseID).Msg("Stats cache write failed")
	}
}

func (c *StatsCache) Invalidate(ctx context.Context, courseID string) error {
	return c.client.Del(ctx, statsKeyPrefix+courseID).Err()
}
