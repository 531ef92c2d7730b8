package repository

import (
	"contest_hub/internal/domain/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache holds the last computed leaderboard.
type LeaderboardCache interface {
	Get(ctx context.Context) ([]model.LeaderboardEntry, bool, error)
	Set(ctx context.Context, entries []model.LeaderboardEntry) error
	Invalidate(ctx context.Context) error
}

const leaderboardCacheKey = "contest_hub:leaderboard"

type redisLeaderboardCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLeaderboardCache(rdb *redis.Client, ttl time.Duration) LeaderboardCache {
	return &redisLeaderboardCache{rdb: rdb, ttl: ttl}
}

func (c *redisLeaderboardCache) Get(ctx context.Context) ([]model.LeaderboardEntry, bool, error) {
	raw, err := c.rdb.Get(ctx, leaderboardCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redisLeaderboardCache.Get: %w", err)
	}
	var entries []model.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, fmt.Errorf("redisLeaderboardCache.Get decode: %w", err)
	}
	return entries, true, nil
}

func (c *redisLeaderboardCache) Set(ctx context.Context, entries []model.LeaderboardEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("redisLeaderboardCache.Set encode: %w", err)
	}
	if err := c.rdb.Set(ctx, leaderboardCacheKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redisLeaderboardCache.Set: %w", err)
	}
	return nil
}

func (c *redisLeaderboardCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, leaderboardCacheKey).Err(); err != nil {
		return fmt.Errorf("redisLeaderboardCache.Invalidate: %w", err)
	}
	return nil
}
