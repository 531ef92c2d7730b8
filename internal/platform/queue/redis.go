package queue

import (
	"contest_hub/internal/platform/config"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// ClientOptions maps the Redis settings of cfg onto client options.
func ClientOptions(cfg *config.Config) *redis.Options {
	return &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

// ConnectRedis dials the Redis server named by cfg and checks it answers. The caller owns the client.
func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(ClientOptions(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
	}
	log.Printf("INFO: Connected to Redis at %s (db %d)", cfg.RedisAddr, cfg.RedisDB)
	return rdb, nil
}
