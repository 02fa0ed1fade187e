// Package redis mirrors advisory presence state into Redis. The hub and the
// users table stay authoritative; everything here is best-effort and safe to
// lose.
package redis

import (
	"context"
	"fmt"
	"time"

	"recruithub/config"

	"github.com/redis/go-redis/v9"
)

// NewClient connects and pings. Returns an error rather than a lazily broken
// client so startup fails loudly when Redis is enabled but unreachable.
func NewClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}
