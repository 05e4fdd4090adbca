package pkg

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/diagnosis-service/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to REDIS_URL. It returns nil, nil when caching is disabled.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return client, nil
}
