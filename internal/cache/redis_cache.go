package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

type CacheService interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
}

// Key prefixes used by the diagnosis service.
const (
	CatalogKey   = "diagnosis:catalog"
	resultPrefix = "diagnosis:result:"
)

// ResultKey scopes a cached result to its owner.
func ResultKey(userID string, resultID int64) string {
	return fmt.Sprintf("%s%s:%d", resultPrefix, userID, resultID)
}

// UserResultsPattern matches every cached result of a user.
func UserResultsPattern(userID string) string {
	return resultPrefix + userID + ":*"
}

type redisCache struct {
	client *redis.Client
	logger *slog.Logger
}

// Values are stored as JSON.
func (r *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	r.logger.DebugContext(ctx, "Cache set", "key", key, "ttl", ttl)
	return nil
}

func (r *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// An undecodable entry is as good as absent.
		r.logger.WarnContext(ctx, "Dropping undecodable cache entry", "key", key, "error", err)
		_ = r.client.Del(ctx, key).Err()
		return ErrCacheMiss
	}
	return nil
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

func (r *redisCache) DeletePattern(ctx context.Context, pattern string) error {
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("cache scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache delete %s: %w", pattern, err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	r.logger.DebugContext(ctx, "Cache pattern deleted", "pattern", pattern, "keys", deleted)
	return nil
}

func NewRedisCache(client *redis.Client, logger *slog.Logger) CacheService {
	return &redisCache{
		client: client,
		logger: logger,
	}
}
