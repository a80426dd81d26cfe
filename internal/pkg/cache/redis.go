package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"sportiq/internal/pkg/models"
)

// RedisCache stores fetch results in Redis so several bot instances can
// share one freshness window.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, sport, date string) ([]*models.Game, bool) {
	data, err := c.client.Get(ctx, "games:"+cacheKey(sport, date)).Result()
	if err != nil {
		return nil, false
	}

	var games []*models.Game
	if err := json.Unmarshal([]byte(data), &games); err != nil {
		slog.Warn("Dropping unreadable cache entry", "sport", sport, "date", date, "error", err)
		return nil, false
	}
	return games, true
}

func (c *RedisCache) Set(ctx context.Context, sport, date string, games []*models.Game) {
	data, err := json.Marshal(games)
	if err != nil {
		slog.Warn("Failed to marshal games for cache", "sport", sport, "error", err)
		return
	}
	if err := c.client.Set(ctx, "games:"+cacheKey(sport, date), data, c.ttl).Err(); err != nil {
		slog.Warn("Failed to store games in Redis", "sport", sport, "error", err)
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
