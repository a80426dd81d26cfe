package cache

import (
	"context"
	"sync"
	"time"

	"sportiq/internal/pkg/models"
)

// GameCache memoizes fetch results for a (sport, date) key within a
// freshness window, bounding upstream request rate.
type GameCache interface {
	Get(ctx context.Context, sport, date string) ([]*models.Game, bool)
	Set(ctx context.Context, sport, date string, games []*models.Game)
}

func cacheKey(sport, date string) string {
	return sport + "_" + date
}

type memoryEntry struct {
	games    []*models.Game
	storedAt time.Time
}

// MemoryCache is an in-process TTL cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, sport, date string) ([]*models.Game, bool) {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey(sport, date)]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		return nil, false
	}
	return entry.games, true
}

func (c *MemoryCache) Set(_ context.Context, sport, date string, games []*models.Game) {
	c.mu.Lock()
	c.entries[cacheKey(sport, date)] = memoryEntry{games: games, storedAt: c.now()}
	c.mu.Unlock()
}
