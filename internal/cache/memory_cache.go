package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/sharp-lines-service/internal/clock"
	"github.com/cypherlabdev/sharp-lines-service/internal/models"
)

// MemoryCache caches live lines per date and category in process memory
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	clock   clock.Clock
	logger  zerolog.Logger
}

type memoryEntry struct {
	lines     []models.GameLine
	expiresAt time.Time
}

// NewMemoryCache creates an in-process cache. A zero ttl uses DefaultTTL.
func NewMemoryCache(ttl time.Duration, clk clock.Clock, logger zerolog.Logger) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		clock:   clk,
		logger:  logger.With().Str("component", "memory_cache").Logger(),
	}
}

// Get returns the cached lines for date and category, or ErrMiss
func (c *MemoryCache) Get(ctx context.Context, date, category string) ([]models.GameLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := entryKey(date, category)
	e, ok := c.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, ErrMiss
	}
	return cloneLines(e.lines), nil
}

// Set caches lines for date and category for the configured TTL. Expired
// entries are dropped on the way.
func (c *MemoryCache) Set(ctx context.Context, date, category string, lines []models.GameLine) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.entries[entryKey(date, category)] = memoryEntry{
		lines:     cloneLines(lines),
		expiresAt: now.Add(c.ttl),
	}

	c.logger.Debug().
		Str("date", date).
		Str("category", category).
		Int("count", len(lines)).
		Dur("ttl", c.ttl).
		Msg("cached live lines")

	return nil
}

// Ping always succeeds
func (c *MemoryCache) Ping(ctx context.Context) error {
	return nil
}

// Close drops every entry
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
	return nil
}
