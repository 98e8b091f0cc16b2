package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/sharp-lines-service/internal/models"
)

const testDate = "2024-01-15"

// testRedisCacheSetup is a helper struct to hold test dependencies
type testRedisCacheSetup struct {
	cache     *RedisCache
	miniRedis *miniredis.Miniredis
	ctx       context.Context
}

// setupTestRedisCache creates a test cache with miniredis
func setupTestRedisCache(t *testing.T) *testRedisCacheSetup {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	config := RedisCacheConfig{
		Addr: mr.Addr(),
		TTL:  5 * time.Minute,
	}

	return &testRedisCacheSetup{
		cache:     NewRedisCache(config, zerolog.Nop()),
		miniRedis: mr,
		ctx:       context.Background(),
	}
}

// cleanup cleans up test resources
func (s *testRedisCacheSetup) cleanup() {
	s.cache.Close()
	s.miniRedis.Close()
}

func testLines() []models.GameLine {
	side := models.SideAway
	return []models.GameLine{
		{
			ID:            "evt-1",
			Category:      "nba",
			Home:          "Los Angeles Lakers",
			Away:          "Boston Celtics",
			SpreadHome:    models.Float(-2.5),
			SpreadAway:    models.Float(2.5),
			Total:         models.Float(230.5),
			PublicHomePct: models.Int(68),
			SharpSide:     &side,
			RLMSide:       true,
			SnapshotLabel: models.LabelLive,
		},
		{ID: "evt-2", Category: "nba", Home: "Miami Heat", Away: "Chicago Bulls"},
	}
}

// TestNewRedisCache tests cache creation
func TestNewRedisCache(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	assert.NotNil(t, setup.cache)
	assert.NotNil(t, setup.cache.client)
	assert.Equal(t, 5*time.Minute, setup.cache.ttl)
}

// TestNewRedisCache_DefaultTTL tests that a zero TTL falls back to the default
func TestNewRedisCache_DefaultTTL(t *testing.T) {
	c := NewRedisCache(RedisCacheConfig{Addr: "localhost:0"}, zerolog.Nop())
	defer c.Close()

	assert.Equal(t, DefaultTTL, c.ttl)
}

// TestRedisSet_Success tests successful line caching
func TestRedisSet_Success(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	err := setup.cache.Set(setup.ctx, testDate, "nba", testLines())
	require.NoError(t, err)

	assert.True(t, setup.miniRedis.Exists("lines:live:2024-01-15:nba"))
	assert.Equal(t, 5*time.Minute, setup.miniRedis.TTL("lines:live:2024-01-15:nba"))
}

// TestRedisSet_ContextCanceled tests that a cancelled context fails the write
func TestRedisSet_ContextCanceled(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	ctx, cancel := context.WithCancel(setup.ctx)
	cancel()

	err := setup.cache.Set(ctx, testDate, "nba", testLines())
	assert.Error(t, err)
}

// TestRedisGet_Success tests retrieving cached lines
func TestRedisGet_Success(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	require.NoError(t, setup.cache.Set(setup.ctx, testDate, "nba", testLines()))

	lines, err := setup.cache.Get(setup.ctx, testDate, "nba")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "evt-1", lines[0].ID)
	assert.Equal(t, -2.5, *lines[0].SpreadHome)
	assert.Equal(t, 68, *lines[0].PublicHomePct)
	require.NotNil(t, lines[0].SharpSide)
	assert.Equal(t, models.SideAway, *lines[0].SharpSide)
	assert.True(t, lines[0].RLMSide)
	assert.Nil(t, lines[1].SpreadHome)
}

// TestRedisGet_NotFound tests the miss path
func TestRedisGet_NotFound(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	lines, err := setup.cache.Get(setup.ctx, testDate, "nfl")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Nil(t, lines)
}

// TestRedisGet_ExpiredKey tests that entries expire after the TTL
func TestRedisGet_ExpiredKey(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	require.NoError(t, setup.cache.Set(setup.ctx, testDate, "nba", testLines()))

	setup.miniRedis.FastForward(4 * time.Minute)
	_, err := setup.cache.Get(setup.ctx, testDate, "nba")
	require.NoError(t, err)

	setup.miniRedis.FastForward(2 * time.Minute)
	_, err = setup.cache.Get(setup.ctx, testDate, "nba")
	assert.ErrorIs(t, err, ErrMiss)
}

// TestRedisGet_CorruptValue tests that an unparseable value is an error, not a miss
func TestRedisGet_CorruptValue(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	require.NoError(t, setup.miniRedis.Set("lines:live:2024-01-15:nba", "not json"))

	_, err := setup.cache.Get(setup.ctx, testDate, "nba")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
	assert.Contains(t, err.Error(), "failed to unmarshal lines")
}

// TestRedisSet_EmptyCollection tests that an empty result is cached as empty, not absent
func TestRedisSet_EmptyCollection(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	require.NoError(t, setup.cache.Set(setup.ctx, testDate, "nhl", nil))

	lines, err := setup.cache.Get(setup.ctx, testDate, "nhl")
	require.NoError(t, err)
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
}

// TestRedisPing_Success tests health check
func TestRedisPing_Success(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	assert.NoError(t, setup.cache.Ping(setup.ctx))
}

// TestRedisPing_RedisDown tests health check with Redis unavailable
func TestRedisPing_RedisDown(t *testing.T) {
	setup := setupTestRedisCache(t)
	setup.miniRedis.Close()

	err := setup.cache.Ping(setup.ctx)
	assert.Error(t, err)

	setup.cache.Close()
}

// TestRedisCache_ConcurrentAccess tests concurrent writers and readers on distinct categories
func TestRedisCache_ConcurrentAccess(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			category := fmt.Sprintf("league-%d", i)
			assert.NoError(t, setup.cache.Set(setup.ctx, testDate, category, testLines()))
			lines, err := setup.cache.Get(setup.ctx, testDate, category)
			assert.NoError(t, err)
			assert.Len(t, lines, 2)
		}(i)
	}
	wg.Wait()
}

// TestRedisCache_ScopedByDate tests that entries are keyed by date and category
func TestRedisCache_ScopedByDate(t *testing.T) {
	setup := setupTestRedisCache(t)
	defer setup.cleanup()

	require.NoError(t, setup.cache.Set(setup.ctx, testDate, "nba", testLines()))

	_, err := setup.cache.Get(setup.ctx, "2024-01-16", "nba")
	assert.ErrorIs(t, err, ErrMiss)
	assert.False(t, setup.miniRedis.Exists("lines:live:nba"))
	assert.True(t, setup.miniRedis.Exists("lines:live:2024-01-15:nba"))
}
