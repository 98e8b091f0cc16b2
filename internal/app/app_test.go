package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/sharp-lines-service/internal/cache"
	"github.com/cypherlabdev/sharp-lines-service/internal/clock"
	"github.com/cypherlabdev/sharp-lines-service/internal/config"
	"github.com/cypherlabdev/sharp-lines-service/internal/models"
	"github.com/cypherlabdev/sharp-lines-service/internal/scheduler"
	"github.com/cypherlabdev/sharp-lines-service/internal/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Setenv("ODDS_API_KEY", "")
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Store.DataDir = t.TempDir()
	return cfg
}

func TestNew_MemoryBackend(t *testing.T) {
	cfg := testConfig(t)
	clk := clock.NewFake(time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC))

	a, err := New(context.Background(), cfg, clk, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &cache.MemoryCache{}, a.Cache)
	assert.Nil(t, a.Publisher)
	assert.False(t, a.Provider.HasCredential())
	assert.Equal(t, []string{"cbb", "nba", "nhl"}, a.Query.Categories())

	// Without a credential ingestion is skipped rather than failed
	report, err := a.Ingestion.Run(context.Background(), models.LabelOpening)
	require.NoError(t, err)
	assert.True(t, report.Skipped)
}

func TestNew_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.Cache.Backend = "redis"
	cfg.Cache.Redis.Addr = mr.Addr()

	a, err := New(context.Background(), cfg, clock.Real{}, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &cache.RedisCache{}, a.Cache)
}

func TestNew_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(t)
	cfg.Cache.Backend = "redis"
	cfg.Cache.Redis.Addr = addr

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, err := New(ctx, cfg, clock.Real{}, zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, a)
}

func TestNew_KafkaEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Kafka.Enabled = true

	a, err := New(context.Background(), cfg, clock.Real{}, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Publisher)
}

func TestRouter_ServesHealthAndSports(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), clock.Real{}, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	router := a.Router(nil)

	for _, path := range []string{"/health", "/ready", "/api/v1/sports"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestScheduleIngestion(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(context.Background(), cfg, clock.Real{}, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.ScheduleIngestion(scheduler.New(zerolog.Nop())))

	a.Config.Ingestion.Schedules = map[string]string{models.LabelLatest: "not a schedule"}
	err = a.ScheduleIngestion(scheduler.New(zerolog.Nop()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), service.NewIngestionJob(a.Ingestion, models.LabelLatest, 0).Name())
}
