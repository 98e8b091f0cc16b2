package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cypherlabdev/sharp-lines-service/internal/cache"
	"github.com/cypherlabdev/sharp-lines-service/internal/clock"
	"github.com/cypherlabdev/sharp-lines-service/internal/mocks"
	"github.com/cypherlabdev/sharp-lines-service/internal/models"
	"github.com/cypherlabdev/sharp-lines-service/internal/store"
	"github.com/cypherlabdev/sharp-lines-service/pkg/detector"
	"github.com/cypherlabdev/sharp-lines-service/pkg/estimator"
	"github.com/cypherlabdev/sharp-lines-service/pkg/normalizer"
)

const testDate = "2024-01-15"

// testServiceSetup is a helper struct to hold test dependencies
type testServiceSetup struct {
	query         *QueryService
	ingestion     *IngestionService
	mockProvider  *mocks.MockOddsProvider
	mockPublisher *mocks.MockAlertPublisher
	store         *store.FileStore
	cache         *cache.MemoryCache
	clock         *clock.Fake
	ctx           context.Context
}

// setupTestServices wires both services over a temp-dir store, an in-memory
// cache and a mocked provider tracking nba and nhl
func setupTestServices(t *testing.T, credential bool) *testServiceSetup {
	ctrl := gomock.NewController(t)
	mockProvider := mocks.NewMockOddsProvider(ctrl)
	mockPublisher := mocks.NewMockAlertPublisher(ctrl)

	mockProvider.EXPECT().Categories().Return([]string{"nba", "nhl"}).AnyTimes()
	mockProvider.EXPECT().HasCredential().Return(credential).AnyTimes()

	logger := zerolog.Nop()
	clk := clock.NewFake(time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC))

	fileStore, err := store.NewFileStore(t.TempDir(), clk, logger)
	require.NoError(t, err)
	liveCache := cache.NewMemoryCache(5*time.Minute, clk, logger)

	pipeline := NewPipeline(
		mockProvider,
		normalizer.NewNormalizer(nil, logger),
		estimator.NewEstimator(models.DefaultEstimationParams(), estimator.FixedSource(0.5), logger),
		clk,
		logger,
	)
	det := detector.NewDetector(models.DefaultDetectionParams(), logger)

	return &testServiceSetup{
		query:         NewQueryService(pipeline, mockProvider, fileStore, liveCache, det, clk, logger),
		ingestion:     NewIngestionService(pipeline, mockProvider, fileStore, det, mockPublisher, clk, logger),
		mockProvider:  mockProvider,
		mockPublisher: mockPublisher,
		store:         fileStore,
		cache:         liveCache,
		clock:         clk,
		ctx:           context.Background(),
	}
}

// event builds a single-book provider event. FixedSource(0.5) puts Over at 59%,
// and a home spread of -3.5 gives home 60%.
func event(id, home, away string, spreadHome, total float64) models.OddsEvent {
	return models.OddsEvent{
		ID:           id,
		SportKey:     "basketball_nba",
		HomeTeam:     home,
		AwayTeam:     away,
		CommenceTime: time.Date(2024, 1, 16, 0, 30, 0, 0, time.UTC),
		Bookmakers: []models.Bookmaker{
			{
				Key: "draftkings",
				Markets: []models.Market{
					{Key: models.MarketSpreads, Outcomes: []models.Outcome{
						{Name: home, Price: -110, Point: models.Float(spreadHome)},
						{Name: away, Price: -110, Point: models.Float(-spreadHome)},
					}},
					{Key: models.MarketTotals, Outcomes: []models.Outcome{
						{Name: models.OutcomeOver, Price: -110, Point: models.Float(total)},
						{Name: models.OutcomeUnder, Price: -110, Point: models.Float(total)},
					}},
					{Key: models.MarketH2H, Outcomes: []models.Outcome{
						{Name: home, Price: -160},
						{Name: away, Price: 140},
					}},
				},
			},
		},
	}
}

func lakers(spreadHome, total float64) models.OddsEvent {
	return event("evt-1", "Los Angeles Lakers", "Boston Celtics", spreadHome, total)
}

func bruins(spreadHome, total float64) models.OddsEvent {
	return event("evt-2", "Boston Bruins", "Toronto Maple Leafs", spreadHome, total)
}
