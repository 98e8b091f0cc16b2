package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cypherlabdev/sharp-lines-service/internal/models"
)

// TestIngestion_OpeningSnapshot tests that the first run of the day stores lines
// with no opening references and no signals
func TestIngestion_OpeningSnapshot(t *testing.T) {
	setup := setupTestServices(t, true)
	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nba").Return([]models.OddsEvent{lakers(-3.5, 230.5)}, nil)
	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nhl").Return([]models.OddsEvent{}, nil)

	report, err := setup.ingestion.Run(setup.ctx, models.LabelOpening)
	require.NoError(t, err)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", report.RunID.String())
	assert.Equal(t, testDate, report.Date)
	assert.Equal(t, "ok", report.Result())
	require.Len(t, report.Categories, 2)
	assert.Equal(t, IngestWritten, report.Categories[0].Status)
	assert.Equal(t, 1, report.Categories[0].Games)
	assert.Equal(t, 0, report.Categories[0].Alerts)
	assert.Equal(t, IngestWritten, report.Categories[1].Status)

	read := setup.store.ReadExact(setup.ctx, testDate, "nba", models.LabelOpening)
	require.True(t, read.Found())
	g := read.Lines()[0]
	assert.Equal(t, models.LabelOpening, g.SnapshotLabel)
	assert.Equal(t, 60, *g.PublicHomePct)
	assert.Nil(t, g.SpreadHomeOpen)
	assert.False(t, g.RLMSide)
	assert.False(t, g.SteamMove)

	empty := setup.store.ReadExact(setup.ctx, testDate, "nhl", models.LabelOpening)
	require.True(t, empty.Found())
	assert.Empty(t, empty.Lines())
}

// TestIngestion_DetectsAgainstOpening tests RLM and steam on a later snapshot and
// the alert batch published for it
func TestIngestion_DetectsAgainstOpening(t *testing.T) {
	setup := setupTestServices(t, true)
	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nba").Return([]models.OddsEvent{lakers(-3.5, 230.5)}, nil)
	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nhl").Return([]models.OddsEvent{}, nil).Times(2)
	_, err := setup.ingestion.Run(setup.ctx, models.LabelOpening)
	require.NoError(t, err)

	setup.clock.Advance(14 * time.Hour)
	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nba").Return([]models.OddsEvent{lakers(-2.5, 228.5)}, nil)

	var published *models.AlertBatchMessage
	setup.mockPublisher.EXPECT().
		PublishAlerts(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, batch *models.AlertBatchMessage) error {
			published = batch
			return nil
		})

	report, err := setup.ingestion.Run(setup.ctx, models.LabelMidday)
	require.NoError(t, err)
	assert.Equal(t, "ok", report.Result())

	read := setup.store.ReadExact(setup.ctx, testDate, "nba", models.LabelMidday)
	require.True(t, read.Found())
	g := read.Lines()[0]
	assert.Equal(t, -3.5, *g.SpreadHomeOpen)
	assert.Equal(t, 230.5, *g.TotalOpen)
	assert.Equal(t, -160, *g.MoneylineHomeOpen)
	assert.Equal(t, 59, *g.PublicHomePct)
	require.NotNil(t, g.SharpSide)
	assert.Equal(t, models.SideAway, *g.SharpSide)
	assert.True(t, g.RLMSide)
	require.NotNil(t, g.SharpTotal)
	assert.Equal(t, models.TotalUnder, *g.SharpTotal)
	assert.True(t, g.RLMTotal)
	assert.True(t, g.SteamMove)

	require.NotNil(t, published)
	assert.Equal(t, report.RunID, published.RunID)
	assert.Equal(t, "nba", published.Category)
	assert.Equal(t, models.LabelMidday, published.Label)
	assert.Equal(t, report.Categories[0].Alerts, len(published.Alerts))
	assert.NotEmpty(t, published.Alerts)
}

// TestIngestion_SteamAgainstPrevious tests that steam compares with the preceding
// snapshot rather than the opening one
func TestIngestion_SteamAgainstPrevious(t *testing.T) {
	setup := setupTestServices(t, true)
	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nhl").Return([]models.OddsEvent{}, nil).AnyTimes()
	setup.mockPublisher.EXPECT().PublishAlerts(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	for _, step := range []struct {
		label  string
		spread float64
	}{
		{models.LabelOpening, -3.5},
		{models.LabelMidday, -5.5},
		{models.LabelLatest, -6},
	} {
		setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nba").Return([]models.OddsEvent{lakers(step.spread, 230.5)}, nil)
		_, err := setup.ingestion.Run(setup.ctx, step.label)
		require.NoError(t, err)
		setup.clock.Advance(time.Hour)
	}

	midday := setup.store.ReadExact(setup.ctx, testDate, "nba", models.LabelMidday).Lines()[0]
	latest := setup.store.ReadExact(setup.ctx, testDate, "nba", models.LabelLatest).Lines()[0]

	assert.True(t, midday.SteamMove)
	// -6 vs the midday -5.5 is below threshold even though it is 2.5 from the open
	assert.False(t, latest.SteamMove)
	assert.Equal(t, -3.5, *latest.SpreadHomeOpen)
}

// TestIngestion_SteamBackToOpenPublishesAlert tests that a move reversed back to the
// opening line is still alerted when it steamed against the previous snapshot
func TestIngestion_SteamBackToOpenPublishesAlert(t *testing.T) {
	setup := setupTestServices(t, true)
	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nhl").Return([]models.OddsEvent{}, nil).AnyTimes()

	published := map[string]*models.AlertBatchMessage{}
	setup.mockPublisher.EXPECT().
		PublishAlerts(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, batch *models.AlertBatchMessage) error {
			published[batch.Label] = batch
			return nil
		}).
		AnyTimes()

	var report *IngestionReport
	for _, step := range []struct {
		label  string
		spread float64
	}{
		{models.LabelOpening, -2.5},
		{models.LabelMidday, -4},
		{models.LabelLatest, -2.5},
	} {
		setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nba").Return([]models.OddsEvent{lakers(step.spread, 230.5)}, nil)
		var err error
		report, err = setup.ingestion.Run(setup.ctx, step.label)
		require.NoError(t, err)
		setup.clock.Advance(time.Hour)
	}

	latest := setup.store.ReadExact(setup.ctx, testDate, "nba", models.LabelLatest).Lines()[0]
	assert.True(t, latest.SteamMove)
	assert.Nil(t, latest.SharpSide)
	require.NotNil(t, latest.SteamSpreadFrom)
	assert.Equal(t, -4.0, *latest.SteamSpreadFrom)

	assert.Equal(t, 1, report.Categories[0].Alerts)
	batch := published[models.LabelLatest]
	require.NotNil(t, batch)
	require.Len(t, batch.Alerts, 1)
	assert.Equal(t, models.AlertSteam, batch.Alerts[0].Type)
	assert.Equal(t, "Spread moved 1.5 pts: -4 to -2.5", batch.Alerts[0].Description)
}

// TestIngestion_RerunOpeningIgnoresItself tests that rewriting the opening label
// does not use the stored opening snapshot as its own reference
func TestIngestion_RerunOpeningIgnoresItself(t *testing.T) {
	setup := setupTestServices(t, true)
	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nhl").Return([]models.OddsEvent{}, nil).AnyTimes()
	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nba").Return([]models.OddsEvent{lakers(-3.5, 230.5)}, nil)
	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nba").Return([]models.OddsEvent{lakers(-1.5, 230.5)}, nil)

	_, err := setup.ingestion.Run(setup.ctx, models.LabelOpening)
	require.NoError(t, err)
	setup.clock.Advance(time.Hour)
	_, err = setup.ingestion.Run(setup.ctx, models.LabelOpening)
	require.NoError(t, err)

	read := setup.store.ReadExact(setup.ctx, testDate, "nba", models.LabelOpening)
	require.True(t, read.Found())
	g := read.Lines()[0]
	assert.Equal(t, -1.5, *g.SpreadHome)
	assert.Nil(t, g.SpreadHomeOpen)
	assert.False(t, g.RLMSide)
	assert.False(t, g.SteamMove)
	assert.Equal(t, int64(2), read.Snapshot.Sequence)
}

// TestIngestion_PartialFailure tests that an upstream failure in one category leaves
// its existing snapshot untouched and does not affect the others
func TestIngestion_PartialFailure(t *testing.T) {
	setup := setupTestServices(t, true)
	require.NoError(t, setup.store.Write(setup.ctx, testDate, "nba", models.LabelMidday, []models.GameLine{{ID: "old"}}))

	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nba").Return(nil, errors.New("timeout"))
	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nhl").Return([]models.OddsEvent{bruins(-1.5, 6.5)}, nil)

	report, err := setup.ingestion.Run(setup.ctx, models.LabelMidday)
	require.NoError(t, err)

	assert.Equal(t, "partial", report.Result())
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, IngestUpstreamError, report.Categories[0].Status)
	assert.Contains(t, report.Categories[0].Error, "timeout")
	assert.Equal(t, IngestWritten, report.Categories[1].Status)

	kept := setup.store.ReadExact(setup.ctx, testDate, "nba", models.LabelMidday)
	require.True(t, kept.Found())
	assert.Equal(t, "old", kept.Lines()[0].ID)
	assert.True(t, setup.store.ReadExact(setup.ctx, testDate, "nhl", models.LabelMidday).Found())
}

// TestIngestion_PublishFailureKeepsSnapshot tests that alert delivery is best effort
func TestIngestion_PublishFailureKeepsSnapshot(t *testing.T) {
	setup := setupTestServices(t, true)
	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nhl").Return([]models.OddsEvent{}, nil).AnyTimes()
	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nba").Return([]models.OddsEvent{lakers(-3.5, 230.5)}, nil)
	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nba").Return([]models.OddsEvent{lakers(-1.5, 230.5)}, nil)
	setup.mockPublisher.EXPECT().PublishAlerts(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	_, err := setup.ingestion.Run(setup.ctx, models.LabelOpening)
	require.NoError(t, err)
	setup.clock.Advance(time.Hour)
	report, err := setup.ingestion.Run(setup.ctx, models.LabelLatest)
	require.NoError(t, err)

	assert.Equal(t, "ok", report.Result())
	assert.True(t, setup.store.ReadExact(setup.ctx, testDate, "nba", models.LabelLatest).Lines()[0].SteamMove)
}

// TestIngestion_NoCredential tests that ingestion is a no-op without a provider key
func TestIngestion_NoCredential(t *testing.T) {
	setup := setupTestServices(t, false)
	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), gomock.Any()).Times(0)

	report, err := setup.ingestion.Run(setup.ctx, models.LabelMidday)
	require.NoError(t, err)

	assert.True(t, report.Skipped)
	assert.Equal(t, "skipped", report.Result())
	assert.Empty(t, report.Categories)
	assert.False(t, setup.store.ReadFallback(setup.ctx, testDate, "nba").Found())
}

// TestIngestion_InvalidLabel tests label validation
func TestIngestion_InvalidLabel(t *testing.T) {
	setup := setupTestServices(t, true)

	_, err := setup.ingestion.Run(setup.ctx, "3am")
	assert.Error(t, err)

	_, err = setup.ingestion.Run(setup.ctx, models.LabelLive)
	assert.Error(t, err)
}

// TestIngestionJob_Run tests the scheduler adapter
func TestIngestionJob_Run(t *testing.T) {
	setup := setupTestServices(t, true)
	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), gomock.Any()).Return(nil, errors.New("down")).Times(2)

	job := NewIngestionJob(setup.ingestion, models.LabelOpening, time.Second)
	assert.Equal(t, "snapshot_10pm", job.Name())

	err := job.Run(setup.ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed for all 2 categories")

	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nba").Return([]models.OddsEvent{}, nil)
	setup.mockProvider.EXPECT().FetchOdds(gomock.Any(), "nhl").Return(nil, errors.New("down"))
	assert.NoError(t, job.Run(setup.ctx))
}
