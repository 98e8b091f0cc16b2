package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cypherlabdev/sharp-lines-service/internal/clock"
	"github.com/cypherlabdev/sharp-lines-service/internal/metrics"
	"github.com/cypherlabdev/sharp-lines-service/internal/models"
	"github.com/cypherlabdev/sharp-lines-service/internal/store"
	"github.com/cypherlabdev/sharp-lines-service/pkg/detector"
)

// Ingestion outcomes per category
const (
	IngestWritten       = "written"
	IngestUpstreamError = "upstream_error"
	IngestWriteError    = "write_error"
)

// CategoryReport is the outcome of one category within an ingestion run
type CategoryReport struct {
	Category string `json:"sport"`
	Status   string `json:"status"`
	Games    int    `json:"games"`
	Alerts   int    `json:"alerts"`
	Error    string `json:"error,omitempty"`
}

// IngestionReport summarizes an ingestion run
type IngestionReport struct {
	RunID      uuid.UUID        `json:"run_id"`
	Label      string           `json:"label"`
	Date       string           `json:"date"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Skipped    bool             `json:"skipped"` // no provider credential
	Categories []CategoryReport `json:"categories"`
}

// Failed returns the number of categories that were not written
func (r *IngestionReport) Failed() int {
	n := 0
	for _, c := range r.Categories {
		if c.Status != IngestWritten {
			n++
		}
	}
	return n
}

// Result summarizes the run for metrics and logs
func (r *IngestionReport) Result() string {
	switch failed := r.Failed(); {
	case r.Skipped:
		return "skipped"
	case failed == 0:
		return "ok"
	case failed == len(r.Categories):
		return "failed"
	default:
		return "partial"
	}
}

// IngestionService captures labelled snapshots of every tracked category
type IngestionService struct {
	pipeline  *Pipeline
	provider  OddsProvider
	store     SnapshotStore
	detector  *detector.Detector
	publisher AlertPublisher // optional
	clock     clock.Clock
	logger    zerolog.Logger
}

// NewIngestionService creates a new ingestion service. publisher may be nil.
func NewIngestionService(
	pipeline *Pipeline,
	provider OddsProvider,
	store SnapshotStore,
	detector *detector.Detector,
	publisher AlertPublisher,
	clk clock.Clock,
	logger zerolog.Logger,
) *IngestionService {
	return &IngestionService{
		pipeline:  pipeline,
		provider:  provider,
		store:     store,
		detector:  detector,
		publisher: publisher,
		clock:     clk,
		logger:    logger.With().Str("component", "ingestion_service").Logger(),
	}
}

// Run captures a snapshot under label for today's date (UTC). Categories are
// processed concurrently and fail independently; an upstream failure leaves any
// existing snapshot for that key untouched.
func (s *IngestionService) Run(ctx context.Context, label string) (*IngestionReport, error) {
	if !models.IsSnapshotLabel(label) {
		return nil, fmt.Errorf("unknown snapshot label %q", label)
	}

	now := s.clock.Now().UTC()
	report := &IngestionReport{
		RunID:      uuid.New(),
		Label:      label,
		Date:       now.Format(models.DateLayout),
		StartedAt:  now,
		Categories: []CategoryReport{},
	}

	logger := s.logger.With().
		Str("run_id", report.RunID.String()).
		Str("label", label).
		Str("date", report.Date).
		Logger()

	if !s.provider.HasCredential() {
		report.Skipped = true
		report.FinishedAt = s.clock.Now().UTC()
		metrics.IngestionRuns.WithLabelValues(label, report.Result()).Inc()
		logger.Warn().Msg("no provider credential configured, skipping ingestion")
		return report, nil
	}

	categories := s.provider.Categories()
	report.Categories = make([]CategoryReport, len(categories))

	var g errgroup.Group
	for i, category := range categories {
		g.Go(func() error {
			report.Categories[i] = s.ingest(ctx, report, category, logger)
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = s.clock.Now().UTC()
	metrics.IngestionRuns.WithLabelValues(label, report.Result()).Inc()

	logger.Info().
		Int("categories", len(categories)).
		Int("failed", report.Failed()).
		Str("result", report.Result()).
		Msg("ingestion complete")

	return report, nil
}

func (s *IngestionService) ingest(ctx context.Context, report *IngestionReport, category string, logger zerolog.Logger) CategoryReport {
	out := CategoryReport{Category: category}
	logger = logger.With().Str("category", category).Logger()

	lines, err := s.pipeline.Build(ctx, category, report.Label)
	if err != nil {
		logger.Error().Err(err).Msg("upstream fetch failed, keeping existing snapshot")
		out.Status = IngestUpstreamError
		out.Error = err.Error()
		return out
	}

	var opening, previous store.ReadResult
	var g errgroup.Group
	g.Go(func() error {
		opening = s.store.ReadEarliest(ctx, report.Date, category)
		return nil
	})
	g.Go(func() error {
		previous = s.store.ReadLatestBefore(ctx, report.Date, category, report.Label)
		return nil
	})
	_ = g.Wait()

	// A rerun of the opening label must not compare against itself
	var openingLines []models.GameLine
	if opening.Found() && opening.Label() != report.Label {
		openingLines = opening.Lines()
	}

	detected := s.detector.DetectBatch(lines, openingLines, previous.Lines())

	if err := s.store.Write(ctx, report.Date, category, report.Label, detected); err != nil {
		logger.Error().Err(err).Msg("failed to write snapshot")
		out.Status = IngestWriteError
		out.Error = err.Error()
		return out
	}
	out.Status = IngestWritten
	out.Games = len(detected)

	countSignals(category, detected)

	alerts := s.detector.AlertsBatch(detected)
	out.Alerts = len(alerts)
	if len(alerts) > 0 && s.publisher != nil {
		batch := &models.AlertBatchMessage{
			MessageID: uuid.New(),
			RunID:     report.RunID,
			Date:      report.Date,
			Category:  category,
			Label:     report.Label,
			Alerts:    alerts,
			Timestamp: s.clock.Now().UTC(),
		}
		// Publishing is best effort; the snapshot is already persisted
		if err := s.publisher.PublishAlerts(ctx, batch); err != nil {
			logger.Warn().Err(err).Int("alerts", len(alerts)).Msg("failed to publish alerts")
		}
	}

	logger.Info().
		Int("count", out.Games).
		Int("alerts", out.Alerts).
		Bool("opening_ref", openingLines != nil).
		Str("previous_label", previous.Label()).
		Msg("saved snapshot")

	return out
}

func countSignals(category string, lines []models.GameLine) {
	for _, line := range lines {
		if line.RLMSide {
			metrics.SharpSignals.WithLabelValues(category, "rlm_side").Inc()
		}
		if line.RLMTotal {
			metrics.SharpSignals.WithLabelValues(category, "rlm_total").Inc()
		}
		if line.SteamMove {
			metrics.SharpSignals.WithLabelValues(category, "steam").Inc()
		}
	}
}
