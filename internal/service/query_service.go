package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cypherlabdev/sharp-lines-service/internal/cache"
	"github.com/cypherlabdev/sharp-lines-service/internal/clock"
	"github.com/cypherlabdev/sharp-lines-service/internal/metrics"
	"github.com/cypherlabdev/sharp-lines-service/internal/models"
	"github.com/cypherlabdev/sharp-lines-service/internal/store"
	"github.com/cypherlabdev/sharp-lines-service/pkg/detector"
)

// CategoryAll requests every tracked category
const CategoryAll = "all"

// ErrInvalidQuery is returned for malformed query parameters
var ErrInvalidQuery = errors.New("invalid query")

// CategoryStatus tells clients where a category's lines came from
type CategoryStatus string

const (
	StatusLive          CategoryStatus = "live"
	StatusCached        CategoryStatus = "cached"
	StatusSnapshot      CategoryStatus = "snapshot"
	StatusFallback      CategoryStatus = "fallback"
	StatusMissing       CategoryStatus = "missing"
	StatusDegraded      CategoryStatus = "degraded"
	StatusUpstreamError CategoryStatus = "upstream_error"
)

// Query selects lines by category, date and snapshot label
type Query struct {
	Category string `json:"sport"`
	Date     string `json:"date"`
	Label    string `json:"snapshot"`
}

// CategoryResult reports how one category was served
type CategoryResult struct {
	Category string         `json:"sport"`
	Status   CategoryStatus `json:"status"`
	Source   string         `json:"source_label,omitempty"` // label of the snapshot actually served
	Games    int            `json:"games"`
	Skipped  int            `json:"skipped_entries,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// GameView is a line plus its displayed movement from open
type GameView struct {
	models.GameLine
	SpreadChange *detector.Movement `json:"spread_change"`
	TotalChange  *detector.Movement `json:"total_change"`
}

// QueryResult is the response to a lines query
type QueryResult struct {
	Query
	FetchedAt  time.Time        `json:"fetched_at"`
	Games      []GameView       `json:"games"`
	Categories []CategoryResult `json:"categories"`
}

// AlertsResult is the response to an alerts query
type AlertsResult struct {
	Query
	FetchedAt  time.Time           `json:"fetched_at"`
	Alerts     []models.SharpAlert `json:"alerts"`
	Games      []GameView          `json:"games"`
	Categories []CategoryResult    `json:"categories"`
}

// QueryService answers line queries from the live pipeline or the snapshot store
type QueryService struct {
	pipeline *Pipeline
	provider OddsProvider
	store    SnapshotStore
	cache    LiveCache
	detector *detector.Detector
	clock    clock.Clock
	logger   zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-category live refresh
}

// NewQueryService creates a new query service
func NewQueryService(
	pipeline *Pipeline,
	provider OddsProvider,
	store SnapshotStore,
	cache LiveCache,
	detector *detector.Detector,
	clk clock.Clock,
	logger zerolog.Logger,
) *QueryService {
	return &QueryService{
		pipeline: pipeline,
		provider: provider,
		store:    store,
		cache:    cache,
		detector: detector,
		clock:    clk,
		logger:   logger.With().Str("component", "query_service").Logger(),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Categories returns the tracked categories
func (s *QueryService) Categories() []string {
	return s.provider.Categories()
}

// Normalize fills defaults and validates a query. Missing date means today (UTC),
// missing label means latest.
func (s *QueryService) Normalize(q Query) (Query, error) {
	if q.Date == "" {
		q.Date = s.today()
	}
	if _, err := time.Parse(models.DateLayout, q.Date); err != nil {
		return q, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrInvalidQuery, q.Date)
	}
	if q.Label == "" {
		q.Label = models.LabelLatest
	}
	if !models.IsSnapshotLabel(q.Label) {
		return q, fmt.Errorf("%w: unknown snapshot %q", ErrInvalidQuery, q.Label)
	}
	if q.Category == "" {
		q.Category = CategoryAll
	}
	if q.Category != CategoryAll && !s.tracked(q.Category) {
		return q, fmt.Errorf("%w: unknown sport %q", ErrInvalidQuery, q.Category)
	}
	return q, nil
}

// GetLines returns annotated lines for the query. A failing category contributes
// an empty set and its status; only invalid parameters produce an error.
func (s *QueryService) GetLines(ctx context.Context, q Query) (*QueryResult, error) {
	q, err := s.Normalize(q)
	if err != nil {
		return nil, err
	}

	categories := []string{q.Category}
	if q.Category == CategoryAll {
		categories = s.provider.Categories()
	}

	type outcome struct {
		lines  []models.GameLine
		result CategoryResult
	}
	outcomes := make([]outcome, len(categories))

	var g errgroup.Group
	for i, category := range categories {
		g.Go(func() error {
			lines, result := s.category(ctx, q, category)
			outcomes[i] = outcome{lines: lines, result: result}
			return nil
		})
	}
	_ = g.Wait()

	res := &QueryResult{
		Query:      q,
		FetchedAt:  s.clock.Now().UTC(),
		Games:      []GameView{},
		Categories: make([]CategoryResult, 0, len(categories)),
	}
	for _, o := range outcomes {
		for _, line := range o.lines {
			res.Games = append(res.Games, s.view(line))
		}
		res.Categories = append(res.Categories, o.result)
	}

	s.logger.Debug().
		Str("category", q.Category).
		Str("date", q.Date).
		Str("label", q.Label).
		Int("count", len(res.Games)).
		Msg("served lines")

	return res, nil
}

// GetAlerts returns the lines with sharp action for the query, with their alerts
func (s *QueryService) GetAlerts(ctx context.Context, q Query) (*AlertsResult, error) {
	lines, err := s.GetLines(ctx, q)
	if err != nil {
		return nil, err
	}

	res := &AlertsResult{
		Query:      lines.Query,
		FetchedAt:  lines.FetchedAt,
		Alerts:     []models.SharpAlert{},
		Games:      []GameView{},
		Categories: lines.Categories,
	}
	for _, game := range lines.Games {
		if !detector.HasSharpAction(game.GameLine) {
			continue
		}
		res.Games = append(res.Games, game)
		res.Alerts = append(res.Alerts, s.detector.Alerts(game.GameLine)...)
	}

	return res, nil
}

// category serves one category, choosing the live or snapshot route
func (s *QueryService) category(ctx context.Context, q Query, category string) ([]models.GameLine, CategoryResult) {
	if q.Date == s.today() && q.Label == models.LabelLatest && s.provider.HasCredential() {
		return s.live(ctx, q.Date, category)
	}
	return s.snapshot(ctx, q, category)
}

// live serves the category from the cache, or rebuilds it from the provider.
// Concurrent misses for one category share a single rebuild.
func (s *QueryService) live(ctx context.Context, date, category string) ([]models.GameLine, CategoryResult) {
	lock := s.categoryLock(category)
	lock.Lock()
	defer lock.Unlock()

	cached, err := s.cache.Get(ctx, date, category)
	if err == nil {
		metrics.LiveCacheLookups.WithLabelValues(category, "hit").Inc()
		return cached, CategoryResult{Category: category, Status: StatusCached, Source: models.LabelLive, Games: len(cached)}
	}
	metrics.LiveCacheLookups.WithLabelValues(category, "miss").Inc()
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn().Err(err).Str("category", category).Msg("cache error, rebuilding live lines")
	}

	built, err := s.pipeline.Build(ctx, category, models.LabelLive)
	if err != nil {
		s.logger.Error().Err(err).Str("category", category).Msg("live fetch failed")
		return []models.GameLine{}, CategoryResult{Category: category, Status: StatusUpstreamError, Error: err.Error()}
	}

	var opening, previous store.ReadResult
	var g errgroup.Group
	g.Go(func() error {
		opening = s.store.ReadEarliest(ctx, date, category)
		return nil
	})
	g.Go(func() error {
		previous = s.store.ReadFallback(ctx, date, category)
		return nil
	})
	_ = g.Wait()

	lines := s.detector.DetectBatch(built, opening.Lines(), previous.Lines())

	// Cache errors don't fail the request
	if err := s.cache.Set(ctx, date, category, lines); err != nil {
		s.logger.Warn().Err(err).Str("category", category).Msg("failed to cache live lines")
	}

	return lines, CategoryResult{
		Category: category,
		Status:   StatusLive,
		Source:   models.LabelLive,
		Games:    len(lines),
		Skipped:  opening.Skipped + previous.Skipped,
	}
}

// snapshot serves the category from the store: the exact snapshot, else the most
// recent one of the day, with opening references backfilled from the earliest
func (s *QueryService) snapshot(ctx context.Context, q Query, category string) ([]models.GameLine, CategoryResult) {
	result := CategoryResult{Category: category}

	read := s.store.ReadExact(ctx, q.Date, category, q.Label)
	result.Status = StatusSnapshot
	if !read.Found() {
		// The fallback scan revisits an unreadable exact entry and counts it
		read = s.store.ReadFallback(ctx, q.Date, category)
		result.Status = StatusFallback
	}
	result.Skipped = read.Skipped

	if !read.Found() {
		result.Status = StatusMissing
		if read.Degraded() {
			result.Status = StatusDegraded
		}
		return []models.GameLine{}, result
	}
	result.Source = read.Label()

	lines := read.Lines()
	if opening := s.store.ReadEarliest(ctx, q.Date, category); opening.Found() && opening.Label() != read.Label() {
		lines = backfillOpening(lines, opening.Lines())
	}
	result.Games = len(lines)

	return lines, result
}

// backfillOpening resolves opening references on lines persisted without them
func backfillOpening(lines, opening []models.GameLine) []models.GameLine {
	idx := models.IndexByID(opening)
	out := make([]models.GameLine, 0, len(lines))
	for _, line := range lines {
		if !line.HasOpening() {
			line = detector.ApplyOpening(line, idx[line.ID])
		}
		out = append(out, line)
	}
	return out
}

func (s *QueryService) view(line models.GameLine) GameView {
	return GameView{
		GameLine:     line,
		SpreadChange: s.detector.LineChange(line.SpreadHome, line.SpreadHomeOpen),
		TotalChange:  s.detector.LineChange(line.Total, line.TotalOpen),
	}
}

func (s *QueryService) categoryLock(category string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[category]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[category] = lock
	}
	return lock
}

func (s *QueryService) tracked(category string) bool {
	for _, c := range s.provider.Categories() {
		if c == category {
			return true
		}
	}
	return false
}

func (s *QueryService) today() string {
	return s.clock.Now().UTC().Format(models.DateLayout)
}
