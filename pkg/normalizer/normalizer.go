package normalizer

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/sharp-lines-service/internal/models"
)

// DefaultBookPriority is the bookmaker order used when none is configured
var DefaultBookPriority = []string{"draftkings", "fanduel", "betmgm"}

// Normalizer turns raw multi-bookmaker events into canonical game lines
type Normalizer struct {
	priority map[string]int
	logger   zerolog.Logger
}

// NewNormalizer creates a normalizer that prefers books in the given order
func NewNormalizer(bookPriority []string, logger zerolog.Logger) *Normalizer {
	if len(bookPriority) == 0 {
		bookPriority = DefaultBookPriority
	}
	priority := make(map[string]int, len(bookPriority))
	for _, key := range bookPriority {
		if _, ok := priority[key]; !ok {
			priority[key] = len(priority)
		}
	}

	return &Normalizer{
		priority: priority,
		logger:   logger.With().Str("component", "normalizer").Logger(),
	}
}

// Normalize produces exactly one game line from a raw event.
// Reference, estimate and classification fields are left unset.
func (n *Normalizer) Normalize(event models.OddsEvent, category string, capturedAt time.Time, label string) models.GameLine {
	books := n.orderBooks(event.Bookmakers)

	spreads := firstMarket(books, models.MarketSpreads)
	totals := firstMarket(books, models.MarketTotals)
	h2h := firstMarket(books, models.MarketH2H)

	line := models.GameLine{
		ID:            event.ID,
		Category:      category,
		Home:          event.HomeTeam,
		Away:          event.AwayTeam,
		CommenceTime:  event.CommenceTime,
		SnapshotTime:  capturedAt.UTC(),
		SnapshotLabel: label,
	}

	// Spread is signed relative to home; away is derived when not quoted
	if home := spreads.FindOutcome(event.HomeTeam); home != nil && home.Point != nil {
		line.SpreadHome = models.Float(*home.Point)
		line.SpreadAway = models.Float(-*home.Point)
	}
	if away := spreads.FindOutcome(event.AwayTeam); away != nil && away.Point != nil {
		line.SpreadAway = models.Float(*away.Point)
	}

	if over := totals.FindOutcome(models.OutcomeOver); over != nil && over.Point != nil {
		line.Total = models.Float(*over.Point)
	} else if under := totals.FindOutcome(models.OutcomeUnder); under != nil && under.Point != nil {
		line.Total = models.Float(*under.Point)
	}

	if home := h2h.FindOutcome(event.HomeTeam); home != nil {
		line.MoneylineHome = models.Int(home.Price)
	}
	if away := h2h.FindOutcome(event.AwayTeam); away != nil {
		line.MoneylineAway = models.Int(away.Price)
	}

	return line
}

// NormalizeBatch normalizes every event of one category
func (n *Normalizer) NormalizeBatch(events []models.OddsEvent, category string, capturedAt time.Time, label string) []models.GameLine {
	lines := make([]models.GameLine, 0, len(events))
	for _, event := range events {
		if event.ID == "" {
			n.logger.Warn().
				Str("category", category).
				Str("home", event.HomeTeam).
				Str("away", event.AwayTeam).
				Msg("skipping event without id")
			continue
		}
		lines = append(lines, n.Normalize(event, category, capturedAt, label))
	}

	n.logger.Debug().
		Str("category", category).
		Int("input_count", len(events)).
		Int("output_count", len(lines)).
		Msg("normalized events")

	return lines
}

// orderBooks returns the bookmakers sorted by configured priority.
// Books outside the priority list keep their payload order after the listed ones.
func (n *Normalizer) orderBooks(books []models.Bookmaker) []models.Bookmaker {
	ordered := make([]models.Bookmaker, 0, len(books))
	ranked := make([][]models.Bookmaker, len(n.priority))
	var rest []models.Bookmaker

	for _, b := range books {
		if rank, ok := n.priority[b.Key]; ok {
			ranked[rank] = append(ranked[rank], b)
			continue
		}
		rest = append(rest, b)
	}
	for _, group := range ranked {
		ordered = append(ordered, group...)
	}
	return append(ordered, rest...)
}

// firstMarket picks the market from the first book that publishes it; no blending
func firstMarket(books []models.Bookmaker, key string) *models.Market {
	for _, b := range books {
		if m := b.FindMarket(key); m != nil {
			return m
		}
	}
	return nil
}
