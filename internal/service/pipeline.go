package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/sharp-lines-service/internal/clock"
	"github.com/cypherlabdev/sharp-lines-service/internal/models"
	"github.com/cypherlabdev/sharp-lines-service/pkg/estimator"
	"github.com/cypherlabdev/sharp-lines-service/pkg/normalizer"
)

// Pipeline builds estimated lines for one category: fetch, normalize, estimate.
// Detection is left to callers since live and scheduled paths resolve references differently.
type Pipeline struct {
	provider   OddsProvider
	normalizer *normalizer.Normalizer
	estimator  *estimator.Estimator
	clock      clock.Clock
	logger     zerolog.Logger
}

// NewPipeline creates a new line pipeline
func NewPipeline(
	provider OddsProvider,
	normalizer *normalizer.Normalizer,
	estimator *estimator.Estimator,
	clk clock.Clock,
	logger zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		provider:   provider,
		normalizer: normalizer,
		estimator:  estimator,
		clock:      clk,
		logger:     logger.With().Str("component", "pipeline").Logger(),
	}
}

// Build fetches the category's events and returns normalized, estimated lines
// tagged with label
func (p *Pipeline) Build(ctx context.Context, category, label string) ([]models.GameLine, error) {
	events, err := p.provider.FetchOdds(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch odds: %w", err)
	}

	lines := p.normalizer.NormalizeBatch(events, category, p.clock.Now(), label)
	lines = p.estimator.EstimateBatch(lines)

	p.logger.Debug().
		Str("category", category).
		Str("label", label).
		Int("events", len(events)).
		Int("count", len(lines)).
		Msg("built lines")

	return lines, nil
}
