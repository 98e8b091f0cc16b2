package estimator

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/sharp-lines-service/internal/models"
)

// Estimation modes
const (
	ModePerCall  = "per_call"
	ModePerEvent = "per_event"
)

// NewSource returns the source for a configured mode
func NewSource(mode string) (Source, error) {
	switch mode {
	case ModePerCall:
		return NewPerCallSource(uint64(time.Now().UnixNano())), nil
	case ModePerEvent, "":
		return PerEventSource{}, nil
	default:
		return nil, fmt.Errorf("unknown estimation mode: %s", mode)
	}
}

// Estimator derives heuristic public betting percentages from a normalized line.
// The values are estimates, not measured data.
type Estimator struct {
	params models.EstimationParams
	source Source
	logger zerolog.Logger
}

// NewEstimator creates a new public-money estimator
func NewEstimator(params models.EstimationParams, source Source, logger zerolog.Logger) *Estimator {
	return &Estimator{
		params: params,
		source: source,
		logger: logger.With().Str("component", "estimator").Logger(),
	}
}

// Estimate returns a copy of line with the public split fields populated
// wherever the spread or total is resolved
func (e *Estimator) Estimate(line models.GameLine) models.GameLine {
	out := line.Clone()

	out.PublicHomePct, out.PublicAwayPct = nil, nil
	if out.SpreadHome != nil {
		home, away := e.spreadSplit(*out.SpreadHome)
		out.PublicHomePct = models.Int(home)
		out.PublicAwayPct = models.Int(away)
	}

	out.PublicOverPct, out.PublicUnderPct = nil, nil
	if out.Total != nil {
		over := e.overPct(out)
		out.PublicOverPct = models.Int(over)
		out.PublicUnderPct = models.Int(100 - over)
	}

	return out
}

// EstimateBatch estimates every line
func (e *Estimator) EstimateBatch(lines []models.GameLine) []models.GameLine {
	out := make([]models.GameLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, e.Estimate(l))
	}

	e.logger.Debug().Int("count", len(out)).Msg("estimated public split")

	return out
}

// spreadSplit gives the favourite min(cap, base + perPoint*|spread|), rounded,
// and the other side the complement. A non-negative home spread makes away the favourite.
func (e *Estimator) spreadSplit(spreadHome float64) (home, away int) {
	s := decimal.NewFromFloat(spreadHome).Abs()
	fav := decimal.Min(e.params.FavoriteCapPct, e.params.FavoriteBasePct.Add(e.params.FavoritePerPoint.Mul(s)))
	favPct := int(fav.Round(0).IntPart())

	if spreadHome < 0 {
		return favPct, 100 - favPct
	}
	return 100 - favPct, favPct
}

// overPct draws the Over share from [OverMinPct, OverMaxPct), rounded
func (e *Estimator) overPct(line models.GameLine) int {
	u := e.source.Uniform(line)
	span := e.params.OverMaxPct - e.params.OverMinPct
	raw := decimal.NewFromFloat(e.params.OverMinPct + u*span)
	return int(raw.Round(0).IntPart())
}
