package detector

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/sharp-lines-service/internal/models"
)

// Detector classifies sharp-money signals by comparing a line against its
// opening and previous references
type Detector struct {
	params models.DetectionParams
	logger zerolog.Logger
}

// NewDetector creates a new sharp-action detector
func NewDetector(params models.DetectionParams, logger zerolog.Logger) *Detector {
	return &Detector{
		params: params,
		logger: logger.With().Str("component", "detector").Logger(),
	}
}

// Params returns the thresholds in use
func (d *Detector) Params() models.DetectionParams {
	return d.params
}

// ApplyOpening copies the opening reference's market values into the line's
// opening fields. Values the reference does not carry are left as they are.
func ApplyOpening(line models.GameLine, opening *models.GameLine) models.GameLine {
	out := line.Clone()
	if opening == nil {
		return out
	}
	if opening.SpreadHome != nil {
		out.SpreadHomeOpen = models.Float(*opening.SpreadHome)
	}
	if opening.Total != nil {
		out.TotalOpen = models.Float(*opening.Total)
	}
	if opening.MoneylineHome != nil {
		out.MoneylineHomeOpen = models.Int(*opening.MoneylineHome)
	}
	if opening.MoneylineAway != nil {
		out.MoneylineAwayOpen = models.Int(*opening.MoneylineAway)
	}
	return out
}

// Detect returns a copy of current with opening fields resolved and every
// classification field recomputed. References are never modified.
func (d *Detector) Detect(current models.GameLine, opening, previous *models.GameLine) models.GameLine {
	out := ApplyOpening(current, opening)

	out.SharpSide = nil
	out.SharpTotal = nil
	out.RLMSide = false
	out.RLMTotal = false
	out.SteamMove = false
	out.SteamSpreadFrom = nil
	out.SteamTotalFrom = nil

	if side, ok := d.spreadRLM(out); ok {
		out.SharpSide = &side
		out.RLMSide = true
	}
	if side, ok := d.totalRLM(out); ok {
		out.SharpTotal = &side
		out.RLMTotal = true
	}
	out.SteamSpreadFrom, out.SteamTotalFrom = d.steam(out, steamReference(out, opening, previous))
	out.SteamMove = out.SteamSpreadFrom != nil || out.SteamTotalFrom != nil

	return out
}

// DetectBatch classifies every line, matching references by event ID
func (d *Detector) DetectBatch(current, opening, previous []models.GameLine) []models.GameLine {
	openIdx := models.IndexByID(opening)
	prevIdx := models.IndexByID(previous)

	out := make([]models.GameLine, 0, len(current))
	var rlm, steam int
	for _, line := range current {
		detected := d.Detect(line, openIdx[line.ID], prevIdx[line.ID])
		if detected.RLMSide || detected.RLMTotal {
			rlm++
		}
		if detected.SteamMove {
			steam++
		}
		out = append(out, detected)
	}

	d.logger.Debug().
		Int("count", len(out)).
		Int("opening_refs", len(opening)).
		Int("previous_refs", len(previous)).
		Int("rlm", rlm).
		Int("steam", steam).
		Msg("classified lines")

	return out
}

// spreadRLM: public majority on one side while the line moves toward the other
func (d *Detector) spreadRLM(line models.GameLine) (models.Side, bool) {
	if line.SpreadHome == nil || line.SpreadHomeOpen == nil || line.PublicHomePct == nil {
		return "", false
	}
	moved := diff(*line.SpreadHome, *line.SpreadHomeOpen)

	if *line.PublicHomePct > d.params.PublicMajorityPct && moved.IsPositive() {
		return models.SideAway, true
	}
	if line.PublicAwayPct != nil && *line.PublicAwayPct > d.params.PublicMajorityPct && moved.IsNegative() {
		return models.SideHome, true
	}
	return "", false
}

// totalRLM: public on the Over while the total drops, or on the Under while it rises
func (d *Detector) totalRLM(line models.GameLine) (models.TotalSide, bool) {
	if line.Total == nil || line.TotalOpen == nil || line.PublicOverPct == nil {
		return "", false
	}
	moved := diff(*line.Total, *line.TotalOpen)

	if *line.PublicOverPct > d.params.PublicMajorityPct && moved.IsNegative() {
		return models.TotalUnder, true
	}
	if line.PublicUnderPct != nil && *line.PublicUnderPct > d.params.PublicMajorityPct && moved.IsPositive() {
		return models.TotalOver, true
	}
	return "", false
}

// steam reports, per market, the reference value a move of at least
// SteamThreshold was measured from, in either direction
func (d *Detector) steam(line models.GameLine, ref *models.GameLine) (spreadFrom, totalFrom *float64) {
	if ref == nil {
		return nil, nil
	}
	if line.SpreadHome != nil && ref.SpreadHome != nil &&
		diff(*line.SpreadHome, *ref.SpreadHome).Abs().GreaterThanOrEqual(d.params.SteamThreshold) {
		spreadFrom = models.Float(*ref.SpreadHome)
	}
	if line.Total != nil && ref.Total != nil &&
		diff(*line.Total, *ref.Total).Abs().GreaterThanOrEqual(d.params.SteamThreshold) {
		totalFrom = models.Float(*ref.Total)
	}
	return spreadFrom, totalFrom
}

// steamReference picks previous, then opening, then the line's own opening fields
func steamReference(line models.GameLine, opening, previous *models.GameLine) *models.GameLine {
	if previous != nil {
		return previous
	}
	if opening != nil {
		return opening
	}
	if line.SpreadHomeOpen != nil || line.TotalOpen != nil {
		return &models.GameLine{ID: line.ID, SpreadHome: line.SpreadHomeOpen, Total: line.TotalOpen}
	}
	return nil
}

func diff(current, reference float64) decimal.Decimal {
	return decimal.NewFromFloat(current).Sub(decimal.NewFromFloat(reference))
}
