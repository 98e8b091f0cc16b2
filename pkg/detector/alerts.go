package detector

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/sharp-lines-service/internal/models"
)

// Direction of a displayed line change
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Movement is a line change large enough to display
type Movement struct {
	Direction Direction `json:"direction"`
	Points    float64   `json:"points"`
}

// LineChange returns the movement from open to current when it reaches the
// display threshold, or nil
func (d *Detector) LineChange(current, open *float64) *Movement {
	if current == nil || open == nil {
		return nil
	}
	delta := diff(*current, *open)
	if delta.Abs().LessThan(d.params.DisplayThreshold) {
		return nil
	}
	dir := DirectionDown
	if delta.IsPositive() {
		dir = DirectionUp
	}
	return &Movement{Direction: dir, Points: delta.Abs().InexactFloat64()}
}

// HasSharpAction reports whether any classification flag is set on the line
func HasSharpAction(line models.GameLine) bool {
	return line.SharpSide != nil || line.SharpTotal != nil || line.SteamMove || line.RLMSide || line.RLMTotal
}

// Alerts describes the sharp signals on an already-classified line
func (d *Detector) Alerts(line models.GameLine) []models.SharpAlert {
	var alerts []models.SharpAlert
	newAlert := func(typ models.AlertType, market models.AlertMarket, side, desc string) models.SharpAlert {
		return models.SharpAlert{
			GameID:      line.ID,
			Category:    line.Category,
			Home:        line.Home,
			Away:        line.Away,
			Type:        typ,
			Market:      market,
			Side:        side,
			Description: desc,
		}
	}

	if line.RLMSide && line.SharpSide != nil && line.SpreadHomeOpen != nil && line.SpreadHome != nil {
		switch *line.SharpSide {
		case models.SideAway:
			alerts = append(alerts, newAlert(models.AlertRLM, models.AlertMarketSpread, line.Away,
				fmt.Sprintf("%d%% public on %s, but line moved from %s to %s",
					deref(line.PublicHomePct), line.Home, formatSpread(*line.SpreadHomeOpen), formatSpread(*line.SpreadHome))))
		case models.SideHome:
			alerts = append(alerts, newAlert(models.AlertRLM, models.AlertMarketSpread, line.Home,
				fmt.Sprintf("%d%% public on %s, but line moved from %s to %s",
					deref(line.PublicAwayPct), line.Away, formatSpread(*line.SpreadHomeOpen), formatSpread(*line.SpreadHome))))
		}
	}

	if line.RLMTotal && line.SharpTotal != nil && line.TotalOpen != nil && line.Total != nil {
		switch *line.SharpTotal {
		case models.TotalUnder:
			alerts = append(alerts, newAlert(models.AlertRLM, models.AlertMarketTotal, "Under",
				fmt.Sprintf("%d%% public on Over, but total dropped from %s to %s",
					deref(line.PublicOverPct), formatPoints(*line.TotalOpen), formatPoints(*line.Total))))
		case models.TotalOver:
			alerts = append(alerts, newAlert(models.AlertRLM, models.AlertMarketTotal, "Over",
				fmt.Sprintf("%d%% public on Under, but total rose from %s to %s",
					deref(line.PublicUnderPct), formatPoints(*line.TotalOpen), formatPoints(*line.Total))))
		}
	}

	if line.SteamMove {
		// Lines stored without steam references are measured from their opening values
		legacy := line.SteamSpreadFrom == nil && line.SteamTotalFrom == nil
		if from := steamFrom(line.SteamSpreadFrom, line.SpreadHomeOpen, legacy); line.SpreadHome != nil && from != nil {
			delta := diff(*line.SpreadHome, *from)
			if delta.Abs().GreaterThanOrEqual(d.params.SteamThreshold) {
				side := line.Home
				if delta.IsPositive() {
					side = line.Away
				}
				alerts = append(alerts, newAlert(models.AlertSteam, models.AlertMarketSpread, side,
					fmt.Sprintf("Spread moved %s pts: %s to %s",
						delta.Abs().StringFixed(1), formatSpread(*from), formatSpread(*line.SpreadHome))))
			}
		}
		if from := steamFrom(line.SteamTotalFrom, line.TotalOpen, legacy); line.Total != nil && from != nil {
			delta := diff(*line.Total, *from)
			if delta.Abs().GreaterThanOrEqual(d.params.SteamThreshold) {
				side := "Under"
				if delta.IsPositive() {
					side = "Over"
				}
				alerts = append(alerts, newAlert(models.AlertSteam, models.AlertMarketTotal, side,
					fmt.Sprintf("Total moved %s pts: %s to %s",
						delta.Abs().StringFixed(1), formatPoints(*from), formatPoints(*line.Total))))
			}
		}
	}

	return alerts
}

// AlertsBatch collects alerts for every line with sharp action
func (d *Detector) AlertsBatch(lines []models.GameLine) []models.SharpAlert {
	var alerts []models.SharpAlert
	for _, l := range lines {
		if HasSharpAction(l) {
			alerts = append(alerts, d.Alerts(l)...)
		}
	}
	return alerts
}

func steamFrom(recorded, open *float64, legacy bool) *float64 {
	if legacy {
		return open
	}
	return recorded
}

func formatSpread(v float64) string {
	s := formatPoints(v)
	if v > 0 {
		return "+" + s
	}
	return s
}

func formatPoints(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
