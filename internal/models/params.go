package models

import "github.com/shopspring/decimal"

// DetectionParams holds the sharp-action classification thresholds
type DetectionParams struct {
	PublicMajorityPct int             // Public share above which a side is the majority (55)
	SteamThreshold    decimal.Decimal // Points of movement that count as steam (1.5)
	DisplayThreshold  decimal.Decimal // Smallest movement worth displaying (0.5)
}

// DefaultDetectionParams returns the fixed policy thresholds
func DefaultDetectionParams() DetectionParams {
	return DetectionParams{
		PublicMajorityPct: 55,
		SteamThreshold:    decimal.NewFromFloat(1.5),
		DisplayThreshold:  decimal.NewFromFloat(0.5),
	}
}

// EstimationParams holds the public-money heuristic constants
type EstimationParams struct {
	FavoriteBasePct  decimal.Decimal // Share given to a pick'em favourite (55)
	FavoritePerPoint decimal.Decimal // Extra share per point of spread (1.5)
	FavoriteCapPct   decimal.Decimal // Upper bound on the favourite share (75)
	OverMinPct       float64         // Inclusive lower bound of the Over draw (53)
	OverMaxPct       float64         // Exclusive upper bound of the Over draw (65)
}

// DefaultEstimationParams returns the default heuristic constants
func DefaultEstimationParams() EstimationParams {
	return EstimationParams{
		FavoriteBasePct:  decimal.NewFromInt(55),
		FavoritePerPoint: decimal.NewFromFloat(1.5),
		FavoriteCapPct:   decimal.NewFromInt(75),
		OverMinPct:       53,
		OverMaxPct:       65,
	}
}
