package models

import "time"

// Market keys published by the upstream provider
const (
	MarketSpreads = "spreads"
	MarketTotals  = "totals"
	MarketH2H     = "h2h"
)

// Outcome names used by totals markets
const (
	OutcomeOver  = "Over"
	OutcomeUnder = "Under"
)

// OddsEvent represents one raw event from the market-data provider
type OddsEvent struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title,omitempty"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	CommenceTime time.Time   `json:"commence_time"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker is one book's quote set for an event
type Bookmaker struct {
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update,omitempty"`
	Markets    []Market  `json:"markets"`
}

// Market is a single market (spreads, totals, h2h) offered by a bookmaker
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is one priced side of a market
type Outcome struct {
	Name  string   `json:"name"`
	Price int      `json:"price"`           // American odds
	Point *float64 `json:"point,omitempty"` // For spreads/totals
}

// FindMarket returns the market with the given key, or nil
func (b Bookmaker) FindMarket(key string) *Market {
	for i := range b.Markets {
		if b.Markets[i].Key == key {
			return &b.Markets[i]
		}
	}
	return nil
}

// FindOutcome returns the outcome with the given name, or nil
func (m *Market) FindOutcome(name string) *Outcome {
	if m == nil {
		return nil
	}
	for i := range m.Outcomes {
		if m.Outcomes[i].Name == name {
			return &m.Outcomes[i]
		}
	}
	return nil
}
