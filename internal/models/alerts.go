package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertType classifies a sharp-money alert
type AlertType string

const (
	AlertRLM   AlertType = "rlm"
	AlertSteam AlertType = "steam"
)

// AlertMarket is the market an alert refers to
type AlertMarket string

const (
	AlertMarketSpread AlertMarket = "spread"
	AlertMarketTotal  AlertMarket = "total"
)

// SharpAlert describes one sharp-money signal on a game
type SharpAlert struct {
	GameID      string      `json:"game_id"`
	Category    string      `json:"sport"`
	Home        string      `json:"home"`
	Away        string      `json:"away"`
	Type        AlertType   `json:"type"`
	Market      AlertMarket `json:"market"`
	Side        string      `json:"side"`
	Description string      `json:"description"`
}

// AlertBatchMessage is the Kafka message published after an ingestion run
type AlertBatchMessage struct {
	MessageID uuid.UUID    `json:"message_id"`
	RunID     uuid.UUID    `json:"run_id"`
	Date      string       `json:"date"`
	Category  string       `json:"sport"`
	Label     string       `json:"label"`
	Alerts    []SharpAlert `json:"alerts"`
	Timestamp time.Time    `json:"timestamp"`
}
