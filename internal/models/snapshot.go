package models

import "time"

// DateLayout is the partition date format (UTC calendar day)
const DateLayout = "2006-01-02"

// Snapshot is an ordered collection of lines sharing one (date, category, label) key.
// Sequence and CapturedAt form the ordering key within a partition.
type Snapshot struct {
	Date       string     `json:"date"`
	Category   string     `json:"category"`
	Label      string     `json:"label"`
	Sequence   int64      `json:"sequence"`
	CapturedAt time.Time  `json:"captured_at"`
	Games      []GameLine `json:"games"`
}

// SnapshotInfo describes a persisted snapshot without its games
type SnapshotInfo struct {
	Date       string    `json:"date"`
	Category   string    `json:"category"`
	Label      string    `json:"label"`
	Sequence   int64     `json:"sequence"`
	CapturedAt time.Time `json:"captured_at"`
	Games      int       `json:"games"`
}
