package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cypherlabdev/sharp-lines-service/internal/clock"
	"github.com/cypherlabdev/sharp-lines-service/internal/models"
	"github.com/cypherlabdev/sharp-lines-service/internal/store"
	"github.com/cypherlabdev/sharp-lines-service/pkg/detector"
)

// demoGame is a sample line with an opening reference and a fixed public split
type demoGame struct {
	id, home, away         string
	startsIn               time.Duration
	spread, total          float64
	mlHome, mlAway         int
	spreadOpen, totalOpen  float64
	mlHomeOpen, mlAwayOpen int
	publicHome, publicOver int
}

var demoGames = map[string][]demoGame{
	"nba": {
		{"nba1", "Los Angeles Lakers", "Boston Celtics", 24 * time.Hour, -3.5, 224.5, -165, 140, -2.5, 223, -145, 125, 68, 62},
		{"nba2", "Golden State Warriors", "Denver Nuggets", 25 * time.Hour, 1.5, 231, 110, -130, 2.5, 232.5, 120, -140, 45, 58},
		{"nba3", "Philadelphia 76ers", "Milwaukee Bucks", 25*time.Hour + 50*time.Minute, 5.5, 218.5, 200, -245, 6, 219, 210, -260, 35, 51},
		{"nba4", "Miami Heat", "New York Knicks", 26*time.Hour + 23*time.Minute, -1, 210, -115, -105, -1.5, 211.5, -125, 105, 52, 55},
	},
	"nhl": {
		{"nhl1", "Toronto Maple Leafs", "Montreal Canadiens", 24 * time.Hour, -1.5, 6.5, -180, 155, -1.5, 6, -170, 145, 72, 64},
		{"nhl2", "Colorado Avalanche", "Vegas Golden Knights", 25*time.Hour + 50*time.Minute, -1.5, 6, -145, 125, -1.5, 6.5, -155, 130, 58, 48},
		{"nhl3", "New York Rangers", "Carolina Hurricanes", 25 * time.Hour, 1.5, 5.5, 130, -155, 1.5, 5.5, 140, -165, 40, 52},
	},
	"cbb": {
		{"cbb1", "Duke Blue Devils", "North Carolina Tar Heels", 24 * time.Hour, -4.5, 148, -200, 170, -3.5, 147, -180, 155, 75, 58},
		{"cbb2", "Kansas Jayhawks", "Houston Cougars", 25 * time.Hour, -2, 135.5, -130, 110, -3, 136.5, -150, 125, 55, 50},
		{"cbb3", "UConn Huskies", "Marquette Golden Eagles", 25*time.Hour + 50*time.Minute, -6.5, 142, -280, 225, -7, 143, -300, 240, 70, 55},
	},
}

// seedDemo writes one classified sample snapshot per category under label for
// today's date and returns that date
func seedDemo(ctx context.Context, st *store.FileStore, det *detector.Detector, clk clock.Clock, label string) (string, error) {
	if !models.IsSnapshotLabel(label) {
		return "", fmt.Errorf("unknown snapshot label %q", label)
	}

	now := clk.Now().UTC()
	date := now.Format(time.DateOnly)

	for category, games := range demoGames {
		lines := make([]models.GameLine, 0, len(games))
		for _, g := range games {
			lines = append(lines, det.Detect(g.line(category, now, label), nil, nil))
		}
		if err := st.Write(ctx, date, category, label, lines); err != nil {
			return "", fmt.Errorf("failed to write demo %s snapshot: %w", category, err)
		}
	}

	return date, nil
}

func (g demoGame) line(category string, now time.Time, label string) models.GameLine {
	return models.GameLine{
		ID:                g.id,
		Category:          category,
		Home:              g.home,
		Away:              g.away,
		CommenceTime:      now.Add(g.startsIn),
		SpreadHome:        models.Float(g.spread),
		SpreadAway:        models.Float(-g.spread),
		Total:             models.Float(g.total),
		MoneylineHome:     models.Int(g.mlHome),
		MoneylineAway:     models.Int(g.mlAway),
		SpreadHomeOpen:    models.Float(g.spreadOpen),
		TotalOpen:         models.Float(g.totalOpen),
		MoneylineHomeOpen: models.Int(g.mlHomeOpen),
		MoneylineAwayOpen: models.Int(g.mlAwayOpen),
		PublicHomePct:     models.Int(g.publicHome),
		PublicAwayPct:     models.Int(100 - g.publicHome),
		PublicOverPct:     models.Int(g.publicOver),
		PublicUnderPct:    models.Int(100 - g.publicOver),
		SnapshotTime:      now,
		SnapshotLabel:     label,
	}
}
