package models

import "time"

// Side is the spread side a classification points to
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// TotalSide is the totals side a classification points to
type TotalSide string

const (
	TotalOver  TotalSide = "over"
	TotalUnder TotalSide = "under"
)

// Snapshot labels. LabelOpening and LabelMidday are the scheduled capture windows,
// LabelLatest requests the freshest data and LabelLive tags records built on demand.
const (
	LabelOpening = "10pm"
	LabelMidday  = "12pm"
	LabelLatest  = "latest"
	LabelLive    = "live"
)

// SnapshotLabels lists the labels a client may request, in capture order
var SnapshotLabels = []string{LabelOpening, LabelMidday, LabelLatest}

// IsSnapshotLabel reports whether label is one of the requestable labels
func IsSnapshotLabel(label string) bool {
	for _, l := range SnapshotLabels {
		if l == label {
			return true
		}
	}
	return false
}

// GameLine is one event's market snapshot
type GameLine struct {
	ID           string    `json:"id"`
	Category     string    `json:"sport"`
	Home         string    `json:"home"`
	Away         string    `json:"away"`
	CommenceTime time.Time `json:"commence"`

	SpreadHome    *float64 `json:"spread_home"`
	SpreadAway    *float64 `json:"spread_away"`
	Total         *float64 `json:"total"`
	MoneylineHome *int     `json:"ml_home"`
	MoneylineAway *int     `json:"ml_away"`

	// Opening references, nil until resolved against an earlier snapshot
	SpreadHomeOpen    *float64 `json:"spread_home_open"`
	TotalOpen         *float64 `json:"total_open"`
	MoneylineHomeOpen *int     `json:"ml_home_open"`
	MoneylineAwayOpen *int     `json:"ml_away_open"`

	// Estimated public split (heuristic, not measured)
	PublicHomePct  *int `json:"public_home_pct"`
	PublicAwayPct  *int `json:"public_away_pct"`
	PublicOverPct  *int `json:"public_over_pct"`
	PublicUnderPct *int `json:"public_under_pct"`

	SharpSide  *Side      `json:"sharp_side"`
	SharpTotal *TotalSide `json:"sharp_total"`
	SteamMove  bool       `json:"steam_move"`
	RLMSide    bool       `json:"rlm_side"`
	RLMTotal   bool       `json:"rlm_total"`

	// Reference values a steam move was measured from, nil when that market did not steam
	SteamSpreadFrom *float64 `json:"steam_spread_from,omitempty"`
	SteamTotalFrom  *float64 `json:"steam_total_from,omitempty"`

	SnapshotTime  time.Time `json:"snapshot_time"`
	SnapshotLabel string    `json:"snapshot_label"`
}

// HasSpread reports whether the home spread is resolved
func (g *GameLine) HasSpread() bool {
	return g.SpreadHome != nil
}

// HasTotal reports whether the total line is resolved
func (g *GameLine) HasTotal() bool {
	return g.Total != nil
}

// HasOpening reports whether any opening reference has been resolved
func (g *GameLine) HasOpening() bool {
	return g.SpreadHomeOpen != nil || g.TotalOpen != nil ||
		g.MoneylineHomeOpen != nil || g.MoneylineAwayOpen != nil
}

// Clone returns a deep copy so callers can modify pointer fields freely
func (g GameLine) Clone() GameLine {
	c := g
	c.SpreadHome = cloneFloat(g.SpreadHome)
	c.SpreadAway = cloneFloat(g.SpreadAway)
	c.Total = cloneFloat(g.Total)
	c.MoneylineHome = cloneInt(g.MoneylineHome)
	c.MoneylineAway = cloneInt(g.MoneylineAway)
	c.SpreadHomeOpen = cloneFloat(g.SpreadHomeOpen)
	c.TotalOpen = cloneFloat(g.TotalOpen)
	c.MoneylineHomeOpen = cloneInt(g.MoneylineHomeOpen)
	c.MoneylineAwayOpen = cloneInt(g.MoneylineAwayOpen)
	c.PublicHomePct = cloneInt(g.PublicHomePct)
	c.PublicAwayPct = cloneInt(g.PublicAwayPct)
	c.PublicOverPct = cloneInt(g.PublicOverPct)
	c.PublicUnderPct = cloneInt(g.PublicUnderPct)
	c.SteamSpreadFrom = cloneFloat(g.SteamSpreadFrom)
	c.SteamTotalFrom = cloneFloat(g.SteamTotalFrom)
	if g.SharpSide != nil {
		s := *g.SharpSide
		c.SharpSide = &s
	}
	if g.SharpTotal != nil {
		t := *g.SharpTotal
		c.SharpTotal = &t
	}
	return c
}

// IndexByID maps event ID to line for reference lookups
func IndexByID(lines []GameLine) map[string]*GameLine {
	idx := make(map[string]*GameLine, len(lines))
	for i := range lines {
		idx[lines[i].ID] = &lines[i]
	}
	return idx
}

// Float returns a pointer to v
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v
func Int(v int) *int { return &v }

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
