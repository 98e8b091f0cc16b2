package store

import "github.com/cypherlabdev/sharp-lines-service/internal/models"

// ReadStatus tells a successful read apart from a degraded one
type ReadStatus string

const (
	ReadFound   ReadStatus = "found"
	ReadMissing ReadStatus = "missing"
	ReadCorrupt ReadStatus = "corrupt"
)

// ReadResult is the outcome of a snapshot read. Reads never fail: a missing or
// unreadable entry yields an empty snapshot with the matching status.
type ReadResult struct {
	Snapshot *models.Snapshot
	Status   ReadStatus
	Skipped  int // unreadable entries passed over while scanning a partition
}

// Found reports whether a snapshot was returned
func (r ReadResult) Found() bool {
	return r.Status == ReadFound && r.Snapshot != nil
}

// Degraded reports whether any unreadable entry was involved
func (r ReadResult) Degraded() bool {
	return r.Status == ReadCorrupt || r.Skipped > 0
}

// Lines returns the snapshot's games, or an empty collection
func (r ReadResult) Lines() []models.GameLine {
	if r.Snapshot == nil {
		return []models.GameLine{}
	}
	return r.Snapshot.Games
}

// Label returns the snapshot label, or "" when nothing was found
func (r ReadResult) Label() string {
	if r.Snapshot == nil {
		return ""
	}
	return r.Snapshot.Label
}
