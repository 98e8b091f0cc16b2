package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/sharp-lines-service/internal/clock"
	"github.com/cypherlabdev/sharp-lines-service/internal/metrics"
	"github.com/cypherlabdev/sharp-lines-service/internal/models"
)

// FileStore persists snapshots as one JSON file per (date, category, label)
// under a flat data directory
type FileStore struct {
	dir    string
	clock  clock.Clock
	mu     sync.Mutex // serializes writes so sequence numbers stay monotonic
	logger zerolog.Logger
}

// NewFileStore creates the data directory if needed
func NewFileStore(dir string, clk clock.Clock, logger zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	return &FileStore{
		dir:    dir,
		clock:  clk,
		logger: logger.With().Str("component", "file_store").Logger(),
	}, nil
}

// Dir returns the data directory
func (s *FileStore) Dir() string {
	return s.dir
}

// Write persists lines under the key, replacing any snapshot already there
func (s *FileStore) Write(ctx context.Context, date, category, label string, lines []models.GameLine) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := Key{Date: date, Category: category, Label: label}
	if err := key.Validate(); err != nil {
		return err
	}
	if lines == nil {
		lines = []models.GameLine{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, _ := s.scan(date, category)
	var seq int64
	for _, e := range entries {
		if e.snapshot.Sequence > seq {
			seq = e.snapshot.Sequence
		}
	}

	snap := models.Snapshot{
		Date:       date,
		Category:   category,
		Label:      label,
		Sequence:   seq + 1,
		CapturedAt: s.clock.Now().UTC(),
		Games:      lines,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		metrics.SnapshotWrites.WithLabelValues(category, label, "error").Inc()
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.writeAtomic(key.FileName(), data); err != nil {
		metrics.SnapshotWrites.WithLabelValues(category, label, "error").Inc()
		return err
	}
	metrics.SnapshotWrites.WithLabelValues(category, label, "ok").Inc()

	s.logger.Info().
		Str("date", date).
		Str("category", category).
		Str("label", label).
		Int64("sequence", snap.Sequence).
		Int("count", len(lines)).
		Msg("wrote snapshot")

	return nil
}

// ReadExact returns the snapshot stored under the key
func (s *FileStore) ReadExact(ctx context.Context, date, category, label string) ReadResult {
	key := Key{Date: date, Category: category, Label: label}
	if ctx.Err() != nil || key.Validate() != nil {
		return s.observe("exact", ReadResult{Status: ReadMissing})
	}

	snap, err := s.load(key)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s.observe("exact", ReadResult{Status: ReadMissing})
	case err != nil:
		s.corrupt(key, err)
		return s.observe("exact", ReadResult{Status: ReadCorrupt})
	}
	return s.observe("exact", ReadResult{Snapshot: snap, Status: ReadFound})
}

// ReadEarliest returns the first snapshot of the partition
func (s *FileStore) ReadEarliest(ctx context.Context, date, category string) ReadResult {
	entries, skipped := s.scanContext(ctx, date, category)
	if len(entries) == 0 {
		return s.observe("earliest", emptyResult(skipped))
	}
	return s.observe("earliest", ReadResult{Snapshot: entries[0].snapshot, Status: ReadFound, Skipped: skipped})
}

// ReadLatestBefore returns the most recent snapshot of the partition other than
// excludingLabel, i.e. the one preceding a write under that label
func (s *FileStore) ReadLatestBefore(ctx context.Context, date, category, excludingLabel string) ReadResult {
	entries, skipped := s.scanContext(ctx, date, category)
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].key.Label != excludingLabel {
			return s.observe("latest_before", ReadResult{Snapshot: entries[i].snapshot, Status: ReadFound, Skipped: skipped})
		}
	}
	return s.observe("latest_before", emptyResult(skipped))
}

// ReadFallback returns the most recent snapshot of the partition regardless of label
func (s *FileStore) ReadFallback(ctx context.Context, date, category string) ReadResult {
	entries, skipped := s.scanContext(ctx, date, category)
	if len(entries) == 0 {
		return s.observe("fallback", emptyResult(skipped))
	}
	return s.observe("fallback", ReadResult{Snapshot: entries[len(entries)-1].snapshot, Status: ReadFound, Skipped: skipped})
}

// List returns the partition's snapshots in capture order
func (s *FileStore) List(ctx context.Context, date, category string) ([]models.SnapshotInfo, int) {
	entries, skipped := s.scanContext(ctx, date, category)
	infos := make([]models.SnapshotInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, models.SnapshotInfo{
			Date:       e.snapshot.Date,
			Category:   e.snapshot.Category,
			Label:      e.snapshot.Label,
			Sequence:   e.snapshot.Sequence,
			CapturedAt: e.snapshot.CapturedAt,
			Games:      len(e.snapshot.Games),
		})
	}
	return infos, skipped
}

// Ping checks that the data directory is readable
func (s *FileStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.ReadDir(s.dir); err != nil {
		return fmt.Errorf("failed to read data directory: %w", err)
	}
	return nil
}

type entry struct {
	key      Key
	snapshot *models.Snapshot
}

func (s *FileStore) scanContext(ctx context.Context, date, category string) ([]entry, int) {
	if ctx.Err() != nil {
		return nil, 0
	}
	return s.scan(date, category)
}

// scan loads every readable snapshot of a partition, ordered by capture instant,
// then sequence, then file name. Entries without a capture instant come last.
func (s *FileStore) scan(date, category string) ([]entry, int) {
	if validatePartition(date, category) != nil {
		return nil, 0
	}
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn().Err(err).Str("dir", s.dir).Msg("failed to list data directory")
		return nil, 0
	}

	prefix := date + "_" + category + "_"
	var entries []entry
	skipped := 0
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasPrefix(de.Name(), prefix) {
			continue
		}
		key, ok := parseFileName(de.Name())
		if !ok {
			continue
		}
		snap, err := s.load(key)
		if err != nil {
			s.corrupt(key, err)
			skipped++
			continue
		}
		entries = append(entries, entry{key: key, snapshot: snap})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].snapshot, entries[j].snapshot
		// Untimed legacy files (an empty array) follow every timed entry, in label order
		if aUntimed, bUntimed := a.CapturedAt.IsZero(), b.CapturedAt.IsZero(); aUntimed || bUntimed {
			if aUntimed != bUntimed {
				return bUntimed
			}
			if ra, rb := labelRank(a.Label), labelRank(b.Label); ra != rb {
				return ra < rb
			}
			return entries[i].key.FileName() < entries[j].key.FileName()
		}
		if !a.CapturedAt.Equal(b.CapturedAt) {
			return a.CapturedAt.Before(b.CapturedAt)
		}
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		return entries[i].key.FileName() < entries[j].key.FileName()
	})

	return entries, skipped
}

// labelRank orders labels by capture window; unknown labels sort last
func labelRank(label string) int {
	for i, l := range models.SnapshotLabels {
		if l == label {
			return i
		}
	}
	return len(models.SnapshotLabels)
}

// load reads one snapshot file. Files holding a bare array of games predate the
// envelope format; their ordering key comes from the newest record timestamp.
func (s *FileStore) load(key Key) (*models.Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, key.FileName()))
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty snapshot file")
	}

	if trimmed[0] == '[' {
		var games []models.GameLine
		if err := json.Unmarshal(trimmed, &games); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		snap := &models.Snapshot{Date: key.Date, Category: key.Category, Label: key.Label, Games: games}
		for _, g := range games {
			if g.SnapshotTime.After(snap.CapturedAt) {
				snap.CapturedAt = g.SnapshotTime
			}
		}
		return snap, nil
	}

	var snap models.Snapshot
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	// The file name is authoritative for the key
	snap.Date, snap.Category, snap.Label = key.Date, key.Category, key.Label
	if snap.Games == nil {
		snap.Games = []models.GameLine{}
	}
	return &snap, nil
}

// writeAtomic writes to a temp file in the same directory and renames it into place
func (s *FileStore) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}
	return nil
}

func (s *FileStore) corrupt(key Key, err error) {
	metrics.SnapshotCorruptEntries.Inc()
	s.logger.Warn().
		Err(err).
		Str("file", key.FileName()).
		Msg("treating unreadable snapshot as absent")
}

func (s *FileStore) observe(op string, r ReadResult) ReadResult {
	status := string(r.Status)
	if r.Status == ReadFound && r.Skipped > 0 {
		status = "degraded"
	}
	metrics.SnapshotReads.WithLabelValues(op, status).Inc()
	return r
}

func emptyResult(skipped int) ReadResult {
	if skipped > 0 {
		return ReadResult{Status: ReadCorrupt, Skipped: skipped}
	}
	return ReadResult{Status: ReadMissing}
}
