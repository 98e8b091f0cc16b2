package estimator

import (
	"math/rand/v2"
	"sync"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cypherlabdev/sharp-lines-service/internal/models"
)

// Source yields a uniform variate in [0, 1) for the totals draw of one line
type Source interface {
	Uniform(line models.GameLine) float64
}

// PerCallSource draws a fresh variate on every call, so repeated estimates of
// the same line differ
type PerCallSource struct {
	mu   sync.Mutex
	dist distuv.Uniform
}

// NewPerCallSource creates a per-call source seeded with seed
func NewPerCallSource(seed uint64) *PerCallSource {
	return &PerCallSource{
		dist: distuv.Uniform{Min: 0, Max: 1, Src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)},
	}
}

// Uniform implements Source
func (s *PerCallSource) Uniform(models.GameLine) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dist.Rand()
}

// PerEventSource derives the variate from the event ID and snapshot label, so the
// estimate for one event is stable within a label
type PerEventSource struct{}

// Uniform implements Source
func (PerEventSource) Uniform(line models.GameLine) float64 {
	seed := xxhash.Sum64String(line.Category + "|" + line.ID + "|" + line.SnapshotLabel)
	dist := distuv.Uniform{Min: 0, Max: 1, Src: rand.NewPCG(seed, ^seed)}
	return dist.Rand()
}

// FixedSource always returns the same variate
type FixedSource float64

// Uniform implements Source
func (f FixedSource) Uniform(models.GameLine) float64 {
	return float64(f)
}
