package cache

import (
	"errors"
	"time"

	"github.com/cypherlabdev/sharp-lines-service/internal/models"
)

// DefaultTTL is how long live query results are served before re-entering the pipeline
const DefaultTTL = 5 * time.Minute

// ErrMiss is returned when no unexpired entry exists for a date and category
var ErrMiss = errors.New("live lines not found in cache")

// entryKey scopes live lines to the day they were built for, so an entry
// cached before midnight UTC is never served for the next day
func entryKey(date, category string) string {
	return date + ":" + category
}

func cloneLines(lines []models.GameLine) []models.GameLine {
	out := make([]models.GameLine, len(lines))
	for i := range lines {
		out[i] = lines[i].Clone()
	}
	return out
}
