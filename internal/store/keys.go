package store

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cypherlabdev/sharp-lines-service/internal/models"
)

const fileExt = ".json"

var keyPart = regexp.MustCompile(`^[a-z0-9-]+$`)

// Key identifies one snapshot
type Key struct {
	Date     string
	Category string
	Label    string
}

// Validate checks that every part is safe to embed in a file name
func (k Key) Validate() error {
	if err := validatePartition(k.Date, k.Category); err != nil {
		return err
	}
	if !keyPart.MatchString(k.Label) {
		return fmt.Errorf("invalid snapshot label: %q", k.Label)
	}
	return nil
}

// FileName returns {date}_{category}_{label}.json
func (k Key) FileName() string {
	return k.Date + "_" + k.Category + "_" + k.Label + fileExt
}

// parseFileName reverses FileName; ok is false for foreign files
func parseFileName(name string) (Key, bool) {
	if !strings.HasSuffix(name, fileExt) {
		return Key{}, false
	}
	parts := strings.Split(strings.TrimSuffix(name, fileExt), "_")
	if len(parts) != 3 {
		return Key{}, false
	}
	k := Key{Date: parts[0], Category: parts[1], Label: parts[2]}
	if k.Validate() != nil {
		return Key{}, false
	}
	return k, true
}

func validatePartition(date, category string) error {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return fmt.Errorf("invalid snapshot date: %q", date)
	}
	if !keyPart.MatchString(category) {
		return fmt.Errorf("invalid snapshot category: %q", category)
	}
	return nil
}
