package service

import (
	"context"

	"github.com/cypherlabdev/sharp-lines-service/internal/models"
	"github.com/cypherlabdev/sharp-lines-service/internal/store"
)

//go:generate mockgen -destination=../mocks/mock_service.go -package=mocks github.com/cypherlabdev/sharp-lines-service/internal/service OddsProvider,LiveCache,AlertPublisher

// OddsProvider is an interface that abstracts the upstream market-data source
type OddsProvider interface {
	FetchOdds(ctx context.Context, category string) ([]models.OddsEvent, error)
	HasCredential() bool
	Categories() []string
}

// SnapshotStore is an interface that abstracts snapshot persistence.
// Reads never fail; see store.ReadResult.
type SnapshotStore interface {
	Write(ctx context.Context, date, category, label string, lines []models.GameLine) error
	ReadExact(ctx context.Context, date, category, label string) store.ReadResult
	ReadEarliest(ctx context.Context, date, category string) store.ReadResult
	ReadLatestBefore(ctx context.Context, date, category, excludingLabel string) store.ReadResult
	ReadFallback(ctx context.Context, date, category string) store.ReadResult
}

// LiveCache is an interface that abstracts the live query cache. Entries are
// scoped to a date. Get returns cache.ErrMiss when nothing unexpired is stored.
type LiveCache interface {
	Get(ctx context.Context, date, category string) ([]models.GameLine, error)
	Set(ctx context.Context, date, category string, lines []models.GameLine) error
}

// AlertPublisher is an interface that abstracts sharp alert delivery
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, batch *models.AlertBatchMessage) error
}
