// Package store defines the datastore abstraction for the advisor.
// All business logic depends on the Store interface, never on concrete
// implementations. This enables fake-based testing without a running
// database.
package store

import (
	"context"
	"errors"

	domain "github.com/collectwise/advisor/pkg/types"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store defines all data access operations for the advisor.
type Store interface {
	// Collection archive
	SaveCollectionResult(ctx context.Context, res *domain.CollectionResult) error
	ListCollectionResults(ctx context.Context, query string, limit int) ([]domain.CollectionResult, error)

	// Recommendations
	SaveRecommendation(ctx context.Context, rec *domain.Recommendation) error
	GetRecommendation(ctx context.Context, id string) (*domain.Recommendation, error)
	ListRecommendations(ctx context.Context, itemKey string, limit int) ([]domain.Recommendation, error)

	// Watched items
	CreateWatchedItem(ctx context.Context, w *domain.WatchedItem) error
	GetWatchedItem(ctx context.Context, id string) (*domain.WatchedItem, error)
	ListWatchedItems(ctx context.Context, enabledOnly bool) ([]domain.WatchedItem, error)
	DeleteWatchedItem(ctx context.Context, id string) error
	SetWatchedItemEnabled(ctx context.Context, id string, enabled bool) error
	MarkWatchedItemAdvised(ctx context.Context, id string) error

	// Migrations
	Migrate(ctx context.Context) ([]string, error)

	// Health
	Ping(ctx context.Context) error
}
