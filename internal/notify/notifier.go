// Package notify defines the notification interface and implementations
// for recommendation delivery.
package notify

import (
	"context"

	domain "github.com/collectwise/advisor/pkg/types"
)

// Notifier defines the interface for delivering fresh recommendations.
type Notifier interface {
	SendRecommendation(ctx context.Context, item domain.ItemMetadata, rec *domain.Recommendation) error
}
