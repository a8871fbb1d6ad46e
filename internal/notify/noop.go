package notify

import (
	"context"
	"log/slog"

	domain "github.com/collectwise/advisor/pkg/types"
)

// NoOpNotifier implements Notifier by logging discarded recommendations.
// It is used when Discord (or another notification backend) is not
// configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards recommendations with
// a log message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// SendRecommendation logs and discards a recommendation.
func (n *NoOpNotifier) SendRecommendation(
	_ context.Context,
	item domain.ItemMetadata,
	rec *domain.Recommendation,
) error {
	n.log.Debug("notification discarded (no backend configured)",
		"item", item.Key(),
		"action", rec.Primary.Action,
		"score", rec.Primary.Score,
	)
	return nil
}
