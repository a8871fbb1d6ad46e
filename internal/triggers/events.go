package triggers

import (
	"context"

	domain "github.com/collectwise/advisor/pkg/types"
)

// Fetcher collects contextual events for one category. Implementations
// wrap external feeds (entertainment listings, news wires, social trend
// APIs, precomputed historical correlations) and must be deterministic
// for a given upstream state.
type Fetcher interface {
	Category() domain.TriggerCategory
	Fetch(ctx context.Context, entities domain.EntityExtraction) ([]domain.TriggerEvent, error)
}

// impactWeights is the fixed per-event-type impact multiplier table.
var impactWeights = map[string]float64{
	"trailer_release":     0.9,
	"movie_announcement":  0.8,
	"tv_series":           0.7,
	"casting_news":        0.6,
	"historical_pattern":  0.6,
	"creator_news":        0.5,
	"industry_news":       0.4,
	"social_trend":        0.4,
	"merchandise_release": 0.3,
}

const defaultImpactWeight = 0.3

// ImpactWeight returns the fixed impact multiplier for an event type.
func ImpactWeight(eventType string) float64 {
	if w, ok := impactWeights[eventType]; ok {
		return w
	}
	return defaultImpactWeight
}
