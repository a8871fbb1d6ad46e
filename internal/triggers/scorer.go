// Package triggers implements the trigger impact scorer: it extracts
// entities from item metadata, gathers contextual events from category
// fetchers, filters and ranks them by time-decayed impact, and caches
// the categorized result per item.
package triggers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/collectwise/advisor/internal/cache"
	"github.com/collectwise/advisor/internal/metrics"
	domain "github.com/collectwise/advisor/pkg/types"
)

const (
	defaultCacheTTL    = time.Hour
	minRelevance       = 0.30
	timingWindow       = 30 * 24 * time.Hour
	decayHorizonDays   = 365
	minTimeDecayWeight = 0.1
)

// Scorer computes trigger impact for items.
type Scorer struct {
	fetchers      []Fetcher
	cache         cache.Cache
	cacheTTL      time.Duration
	socialEnabled bool
	log           *slog.Logger
	nowFunc       func() time.Time
}

// ScorerOption configures the Scorer.
type ScorerOption func(*Scorer)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) ScorerOption {
	return func(s *Scorer) {
		s.log = l
	}
}

// WithCacheTTL overrides the trigger result cache TTL.
func WithCacheTTL(ttl time.Duration) ScorerOption {
	return func(s *Scorer) {
		s.cacheTTL = ttl
	}
}

// WithSocialDisabled skips the social category fetcher entirely.
func WithSocialDisabled() ScorerOption {
	return func(s *Scorer) {
		s.socialEnabled = false
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) ScorerOption {
	return func(s *Scorer) {
		s.nowFunc = f
	}
}

// NewScorer creates a Scorer over the given category fetchers.
func NewScorer(fetchers []Fetcher, c cache.Cache, opts ...ScorerOption) *Scorer {
	s := &Scorer{
		fetchers:      fetchers,
		cache:         c,
		cacheTTL:      defaultCacheTTL,
		socialEnabled: true,
		log:           slog.Default(),
		nowFunc:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the trigger impact bundle for an item. Any category
// fetch failure degrades to an empty, zero-impact result rather than
// propagating; Score never returns an error to the caller.
func (s *Scorer) Score(ctx context.Context, item domain.ItemMetadata) *domain.TriggerResult {
	key := "triggers:" + item.Key()

	if cached, ok := s.cache.Get(key); ok {
		var res domain.TriggerResult
		if err := json.Unmarshal(cached, &res); err == nil {
			metrics.TriggerCacheHitsTotal.Inc()
			return &res
		}
		s.cache.Delete(key)
	}

	now := s.nowFunc()
	entities := ExtractEntities(item)

	events, err := s.collect(ctx, entities)
	if err != nil {
		// Degraded results stay out of the cache so a transient feed
		// failure is retried on the next call instead of pinning a
		// zero-impact result for the full TTL.
		s.log.Warn("trigger collection degraded", "item", item.Key(), "error", err)
		return s.emptyResult(item, now)
	}

	filtered := filterEvents(events, entities)
	ranked := rankEvents(filtered)

	res := &domain.TriggerResult{
		ItemKey:         item.Key(),
		AggregateImpact: aggregateImpact(ranked, now),
		EventsEvaluated: len(events),
		GeneratedAt:     now,
	}

	for _, ev := range ranked {
		switch bucket(ev.Date, now) {
		case bucketActive:
			res.Active = append(res.Active, ev)
		case bucketUpcoming:
			res.Upcoming = append(res.Upcoming, ev)
		case bucketHistorical:
			res.Historical = append(res.Historical, ev)
		}
	}

	res.Recommendations = deriveRecommendations(res)

	return s.store(key, res)
}

func (s *Scorer) store(key string, res *domain.TriggerResult) *domain.TriggerResult {
	if payload, err := json.Marshal(res); err == nil {
		s.cache.Set(key, payload, s.cacheTTL)
	}
	return res
}

func (s *Scorer) emptyResult(item domain.ItemMetadata, now time.Time) *domain.TriggerResult {
	return &domain.TriggerResult{
		ItemKey:     item.Key(),
		GeneratedAt: now,
	}
}

// collect queries every enabled category fetcher. The first failure
// aborts collection; the caller degrades to an empty result.
func (s *Scorer) collect(
	ctx context.Context,
	entities domain.EntityExtraction,
) ([]domain.TriggerEvent, error) {
	var events []domain.TriggerEvent

	for _, f := range s.fetchers {
		if f.Category() == domain.CategorySocial && !s.socialEnabled {
			continue
		}

		fetched, err := f.Fetch(ctx, entities)
		if err != nil {
			metrics.TriggerCategoryFailuresTotal.
				WithLabelValues(string(f.Category())).Inc()
			return nil, fmt.Errorf("fetching %s events: %w", f.Category(), err)
		}

		metrics.TriggerEventsFetchedTotal.
			WithLabelValues(string(f.Category())).
			Add(float64(len(fetched)))
		events = append(events, fetched...)
	}

	return events, nil
}

// filterEvents drops events below the relevance floor and events whose
// title+description mention none of the extracted entities.
func filterEvents(
	events []domain.TriggerEvent,
	entities domain.EntityExtraction,
) []domain.TriggerEvent {
	out := make([]domain.TriggerEvent, 0, len(events))
	for _, ev := range events {
		if ev.Relevance < minRelevance {
			continue
		}
		if !mentionsEntity(ev.Title+" "+ev.Description, entities) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// rankEvents computes each event's impact score and sorts descending.
// Ties break by earlier date, then ID, for determinism.
func rankEvents(events []domain.TriggerEvent) []domain.TriggerEvent {
	for i := range events {
		if events[i].ImpactWeight == 0 {
			events[i].ImpactWeight = ImpactWeight(events[i].Type)
		}
		events[i].ImpactScore = events[i].Relevance * events[i].ImpactWeight
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].ImpactScore != events[j].ImpactScore {
			return events[i].ImpactScore > events[j].ImpactScore
		}
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].ID < events[j].ID
	})

	return events
}

type timingBucket int

const (
	bucketActive timingBucket = iota
	bucketUpcoming
	bucketHistorical
)

// bucket assigns an event date to exactly one timing window: active
// covers the last 30 days through now inclusive, upcoming everything
// after now, historical everything older than 30 days. The buckets
// partition the event set.
func bucket(date, now time.Time) timingBucket {
	if date.After(now) {
		return bucketUpcoming
	}
	if now.Sub(date) <= timingWindow {
		return bucketActive
	}
	return bucketHistorical
}

// aggregateImpact computes the time-decay-weighted average impact score
// over all ranked events, clamped to [0,1]. Zero events yields 0.
func aggregateImpact(events []domain.TriggerEvent, now time.Time) float64 {
	if len(events) == 0 {
		return 0
	}

	var weightedSum, weightTotal float64
	for _, ev := range events {
		days := math.Abs(now.Sub(ev.Date).Hours()) / 24
		w := math.Max(minTimeDecayWeight, 1-days/decayHorizonDays)
		weightedSum += w * ev.ImpactScore
		weightTotal += w
	}

	impact := weightedSum / weightTotal
	return math.Min(1, math.Max(0, impact))
}

// deriveRecommendations applies the fixed rule set over the categorized
// result.
func deriveRecommendations(res *domain.TriggerResult) []string {
	var recs []string

	if res.AggregateImpact > 0.7 {
		recs = append(recs, "immediate action: trigger impact is high")
	}
	if len(res.Upcoming) > 0 {
		nearest := res.Upcoming[0]
		for _, ev := range res.Upcoming[1:] {
			if ev.Date.Before(nearest.Date) {
				nearest = ev
			}
		}
		recs = append(recs, fmt.Sprintf("prepare for event: %s on %s",
			nearest.Title, nearest.Date.Format("2006-01-02")))
	}
	if len(res.Active) > 2 {
		recs = append(recs, "capitalize on momentum: multiple active triggers")
	}
	if res.AggregateImpact > 0.4 && res.AggregateImpact <= 0.7 && len(res.Active) == 0 {
		recs = append(recs, "monitor closely: moderate impact with no active triggers")
	}

	return recs
}
