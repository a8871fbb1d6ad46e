// Package normalize turns cleaned listings into per-item market
// intelligence snapshots and trend analyses using descriptive
// statistics over observed prices. Items are implied by listing title:
// listings whose titles normalize to the same query key belong to the
// same item.
package normalize

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/collectwise/advisor/internal/collector"
	domain "github.com/collectwise/advisor/pkg/types"
)

const (
	// activitySaturation is the listing count at which the activity
	// score reaches 1.0.
	activitySaturation = 20

	// stableBandFraction is the relative price drift below which the
	// trend direction is reported as stable.
	stableBandFraction = 0.03
)

// Analyzer implements the collector's Normalizer contract with basic
// price statistics.
type Analyzer struct {
	nowFunc func() time.Time
}

// AnalyzerOption configures the Analyzer.
type AnalyzerOption func(*Analyzer)

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		a.nowFunc = f
	}
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{nowFunc: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Normalize groups listings into implied items and produces one market
// intelligence snapshot per item.
func (a *Analyzer) Normalize(
	_ context.Context,
	listings []domain.CleanedListing,
) (map[string]domain.MarketIntelligence, error) {
	now := a.nowFunc()
	out := make(map[string]domain.MarketIntelligence)

	for key, group := range groupByItem(listings) {
		prices := sortedPrices(group)

		out[key] = domain.MarketIntelligence{
			ItemKey:      key,
			CurrentPrice: median(prices),
			PriceRange: domain.PriceRange{
				Min: prices[0],
				Max: prices[len(prices)-1],
			},
			ActivityScore: math.Min(1, float64(len(group))/activitySaturation),
			DataQuality:   dataQuality(group),
			UpdatedAt:     now,
		}
	}

	return out, nil
}

// AnalyzeTrends produces one trend analysis per implied item from the
// price series ordered by fetch time.
func (a *Analyzer) AnalyzeTrends(
	_ context.Context,
	listings []domain.CleanedListing,
) (map[string]domain.TrendAnalysis, error) {
	out := make(map[string]domain.TrendAnalysis)

	for key, group := range groupByItem(listings) {
		out[key] = analyzeGroup(group)
	}

	return out, nil
}

func groupByItem(listings []domain.CleanedListing) map[string][]domain.CleanedListing {
	groups := make(map[string][]domain.CleanedListing)
	for _, l := range listings {
		key := collector.NormalizeQuery(l.Title)
		groups[key] = append(groups[key], l)
	}
	return groups
}

func sortedPrices(group []domain.CleanedListing) []float64 {
	prices := make([]float64, len(group))
	for i, l := range group {
		prices[i] = l.Price
	}
	sort.Float64s(prices)
	return prices
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// quantile returns the q-th quantile of a sorted series using
// nearest-rank interpolation.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// dataQuality scores a listing group by how complete its records are:
// known condition, named seller, and more than one contributing source
// each add confidence.
func dataQuality(group []domain.CleanedListing) float64 {
	var known, sellers float64
	sources := make(map[string]bool)

	for _, l := range group {
		if l.Condition != domain.ConditionUnknown {
			known++
		}
		if l.Seller != "" {
			sellers++
		}
		sources[l.Source] = true
	}

	n := float64(len(group))
	quality := 0.5*(known/n) + 0.3*(sellers/n)
	if len(sources) > 1 {
		quality += 0.2
	}
	return math.Round(quality*100) / 100
}

// analyzeGroup derives a trend from the group's price series in fetch
// order. With fewer than two observations the trend is stable with
// zero strength.
func analyzeGroup(group []domain.CleanedListing) domain.TrendAnalysis {
	ordered := make([]domain.CleanedListing, len(group))
	copy(ordered, group)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].FetchedAt.Before(ordered[j].FetchedAt)
	})

	series := make([]float64, len(ordered))
	for i, l := range ordered {
		series[i] = l.Price
	}

	sorted := make([]float64, len(series))
	copy(sorted, series)
	sort.Float64s(sorted)

	ta := domain.TrendAnalysis{
		Direction:  domain.TrendStable,
		Support:    quantile(sorted, 0.25),
		Resistance: quantile(sorted, 0.75),
		Volatility: relativeStdDev(series),
	}

	if len(series) < 2 {
		return ta
	}

	earlier := mean(series[:len(series)/2])
	later := mean(series[len(series)/2:])
	overall := mean(series)
	if overall == 0 {
		return ta
	}

	drift := (later - earlier) / overall
	switch {
	case drift > stableBandFraction:
		ta.Direction = domain.TrendUpward
	case drift < -stableBandFraction:
		ta.Direction = domain.TrendDownward
	}

	ta.Strength = math.Min(1, math.Abs(drift)*5)
	ta.Momentum = math.Min(1, math.Max(-1, drift*5))

	return ta
}

func mean(series []float64) float64 {
	var sum float64
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

// relativeStdDev is the coefficient of variation clamped to [0,1].
func relativeStdDev(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}

	m := mean(series)
	if m == 0 {
		return 0
	}

	var sq float64
	for _, v := range series {
		sq += (v - m) * (v - m)
	}
	sd := math.Sqrt(sq / float64(len(series)))

	return math.Min(1, sd/m)
}
