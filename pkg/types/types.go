// Package domain defines the core business types for the collectible
// market advisor.
package domain

import (
	"sort"
	"time"
)

// Action is a recommended course of action for an item.
type Action string

// Action constants.
const (
	ActionListNow Action = "list_now"
	ActionHold    Action = "hold"
	ActionGrade   Action = "grade"
	ActionMonitor Action = "monitor"
)

// ActionPriority is the canonical evaluation order for actions. The
// primary recommendation is chosen by iterating this slice and keeping
// the strictly greatest score, so earlier actions win ties. Fixture
// reproducibility depends on this order; do not reorder.
var ActionPriority = []Action{ActionListNow, ActionHold, ActionGrade, ActionMonitor}

// Label returns a human-readable form of the action.
func (a Action) Label() string {
	switch a {
	case ActionListNow:
		return "List Now"
	case ActionHold:
		return "Hold"
	case ActionGrade:
		return "Grade"
	case ActionMonitor:
		return "Monitor"
	default:
		return string(a)
	}
}

// Condition is a canonical collectible condition grade.
type Condition string

// Condition constants, ordered best to worst.
const (
	ConditionMint     Condition = "Mint"
	ConditionNearMint Condition = "Near Mint"
	ConditionVeryFine Condition = "Very Fine"
	ConditionFine     Condition = "Fine"
	ConditionVeryGood Condition = "Very Good"
	ConditionGood     Condition = "Good"
	ConditionFair     Condition = "Fair"
	ConditionPoor     Condition = "Poor"
	ConditionUnknown  Condition = "Unknown"
)

// TrendDirection describes the direction of a price trend.
type TrendDirection string

// Trend direction constants.
const (
	TrendUpward   TrendDirection = "upward"
	TrendDownward TrendDirection = "downward"
	TrendStable   TrendDirection = "stable"
)

// TriggerCategory identifies the feed an external event came from.
type TriggerCategory string

// Trigger category constants.
const (
	CategoryEntertainment TriggerCategory = "entertainment"
	CategoryNews          TriggerCategory = "news"
	CategorySocial        TriggerCategory = "social"
	CategoryHistorical    TriggerCategory = "historical"
)

// Urgency grades how quickly a recommendation should be acted on.
type Urgency string

// Urgency constants.
const (
	UrgencyImmediate Urgency = "immediate"
	UrgencyHigh      Urgency = "high"
	UrgencyMedium    Urgency = "medium"
	UrgencyLow       Urgency = "low"
)

// RiskTolerance is a user's appetite for risk.
type RiskTolerance string

// Risk tolerance constants.
const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

// InvestmentHorizon is the user's intended holding period.
type InvestmentHorizon string

// Investment horizon constants.
const (
	HorizonShortTerm  InvestmentHorizon = "short_term"
	HorizonMediumTerm InvestmentHorizon = "medium_term"
	HorizonLongTerm   InvestmentHorizon = "long_term"
)

// SearchOptions narrows a collection query.
type SearchOptions struct {
	MaxResults int      `json:"max_results,omitempty"`
	Condition  string   `json:"condition,omitempty"`
	MinPrice   *float64 `json:"min_price,omitempty"`
	MaxPrice   *float64 `json:"max_price,omitempty"`
}

// RawListing is a single record as returned by one source adapter,
// before validation or cleaning.
type RawListing struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency,omitempty"`
	Condition string    `json:"condition,omitempty"`
	URL       string    `json:"url"`
	Seller    string    `json:"seller,omitempty"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CleanedListing is a RawListing that passed validation: text trimmed
// and collapsed, price rounded to two decimals, condition mapped to the
// canonical vocabulary.
type CleanedListing struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency,omitempty"`
	Condition Condition `json:"condition"`
	URL       string    `json:"url"`
	Seller    string    `json:"seller,omitempty"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// PriceRange is an observed min/max price band.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SourceListings holds one source's contribution to a collection result.
type SourceListings struct {
	RawCount int              `json:"raw_count"`
	Listings []CleanedListing `json:"listings"`
}

// CollectionSummary aggregates statistics across all sources of one
// collection run.
type CollectionSummary struct {
	TotalListings      int        `json:"total_listings"`
	PriceRange         PriceRange `json:"price_range"`
	DistinctConditions []string   `json:"distinct_conditions,omitempty"`
	DistinctSellers    []string   `json:"distinct_sellers,omitempty"`
	ElapsedMS          int64      `json:"elapsed_ms"`
}

// CollectionResult is the aggregate outcome of one collection query.
// Immutable once built; cached by normalized query with a TTL.
type CollectionResult struct {
	Query                  string                        `json:"query"`
	Options                SearchOptions                 `json:"options"`
	Sources                map[string]SourceListings     `json:"sources"`
	Errors                 map[string]string             `json:"errors,omitempty"`
	Warnings               []string                      `json:"warnings,omitempty"`
	Summary                CollectionSummary             `json:"summary"`
	MarketplacesSearched   int                           `json:"marketplaces_searched"`
	MarketplacesSuccessful int                           `json:"marketplaces_successful"`
	Intelligence           map[string]MarketIntelligence `json:"intelligence,omitempty"`
	Trends                 map[string]TrendAnalysis      `json:"trends,omitempty"`
	CollectedAt            time.Time                     `json:"collected_at"`
}

// AllListings returns every cleaned listing across sources. Sources are
// visited in sorted name order so the flattened order is deterministic;
// within a source, adapter-returned order is preserved.
func (r *CollectionResult) AllListings() []CleanedListing {
	names := make([]string, 0, len(r.Sources))
	for name := range r.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []CleanedListing
	for _, name := range names {
		out = append(out, r.Sources[name].Listings...)
	}
	return out
}

// MarketIntelligence is the canonical per-item market snapshot produced
// by the normalizer.
type MarketIntelligence struct {
	ItemKey       string     `json:"item_key"`
	CurrentPrice  float64    `json:"current_price"`
	PriceRange    PriceRange `json:"price_range"`
	ActivityScore float64    `json:"activity_score"`
	DataQuality   float64    `json:"data_quality"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TrendAnalysis describes the price trend for one item.
type TrendAnalysis struct {
	Direction  TrendDirection `json:"direction"`
	Strength   float64        `json:"strength"`
	Momentum   float64        `json:"momentum"`
	Volatility float64        `json:"volatility"`
	Support    float64        `json:"support"`
	Resistance float64        `json:"resistance"`
}

// ItemMetadata identifies and describes one collectible item. Either
// the title or the identifier may stand alone.
type ItemMetadata struct {
	ID        string   `json:"id,omitempty"`
	Title     string   `json:"title,omitempty"`
	Publisher string   `json:"publisher,omitempty"`
	Issue     string   `json:"issue,omitempty"`
	Creators  []string `json:"creators,omitempty"`
}

// Key returns the cache/archival key for the item: title plus publisher,
// falling back to the identifier when the title is absent.
func (m ItemMetadata) Key() string {
	if m.Title == "" {
		return m.ID
	}
	return m.Title + "|" + m.Publisher
}

// EntityExtraction holds the deduplicated entity sets derived from an
// item's metadata.
type EntityExtraction struct {
	Characters []string `json:"characters,omitempty"`
	Publishers []string `json:"publishers,omitempty"`
	Series     []string `json:"series,omitempty"`
	Creators   []string `json:"creators,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
}

// TriggerEvent is one contextual market-moving event.
type TriggerEvent struct {
	ID           string          `json:"id"`
	Category     TriggerCategory `json:"category"`
	Type         string          `json:"type"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Date         time.Time       `json:"date"`
	Relevance    float64         `json:"relevance"`
	ImpactWeight float64         `json:"impact_weight"`
	ImpactScore  float64         `json:"impact_score"`
}

// TriggerResult is the categorized trigger bundle for one item.
type TriggerResult struct {
	ItemKey         string         `json:"item_key"`
	Active          []TriggerEvent `json:"active,omitempty"`
	Upcoming        []TriggerEvent `json:"upcoming,omitempty"`
	Historical      []TriggerEvent `json:"historical,omitempty"`
	AggregateImpact float64        `json:"aggregate_impact"`
	Recommendations []string       `json:"recommendations,omitempty"`
	EventsEvaluated int            `json:"events_evaluated"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// EventCount returns the number of events across all timing buckets.
func (t *TriggerResult) EventCount() int {
	return len(t.Active) + len(t.Upcoming) + len(t.Historical)
}

// AnomalyReport is the output of the external anomaly detector.
type AnomalyReport struct {
	HasAnomalies bool    `json:"has_anomalies"`
	Score        float64 `json:"score"`
}

// PredictiveSignals carries the external predictive model's outputs.
// A zero value means "no prediction available", not a neutral prediction.
type PredictiveSignals struct {
	PriceChange    float64 `json:"price_change"`
	FutureGrowth   float64 `json:"future_growth"`
	LongTermGrowth float64 `json:"long_term_growth"`
	ShortTermTrend float64 `json:"short_term_trend"`
	LongTermTrend  float64 `json:"long_term_trend"`
	GradePremium   float64 `json:"grade_premium"`
	GradedDemand   float64 `json:"graded_demand"`
	GradingROI     float64 `json:"grading_roi"`
	Uncertainty    float64 `json:"uncertainty"`
	Confidence     float64 `json:"confidence"`
}

// UserPreferences adjusts scoring toward a user's risk appetite and
// holding horizon.
type UserPreferences struct {
	RiskTolerance RiskTolerance     `json:"risk_tolerance,omitempty"`
	Horizon       InvestmentHorizon `json:"horizon,omitempty"`
}

// ScoreSet holds the four action scores. Base scores are capped to
// [0,1]; preference-adjusted scores may exceed 1.
type ScoreSet struct {
	ListNow float64 `json:"list_now"`
	Hold    float64 `json:"hold"`
	Grade   float64 `json:"grade"`
	Monitor float64 `json:"monitor"`
}

// Get returns the score for an action.
func (s ScoreSet) Get(a Action) float64 {
	switch a {
	case ActionListNow:
		return s.ListNow
	case ActionHold:
		return s.Hold
	case ActionGrade:
		return s.Grade
	case ActionMonitor:
		return s.Monitor
	default:
		return 0
	}
}

// Set assigns the score for an action.
func (s *ScoreSet) Set(a Action, v float64) {
	switch a {
	case ActionListNow:
		s.ListNow = v
	case ActionHold:
		s.Hold = v
	case ActionGrade:
		s.Grade = v
	case ActionMonitor:
		s.Monitor = v
	}
}

// RecommendedAction pairs an action with its score and static guidance.
type RecommendedAction struct {
	Action          Action  `json:"action"`
	Score           float64 `json:"score"`
	Urgency         Urgency `json:"urgency"`
	ExpectedOutcome string  `json:"expected_outcome"`
}

// ConfidenceBreakdown shows the per-factor confidence inputs as integer
// percents for display.
type ConfidenceBreakdown struct {
	DataQuality        int `json:"data_quality"`
	HistoricalAccuracy int `json:"historical_accuracy"`
	ModelConfidence    int `json:"model_confidence"`
	MarketStability    int `json:"market_stability"`
}

// Confidence blends four bounded inputs into one bounded score.
type Confidence struct {
	Overall   float64             `json:"overall"`
	Breakdown ConfidenceBreakdown `json:"breakdown"`
}

// ROIEstimate is the expected financial outcome of following the
// primary recommendation.
type ROIEstimate struct {
	ExpectedReturn float64 `json:"expected_return"`
	Timeframe      string  `json:"timeframe"`
	Basis          string  `json:"basis,omitempty"`
}

// Recommendation is the final advisor output for one item.
type Recommendation struct {
	ID            string              `json:"id"`
	ItemKey       string              `json:"item_key"`
	Primary       RecommendedAction   `json:"primary"`
	Secondary     []RecommendedAction `json:"secondary,omitempty"`
	Scores        ScoreSet            `json:"scores"`
	Reasoning     []string            `json:"reasoning,omitempty"`
	Confidence    Confidence          `json:"confidence"`
	MarketSummary string              `json:"market_summary,omitempty"`
	Insights      []string            `json:"insights,omitempty"`
	Timing        string              `json:"timing,omitempty"`
	Risks         []string            `json:"risks,omitempty"`
	ROI           ROIEstimate         `json:"roi"`
	Fallback      bool                `json:"fallback,omitempty"`
	GeneratedAt   time.Time           `json:"generated_at"`
	ExpiresAt     time.Time           `json:"expires_at"`
}

// SourceStats tracks running per-source observability counters.
type SourceStats struct {
	Searches      int64   `json:"searches"`
	Successes     int64   `json:"successes"`
	Failures      int64   `json:"failures"`
	AvgResponseMS float64 `json:"avg_response_ms"`
	ErrorRate     float64 `json:"error_rate"`
}

// WatchedItem is a collectible the scheduler re-advises on an interval.
type WatchedItem struct {
	ID            string           `json:"id"`
	Item          ItemMetadata     `json:"item"`
	Query         string           `json:"query"`
	Preferences   *UserPreferences `json:"preferences,omitempty"`
	Enabled       bool             `json:"enabled"`
	CreatedAt     time.Time        `json:"created_at"`
	LastAdvisedAt *time.Time       `json:"last_advised_at,omitempty"`
}
