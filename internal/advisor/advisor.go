// Package advisor implements the recommendation scoring engine: a
// deterministic multi-factor scorer that turns market intelligence,
// trend analysis, trigger impact and predictive signals into a ranked,
// explainable action recommendation with a blended confidence score.
package advisor

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/collectwise/advisor/internal/metrics"
	domain "github.com/collectwise/advisor/pkg/types"
)

// Factor thresholds. Base scores are sums of these weighted
// contributions, capped at 1.0 before preference adjustment.
const (
	trendStrengthMin  = 0.6
	shortGrowthMin    = 0.05
	highActivityMin   = 0.7
	anomalyScoreMin   = 0.7
	resistanceMargin  = 0.9
	lowVolatilityMax  = 0.3
	gradePremiumMin   = 0.3
	gradedDemandMin   = 0.7
	gradingROIMin     = 0.2
	highVolatilityMin = 0.5
	uncertaintyMin    = 0.6
	signalDivergence  = 0.3

	secondaryScoreMin = 0.6
	maxSecondary      = 2

	defaultValidity = 6 * time.Hour
)

// Confidence blend weights; they sum to 1.0 so the overall score stays
// bounded when the inputs are.
const (
	weightDataQuality     = 0.25
	weightHistoricalAcc   = 0.30
	weightModelConf       = 0.25
	weightMarketStability = 0.20
)

// Input carries everything the engine scores against. Market and Trend
// are required; a nil Predictions means "no prediction available" and a
// nil Triggers means "no trigger data". Degraded forces the fallback
// path when an upstream collaborator failed.
type Input struct {
	Market      *domain.MarketIntelligence
	Trend       *domain.TrendAnalysis
	Triggers    *domain.TriggerResult
	Predictions *domain.PredictiveSignals
	Anomalies   *domain.AnomalyReport
	Accuracy    float64
	Preferences *domain.UserPreferences
	Degraded    bool
}

// Engine scores inputs into recommendations. It never returns an error:
// missing or failed inputs produce a flagged fallback recommendation.
type Engine struct {
	log      *slog.Logger
	validity time.Duration
	nowFunc  func() time.Time
	idFunc   func() string
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithValidity overrides how long recommendations remain valid.
func WithValidity(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.validity = d
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) EngineOption {
	return func(e *Engine) {
		e.nowFunc = f
	}
}

// WithIDFunc overrides recommendation ID generation for testing.
func WithIDFunc(f func() string) EngineOption {
	return func(e *Engine) {
		e.idFunc = f
	}
}

// NewEngine creates a scoring engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		log:      slog.Default(),
		validity: defaultValidity,
		nowFunc:  time.Now,
		idFunc:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score produces the recommendation for one item.
func (e *Engine) Score(itemKey string, in Input) *domain.Recommendation {
	if in.Degraded || in.Market == nil || in.Trend == nil {
		return e.fallback(itemKey)
	}

	if in.Triggers == nil {
		in.Triggers = &domain.TriggerResult{}
	}
	if in.Predictions == nil {
		in.Predictions = &domain.PredictiveSignals{}
	}
	if in.Anomalies == nil {
		in.Anomalies = &domain.AnomalyReport{}
	}

	base, reasons := e.baseScores(in)
	adjusted := applyPreferences(base, in.Preferences)

	primary, secondary := selectActions(adjusted)

	now := e.nowFunc()
	rec := &domain.Recommendation{
		ID:      e.idFunc(),
		ItemKey: itemKey,
		Primary: domain.RecommendedAction{
			Action:          primary,
			Score:           adjusted.Get(primary),
			Urgency:         contentFor(primary).urgency,
			ExpectedOutcome: contentFor(primary).expectedOutcome,
		},
		Scores:        adjusted,
		Reasoning:     reasons,
		Confidence:    blendConfidence(in),
		MarketSummary: marketSummary(in),
		Insights:      contentFor(primary).insights,
		Timing:        contentFor(primary).timing,
		Risks:         contentFor(primary).risks,
		ROI:           estimateROI(primary, in),
		GeneratedAt:   now,
		ExpiresAt:     now.Add(e.validity),
	}

	for _, a := range secondary {
		rec.Secondary = append(rec.Secondary, domain.RecommendedAction{
			Action:          a,
			Score:           adjusted.Get(a),
			Urgency:         contentFor(a).urgency,
			ExpectedOutcome: contentFor(a).expectedOutcome,
		})
	}

	metrics.RecommendationsTotal.WithLabelValues(string(primary)).Inc()
	metrics.ConfidenceDistribution.Observe(rec.Confidence.Overall)

	e.log.Info("recommendation produced",
		"item", itemKey,
		"action", primary,
		"score", rec.Primary.Score,
		"confidence", rec.Confidence.Overall,
	)

	return rec
}

// baseScores runs the four factor scorers. Each is a sum of weighted
// threshold contributions capped at 1.0.
func (e *Engine) baseScores(in Input) (domain.ScoreSet, []string) {
	var (
		s       domain.ScoreSet
		reasons []string
	)

	add := func(action domain.Action, weight float64, reason string) {
		s.Set(action, s.Get(action)+weight)
		reasons = append(reasons, reason)
	}

	// List Now.
	if in.Trend.Direction == domain.TrendUpward && in.Trend.Strength > trendStrengthMin {
		add(domain.ActionListNow, 0.25,
			fmt.Sprintf("strong upward price trend (strength %.2f)", in.Trend.Strength))
	}
	if in.Predictions.FutureGrowth > shortGrowthMin {
		add(domain.ActionListNow, 0.25,
			fmt.Sprintf("short-term growth of %.0f%% predicted", in.Predictions.FutureGrowth*100))
	}
	if in.Market.ActivityScore > highActivityMin {
		add(domain.ActionListNow, 0.20, "high market activity for this item")
	}
	if in.Anomalies.HasAnomalies && in.Anomalies.Score > anomalyScoreMin {
		add(domain.ActionListNow, 0.15, "pricing anomaly detected in recent sales")
	}
	if len(in.Triggers.Active) > 0 {
		add(domain.ActionListNow, 0.15,
			fmt.Sprintf("%d active external trigger(s)", len(in.Triggers.Active)))
	}

	// Hold. A stable trend contributes on its own; confirmed positive
	// growth tops the factor up to its full 0.30 weight.
	if in.Trend.Direction == domain.TrendStable {
		add(domain.ActionHold, 0.25, "price trend is stable")
		if in.Predictions.FutureGrowth > 0 {
			add(domain.ActionHold, 0.05, "predicted growth supports holding")
		}
	}
	if in.Predictions.LongTermTrend > 0 {
		add(domain.ActionHold, 0.25, "positive long-term trend predicted")
	}
	if in.Trend.Resistance > 0 && in.Market.CurrentPrice < resistanceMargin*in.Trend.Resistance {
		add(domain.ActionHold, 0.20,
			fmt.Sprintf("price below %.0f%% of resistance level", resistanceMargin*100))
	}
	if in.Trend.Volatility < lowVolatilityMax {
		add(domain.ActionHold, 0.25, "low price volatility")
	}

	// Grade.
	if in.Predictions.GradePremium > gradePremiumMin {
		add(domain.ActionGrade, 0.35,
			fmt.Sprintf("graded copies command a %.0f%% premium", in.Predictions.GradePremium*100))
	}
	if in.Predictions.GradedDemand > gradedDemandMin {
		add(domain.ActionGrade, 0.30, "high demand in the graded market")
	}
	if in.Predictions.GradingROI > gradingROIMin {
		add(domain.ActionGrade, 0.35,
			fmt.Sprintf("grading ROI of %.0f%% predicted", in.Predictions.GradingROI*100))
	}

	// Monitor.
	if in.Trend.Volatility > highVolatilityMin {
		add(domain.ActionMonitor, 0.30,
			fmt.Sprintf("high price volatility (%.2f)", in.Trend.Volatility))
	}
	if len(in.Triggers.Upcoming) > 0 {
		add(domain.ActionMonitor, 0.25,
			fmt.Sprintf("%d upcoming external trigger(s)", len(in.Triggers.Upcoming)))
	}
	if in.Predictions.Uncertainty > uncertaintyMin {
		add(domain.ActionMonitor, 0.25, "predictive model uncertainty is high")
	}
	if math.Abs(in.Predictions.ShortTermTrend-in.Predictions.LongTermTrend) > signalDivergence {
		add(domain.ActionMonitor, 0.20, "short- and long-term signals diverge")
	}

	// Cap base scores at 1.0.
	for _, a := range domain.ActionPriority {
		if s.Get(a) > 1 {
			s.Set(a, 1)
		}
	}

	return s, reasons
}

// applyPreferences scales scores for risk tolerance and investment
// horizon. Adjusted scores are deliberately not re-capped.
func applyPreferences(s domain.ScoreSet, prefs *domain.UserPreferences) domain.ScoreSet {
	if prefs == nil {
		return s
	}

	switch prefs.RiskTolerance {
	case domain.RiskConservative:
		s.Hold *= 1.2
		s.ListNow *= 0.8
	case domain.RiskAggressive:
		s.ListNow *= 1.2
		s.Hold *= 0.8
	}

	switch prefs.Horizon {
	case domain.HorizonShortTerm:
		s.ListNow *= 1.1
		s.Monitor *= 1.1
	case domain.HorizonLongTerm:
		s.Hold *= 1.2
		s.Grade *= 1.1
	}

	return s
}

// selectActions picks the primary action by iterating the canonical
// order and keeping the strictly greatest score, so ties resolve to the
// earlier action. Secondary actions are the non-primary ones scoring
// above the floor, sorted descending, capped at two.
func selectActions(s domain.ScoreSet) (domain.Action, []domain.Action) {
	primary := domain.ActionPriority[0]
	best := s.Get(primary)

	for _, a := range domain.ActionPriority[1:] {
		if v := s.Get(a); v > best {
			primary, best = a, v
		}
	}

	var secondary []domain.Action
	for _, a := range domain.ActionPriority {
		if a != primary && s.Get(a) > secondaryScoreMin {
			secondary = append(secondary, a)
		}
	}
	sort.SliceStable(secondary, func(i, j int) bool {
		return s.Get(secondary[i]) > s.Get(secondary[j])
	})
	if len(secondary) > maxSecondary {
		secondary = secondary[:maxSecondary]
	}

	return primary, secondary
}

// blendConfidence combines four bounded inputs with fixed convex
// weights. The overall score is rounded to two decimals; the breakdown
// is integer percents.
func blendConfidence(in Input) domain.Confidence {
	dataQuality := clamp01(in.Market.DataQuality)
	accuracy := clamp01(in.Accuracy)
	model := clamp01(in.Predictions.Confidence)
	stability := clamp01(1 - in.Trend.Volatility)

	overall := dataQuality*weightDataQuality +
		accuracy*weightHistoricalAcc +
		model*weightModelConf +
		stability*weightMarketStability

	return domain.Confidence{
		Overall: math.Round(overall*100) / 100,
		Breakdown: domain.ConfidenceBreakdown{
			DataQuality:        int(math.Round(dataQuality * 100)),
			HistoricalAccuracy: int(math.Round(accuracy * 100)),
			ModelConfidence:    int(math.Round(model * 100)),
			MarketStability:    int(math.Round(stability * 100)),
		},
	}
}

func marketSummary(in Input) string {
	return fmt.Sprintf(
		"current price $%.2f (range $%.2f–$%.2f), %s trend, activity %.2f, trigger impact %.2f",
		in.Market.CurrentPrice,
		in.Market.PriceRange.Min,
		in.Market.PriceRange.Max,
		in.Trend.Direction,
		in.Market.ActivityScore,
		in.Triggers.AggregateImpact,
	)
}

// fallback is the designed degraded output: monitor at 0.5 with low
// confidence, flagged so callers can distinguish it from a scored
// recommendation.
func (e *Engine) fallback(itemKey string) *domain.Recommendation {
	metrics.RecommendationFallbacksTotal.Inc()
	e.log.Warn("returning fallback recommendation", "item", itemKey)

	now := e.nowFunc()
	c := contentFor(domain.ActionMonitor)

	return &domain.Recommendation{
		ID:      e.idFunc(),
		ItemKey: itemKey,
		Primary: domain.RecommendedAction{
			Action:          domain.ActionMonitor,
			Score:           0.5,
			Urgency:         c.urgency,
			ExpectedOutcome: c.expectedOutcome,
		},
		Scores:      domain.ScoreSet{Monitor: 0.5},
		Reasoning:   []string{"insufficient data"},
		Confidence:  domain.Confidence{Overall: 0.3},
		Timing:      c.timing,
		Risks:       c.risks,
		Fallback:    true,
		GeneratedAt: now,
		ExpiresAt:   now.Add(e.validity),
	}
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
