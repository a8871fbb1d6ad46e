// Package engine wires collection, trigger scoring and recommendation
// scoring into the end-to-end advisory pipeline.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/collectwise/advisor/internal/advisor"
	"github.com/collectwise/advisor/internal/collector"
	"github.com/collectwise/advisor/internal/metrics"
	"github.com/collectwise/advisor/internal/notify"
	"github.com/collectwise/advisor/internal/store"
	domain "github.com/collectwise/advisor/pkg/types"
)

// Collector aggregates marketplace data for a query.
type Collector interface {
	Collect(ctx context.Context, query string, opts domain.SearchOptions) (*domain.CollectionResult, error)
}

// TriggerScorer scores external trigger events for an item.
type TriggerScorer interface {
	Score(ctx context.Context, item domain.ItemMetadata) *domain.TriggerResult
}

// Predictor produces predictive signals from collected market data.
type Predictor interface {
	Predict(ctx context.Context, res *domain.CollectionResult, item domain.ItemMetadata) (*domain.PredictiveSignals, error)
}

// AnomalyDetector flags pricing anomalies in collected market data.
type AnomalyDetector interface {
	Detect(ctx context.Context, res *domain.CollectionResult, item domain.ItemMetadata) (*domain.AnomalyReport, error)
}

// AccuracyTracker reports how accurate past recommendations have been,
// in [0,1]. It feeds the confidence blend.
type AccuracyTracker interface {
	Accuracy(ctx context.Context) float64
}

// Pipeline runs the full advisory flow for one item: collect market
// data, score triggers, gather predictive signals, score the
// recommendation, then archive and notify.
type Pipeline struct {
	collector Collector
	triggers  TriggerScorer
	scorer    *advisor.Engine
	log       *slog.Logger

	// Optional collaborators; the pipeline degrades gracefully without
	// them.
	predictor Predictor
	anomalies AnomalyDetector
	accuracy  AccuracyTracker
	archive   store.Store
	notifier  notify.Notifier
}

// NewPipeline creates a Pipeline with injected dependencies.
func NewPipeline(
	c Collector,
	t TriggerScorer,
	s *advisor.Engine,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		collector: c,
		triggers:  t,
		scorer:    s,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PipelineOption configures the Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.log = l
	}
}

// WithPredictor enables predictive signals.
func WithPredictor(pr Predictor) PipelineOption {
	return func(p *Pipeline) {
		p.predictor = pr
	}
}

// WithAnomalyDetector enables anomaly detection.
func WithAnomalyDetector(a AnomalyDetector) PipelineOption {
	return func(p *Pipeline) {
		p.anomalies = a
	}
}

// WithAccuracyTracker enables historical-accuracy feedback.
func WithAccuracyTracker(a AccuracyTracker) PipelineOption {
	return func(p *Pipeline) {
		p.accuracy = a
	}
}

// WithArchive enables recommendation archival.
func WithArchive(s store.Store) PipelineOption {
	return func(p *Pipeline) {
		p.archive = s
	}
}

// WithNotifier enables recommendation notifications.
func WithNotifier(n notify.Notifier) PipelineOption {
	return func(p *Pipeline) {
		p.notifier = n
	}
}

// Advise runs the pipeline for one item. Collection failure does not
// fail the call: the scorer produces a flagged fallback recommendation
// so the caller always gets an answer. Only query validation errors
// propagate.
func (p *Pipeline) Advise(
	ctx context.Context,
	item domain.ItemMetadata,
	query string,
	prefs *domain.UserPreferences,
) (*domain.Recommendation, error) {
	key := item.Key()

	in := advisor.Input{Preferences: prefs}

	res, err := p.collector.Collect(ctx, query, domain.SearchOptions{})
	switch {
	case err != nil && isInputError(err):
		return nil, fmt.Errorf("collecting %q: %w", query, err)
	case err != nil:
		p.log.Warn("collection failed, falling back", "item", key, "error", err)
		in.Degraded = true
	default:
		// The normalizer keys snapshots by implied item; queries that
		// name the item directly land on the normalized query key.
		queryKey := collector.NormalizeQuery(query)
		if mi, ok := lookup(res.Intelligence, key, queryKey); ok {
			in.Market = &mi
		}
		if tr, ok := lookup(res.Trends, key, queryKey); ok {
			in.Trend = &tr
		}
	}

	if !in.Degraded {
		in.Triggers = p.triggers.Score(ctx, item)
		p.gatherSignals(ctx, res, item, &in)
	}

	rec := p.scorer.Score(key, in)

	p.archiveRecommendation(ctx, rec)
	p.notifyRecommendation(ctx, item, rec)

	return rec, nil
}

// lookup tries each key in order against m.
func lookup[V any](m map[string]V, keys ...string) (V, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// isInputError reports whether a collection error is the caller's
// fault rather than an upstream outage. Caller errors propagate;
// outages degrade to the fallback recommendation.
func isInputError(err error) bool {
	return errors.Is(err, collector.ErrInvalidQuery) || errors.Is(err, collector.ErrNoSources)
}

// gatherSignals consults the optional collaborators. Each failure is
// logged and leaves its signal nil; the scorer treats nil as "no data".
func (p *Pipeline) gatherSignals(
	ctx context.Context,
	res *domain.CollectionResult,
	item domain.ItemMetadata,
	in *advisor.Input,
) {
	if p.predictor != nil {
		signals, err := p.predictor.Predict(ctx, res, item)
		if err != nil {
			p.log.Warn("prediction failed", "item", item.Key(), "error", err)
		} else {
			in.Predictions = signals
		}
	}

	if p.anomalies != nil {
		report, err := p.anomalies.Detect(ctx, res, item)
		if err != nil {
			p.log.Warn("anomaly detection failed", "item", item.Key(), "error", err)
		} else {
			in.Anomalies = report
		}
	}

	if p.accuracy != nil {
		in.Accuracy = p.accuracy.Accuracy(ctx)
	}
}

func (p *Pipeline) archiveRecommendation(ctx context.Context, rec *domain.Recommendation) {
	if p.archive == nil {
		return
	}
	if err := p.archive.SaveRecommendation(ctx, rec); err != nil {
		metrics.ArchiveFailuresTotal.Inc()
		p.log.Error("archiving recommendation failed", "id", rec.ID, "error", err)
	}
}

func (p *Pipeline) notifyRecommendation(
	ctx context.Context,
	item domain.ItemMetadata,
	rec *domain.Recommendation,
) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.SendRecommendation(ctx, item, rec); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		p.log.Error("recommendation notification failed", "id", rec.ID, "error", err)
	}
}
