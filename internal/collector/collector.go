// Package collector implements the collection orchestrator: it fans a
// query out to every enabled source adapter under bounded concurrency,
// retries transient failures, validates and cleans the returned records,
// and caches the assembled result.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/collectwise/advisor/internal/cache"
	"github.com/collectwise/advisor/internal/fanout"
	"github.com/collectwise/advisor/internal/metrics"
	"github.com/collectwise/advisor/internal/source"
	domain "github.com/collectwise/advisor/pkg/types"
)

const defaultCacheTTL = 5 * time.Minute

// ErrNoSources is returned when Collect is called with no enabled
// adapters.
var ErrNoSources = errors.New("no source adapters enabled")

// AggregateError reports that every enabled source failed.
type AggregateError struct {
	Query  string
	Errors map[string]string
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("collection of %q failed: all %d sources errored", e.Query, len(e.Errors))
}

// Normalizer turns cleaned listings into per-item market snapshots and
// trend analyses. Normalization has no partial-success mode; its errors
// fail the whole collection call.
type Normalizer interface {
	Normalize(ctx context.Context, listings []domain.CleanedListing) (map[string]domain.MarketIntelligence, error)
	AnalyzeTrends(ctx context.Context, listings []domain.CleanedListing) (map[string]domain.TrendAnalysis, error)
}

// ArchiveStore accepts collection results for archival. Failures are
// logged and swallowed; persistence is best-effort.
type ArchiveStore interface {
	SaveCollectionResult(ctx context.Context, res *domain.CollectionResult) error
}

// Orchestrator coordinates the collection fan-out.
type Orchestrator struct {
	adapters   []source.Adapter
	gate       *fanout.Gate
	retry      fanout.Retry
	cache      cache.Cache
	cacheTTL   time.Duration
	normalizer Normalizer
	archive    ArchiveStore
	stats      *Stats
	log        *slog.Logger
	nowFunc    func() time.Time
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

// WithCacheTTL overrides the collection result cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *Orchestrator) {
		o.cacheTTL = ttl
	}
}

// WithArchive sets the best-effort archival store.
func WithArchive(a ArchiveStore) Option {
	return func(o *Orchestrator) {
		o.archive = a
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(o *Orchestrator) {
		o.nowFunc = f
	}
}

// New creates an Orchestrator over the enabled adapters.
func New(
	adapters []source.Adapter,
	gate *fanout.Gate,
	retry fanout.Retry,
	c cache.Cache,
	normalizer Normalizer,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		adapters:   adapters,
		gate:       gate,
		retry:      retry,
		cache:      c,
		cacheTTL:   defaultCacheTTL,
		normalizer: normalizer,
		stats:      NewStats(),
		log:        slog.Default(),
		nowFunc:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Stats returns the per-source running statistics snapshot.
func (o *Orchestrator) Stats() map[string]domain.SourceStats {
	return o.stats.Snapshot()
}

// Collect runs one collection query. It validates input, consults the
// TTL cache, fans out to every adapter, and assembles the aggregate
// result. Individual source failures are recorded, not fatal; the call
// fails only when validation rejects the input, every source fails, or
// normalization fails.
func (o *Orchestrator) Collect(
	ctx context.Context,
	query string,
	opts domain.SearchOptions,
) (*domain.CollectionResult, error) {
	if err := ValidateQuery(query, opts); err != nil {
		return nil, err
	}
	if len(o.adapters) == 0 {
		return nil, ErrNoSources
	}

	key := NormalizeQuery(query)
	if cached, ok := o.cache.Get(key); ok {
		var res domain.CollectionResult
		if err := json.Unmarshal(cached, &res); err == nil {
			metrics.CollectionCacheHitsTotal.Inc()
			o.log.Debug("collection cache hit", "query", key)
			return &res, nil
		}
		// Corrupt cache entry; drop it and re-collect.
		o.cache.Delete(key)
	}

	metrics.CollectionSearchesTotal.Inc()
	start := o.nowFunc()
	defer func() {
		metrics.CollectionDuration.Observe(time.Since(start).Seconds())
	}()

	outcomes := o.fanOut(ctx, query, opts)

	res := o.assemble(query, opts, outcomes, start)

	if len(res.Errors) == len(o.adapters) {
		return nil, &AggregateError{Query: query, Errors: res.Errors}
	}

	if err := o.normalize(ctx, res); err != nil {
		return nil, fmt.Errorf("normalizing collection of %q: %w", query, err)
	}

	if payload, err := json.Marshal(res); err == nil {
		o.cache.Set(key, payload, o.cacheTTL)
	}

	o.archiveResult(ctx, res)

	return res, nil
}

func (o *Orchestrator) fanOut(
	ctx context.Context,
	query string,
	opts domain.SearchOptions,
) map[string]fanout.Outcome[[]domain.RawListing] {
	tasks := make(map[string]func(ctx context.Context) ([]domain.RawListing, error), len(o.adapters))

	for _, adapter := range o.adapters {
		tasks[adapter.Name()] = func(ctx context.Context) ([]domain.RawListing, error) {
			var listings []domain.RawListing
			err := o.retry.Do(ctx, "search "+adapter.Name(), func(ctx context.Context) error {
				var searchErr error
				listings, searchErr = adapter.Search(ctx, query, opts)
				return searchErr
			})
			return listings, err
		}
	}

	outcomes := fanout.Settle(ctx, o.gate, tasks)

	for name, out := range outcomes {
		o.stats.Record(name, out.Elapsed, out.Err != nil)
	}
	return outcomes
}

func (o *Orchestrator) assemble(
	query string,
	opts domain.SearchOptions,
	outcomes map[string]fanout.Outcome[[]domain.RawListing],
	start time.Time,
) *domain.CollectionResult {
	res := &domain.CollectionResult{
		Query:                query,
		Options:              opts,
		Sources:              make(map[string]domain.SourceListings, len(outcomes)),
		Errors:               make(map[string]string),
		MarketplacesSearched: len(o.adapters),
		CollectedAt:          start,
	}

	var (
		priceMin, priceMax float64
		havePrice          bool
		conditions         = map[string]struct{}{}
		sellers            = map[string]struct{}{}
	)

	// Sources are processed in sorted name order so warnings and summary
	// accumulation are deterministic.
	names := make([]string, 0, len(outcomes))
	for name := range outcomes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		out := outcomes[name]
		if out.Err != nil {
			res.Errors[name] = out.Err.Error()
			metrics.CollectionSourceErrorsTotal.WithLabelValues(name).Inc()
			o.log.Warn("source failed", "source", name, "query", query, "error", out.Err)
			continue
		}

		res.MarketplacesSuccessful++
		cleaned := make([]domain.CleanedListing, 0, len(out.Value))

		for _, raw := range out.Value {
			cl, err := CleanListing(raw)
			if err != nil {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("%s: dropped listing %q: %v", name, raw.ID, err))
				metrics.CollectionListingsDroppedTotal.Inc()
				continue
			}
			cleaned = append(cleaned, cl)

			if !havePrice || cl.Price < priceMin {
				priceMin = cl.Price
			}
			if !havePrice || cl.Price > priceMax {
				priceMax = cl.Price
			}
			havePrice = true
			conditions[string(cl.Condition)] = struct{}{}
			if cl.Seller != "" {
				sellers[cl.Seller] = struct{}{}
			}
		}

		res.Sources[name] = domain.SourceListings{
			RawCount: len(out.Value),
			Listings: cleaned,
		}
		res.Summary.TotalListings += len(cleaned)
	}

	if havePrice {
		res.Summary.PriceRange = domain.PriceRange{Min: priceMin, Max: priceMax}
	}
	res.Summary.DistinctConditions = sortedKeys(conditions)
	res.Summary.DistinctSellers = sortedKeys(sellers)
	res.Summary.ElapsedMS = o.nowFunc().Sub(start).Milliseconds()

	o.log.Info("collection complete",
		"query", query,
		"sources_ok", res.MarketplacesSuccessful,
		"sources_failed", len(res.Errors),
		"listings", res.Summary.TotalListings,
		"warnings", len(res.Warnings),
	)

	return res
}

func (o *Orchestrator) normalize(ctx context.Context, res *domain.CollectionResult) error {
	if o.normalizer == nil {
		return nil
	}

	listings := res.AllListings()
	if len(listings) == 0 {
		return nil
	}

	intel, err := o.normalizer.Normalize(ctx, listings)
	if err != nil {
		return err
	}
	trends, err := o.normalizer.AnalyzeTrends(ctx, listings)
	if err != nil {
		return err
	}

	res.Intelligence = intel
	res.Trends = trends
	return nil
}

func (o *Orchestrator) archiveResult(ctx context.Context, res *domain.CollectionResult) {
	if o.archive == nil {
		return
	}
	if err := o.archive.SaveCollectionResult(ctx, res); err != nil {
		metrics.ArchiveFailuresTotal.Inc()
		o.log.Error("archiving collection result failed", "query", res.Query, "error", err)
	}
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
