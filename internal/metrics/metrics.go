// Package metrics defines Prometheus metrics for the collectible market
// advisor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "advisor"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "Whether the last /healthz probe succeeded (1) or failed (0).",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "Whether the last /readyz probe succeeded (1) or failed (0).",
	})
)

// Collection metrics.
var (
	CollectionSearchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "collection_searches_total",
		Help:      "Total number of collection queries executed (cache misses).",
	})

	CollectionCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "collection_cache_hits_total",
		Help:      "Total number of collection queries served from cache.",
	})

	CollectionSourceErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "collection_source_errors_total",
		Help:      "Total number of per-source collection failures after retries.",
	}, []string{"source"})

	CollectionListingsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "collection_listings_dropped_total",
		Help:      "Total number of listings dropped during validation.",
	})

	CollectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "collection_duration_seconds",
		Help:      "End-to-end duration of collection fan-outs in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Trigger metrics.
var (
	TriggerEventsFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trigger_events_fetched_total",
		Help:      "Total number of trigger events fetched, by category.",
	}, []string{"category"})

	TriggerCategoryFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trigger_category_failures_total",
		Help:      "Total number of trigger category fetch failures.",
	}, []string{"category"})

	TriggerCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trigger_cache_hits_total",
		Help:      "Total number of trigger scores served from cache.",
	})
)

// Scoring metrics.
var (
	RecommendationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendations_total",
		Help:      "Total number of recommendations produced, by primary action.",
	}, []string{"action"})

	RecommendationFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendation_fallbacks_total",
		Help:      "Total number of fallback recommendations returned.",
	})

	ConfidenceDistribution = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "confidence_distribution",
		Help:      "Distribution of overall recommendation confidence.",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11), // 0.0, 0.1, ..., 1.0
	})
)

// Archival metrics.
var (
	ArchiveFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "archive_failures_total",
		Help:      "Total number of best-effort archival failures (logged and swallowed).",
	})

	NotificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of notification send failures.",
	})
)
