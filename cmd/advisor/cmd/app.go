package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/collectwise/advisor/internal/advisor"
	"github.com/collectwise/advisor/internal/cache"
	"github.com/collectwise/advisor/internal/collector"
	"github.com/collectwise/advisor/internal/config"
	"github.com/collectwise/advisor/internal/engine"
	"github.com/collectwise/advisor/internal/fanout"
	"github.com/collectwise/advisor/internal/normalize"
	"github.com/collectwise/advisor/internal/notify"
	"github.com/collectwise/advisor/internal/source"
	"github.com/collectwise/advisor/internal/source/httpapi"
	"github.com/collectwise/advisor/internal/store"
	"github.com/collectwise/advisor/internal/triggers"
	"github.com/collectwise/advisor/pkg/logger"
	domain "github.com/collectwise/advisor/pkg/types"
)

// app holds the wired application components shared by the server and
// the one-shot commands.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	store     *store.PostgresStore
	collector *collector.Orchestrator
	triggers  *triggers.Scorer
	pipeline  *engine.Pipeline
}

// newApp loads the config and wires every component up to, but not
// including, the HTTP server.
func newApp(ctx context.Context, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	col := newCollector(cfg, st, log)
	trg := newTriggerScorer(cfg, log)

	scorer := advisor.NewEngine(
		advisor.WithLogger(log),
		advisor.WithValidity(cfg.Scoring.Validity),
	)

	pipeline := engine.NewPipeline(col, trg, scorer,
		engine.WithLogger(log),
		engine.WithArchive(st),
		engine.WithNotifier(newNotifier(cfg, log)),
	)

	return &app{
		cfg:       cfg,
		log:       log,
		store:     st,
		collector: col,
		triggers:  trg,
		pipeline:  pipeline,
	}, nil
}

func (a *app) Close() {
	a.store.Close()
}

func newCollector(
	cfg *config.Config,
	st *store.PostgresStore,
	log *slog.Logger,
) *collector.Orchestrator {
	adapters := make([]source.Adapter, 0, len(cfg.Sources.Marketplaces))
	for _, m := range cfg.Sources.Marketplaces {
		adapters = append(adapters, httpapi.New(m.Name, m.BaseURL,
			httpapi.WithAPIKey(m.APIKey),
			httpapi.WithRateLimit(m.RateLimit.PerSecond, m.RateLimit.Burst),
		))
	}

	return collector.New(
		adapters,
		fanout.NewGate(cfg.Collection.MaxConcurrent),
		fanout.NewRetry(cfg.Collection.RetryAttempts, cfg.Collection.RetryBaseDelay, log),
		cache.NewMemory(),
		normalize.NewAnalyzer(),
		collector.WithLogger(log),
		collector.WithCacheTTL(cfg.Collection.CacheTTL),
		collector.WithArchive(st),
	)
}

func newTriggerScorer(cfg *config.Config, log *slog.Logger) *triggers.Scorer {
	fetchers := make([]triggers.Fetcher, 0, len(cfg.Triggers.Feeds))
	for _, f := range cfg.Triggers.Feeds {
		fetchers = append(fetchers, triggers.NewHTTPFeed(
			domain.TriggerCategory(f.Category), f.BaseURL,
			triggers.WithFeedAPIKey(f.APIKey),
		))
	}

	opts := []triggers.ScorerOption{
		triggers.WithLogger(log),
		triggers.WithCacheTTL(cfg.Triggers.CacheTTL),
	}
	if cfg.Triggers.SocialDisabled {
		opts = append(opts, triggers.WithSocialDisabled())
	}

	return triggers.NewScorer(fetchers, cache.NewMemory(), opts...)
}

func newNotifier(cfg *config.Config, log *slog.Logger) notify.Notifier {
	if cfg.Notifications.Discord.Enabled {
		return notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL)
	}
	return notify.NewNoOpNotifier(log)
}
