package engine

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/collectwise/advisor/internal/store"
)

// Scheduler re-advises watched items on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	pipeline *Pipeline
	store    store.Store
	log      *slog.Logger
}

// NewScheduler creates a Scheduler that runs the pipeline over every
// enabled watched item on the given cron spec.
func NewScheduler(
	p *Pipeline,
	s store.Store,
	spec string,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	sched := &Scheduler{
		cron:     c,
		pipeline: p,
		store:    s,
		log:      log,
	}

	if _, err := c.AddFunc(spec, sched.runAdviseCycle); err != nil {
		return nil, err
	}

	return sched, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to
// finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runAdviseCycle() {
	ctx := context.Background()
	if err := s.RunAdviseCycle(ctx); err != nil {
		s.log.Error("scheduled advise cycle failed", "error", err)
	}
}

// RunAdviseCycle advises every enabled watched item once. Per-item
// failures are logged and skipped so one bad item does not starve the
// rest of the cycle.
func (s *Scheduler) RunAdviseCycle(ctx context.Context) error {
	s.log.Info("advise cycle starting")

	items, err := s.store.ListWatchedItems(ctx, true)
	if err != nil {
		return err
	}

	for i := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		w := &items[i]
		rec, err := s.pipeline.Advise(ctx, w.Item, w.Query, w.Preferences)
		if err != nil {
			s.log.Error("advising watched item failed", "id", w.ID, "error", err)
			continue
		}

		s.log.Info("watched item advised",
			"id", w.ID,
			"action", rec.Primary.Action,
			"score", rec.Primary.Score,
		)

		if err := s.store.MarkWatchedItemAdvised(ctx, w.ID); err != nil {
			s.log.Warn("marking watched item advised failed", "id", w.ID, "error", err)
		}
	}

	s.log.Info("advise cycle complete", "items", len(items))
	return nil
}
