package plan

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"postpartum-meal-planner/internal/program"
	"postpartum-meal-planner/internal/settings"
	"postpartum-meal-planner/internal/shared"
)

// Source abstracts the single-day fetch so the aggregator can be tested
// against a counting mock.
type Source interface {
	Fetch(ctx context.Context, day int, st settings.Settings) (*DailyPlan, shared.AgentMeta, error)
}

// Aggregator collects meal names across a window of upcoming days. Days
// already held by the cache are reused without a network call; the rest are
// fetched concurrently and joined before anything is returned.
type Aggregator struct {
	source Source
	cache  *Cache
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(source Source, cache *Cache) *Aggregator {
	return &Aggregator{source: source, cache: cache}
}

// MealNames returns the flattened meal names for the window of `days` days
// anchored at anchorDay. Target days past the end of the program saturate
// at day 30 rather than erroring. If any fetch in the window fails, the
// whole window degrades to an empty list; the failure is logged, not
// surfaced.
func (a *Aggregator) MealNames(ctx context.Context, anchorDay, days int, st settings.Settings) ([]string, []shared.AgentMeta) {
	plans := make([]*DailyPlan, days)
	var mu sync.Mutex
	var metas []shared.AgentMeta

	// Plain errgroup: a failing day must not cancel its siblings, every
	// issued fetch runs to completion before the join decides the outcome.
	var g errgroup.Group
	for i := 0; i < days; i++ {
		target := anchorDay + i
		if target > program.FinalDay {
			target = program.FinalDay
		}

		if cached, ok := a.cache.Get(target); ok {
			plans[i] = cached
			continue
		}

		slot := i
		g.Go(func() error {
			p, meta, err := a.source.Fetch(ctx, target, st)
			mu.Lock()
			metas = append(metas, meta)
			mu.Unlock()
			if err != nil {
				return err
			}
			plans[slot] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("Warning: could not fetch all days in the shopping window: %v", err)
		return []string{}, metas
	}

	var names []string
	for _, p := range plans {
		names = append(names, p.MealNames()...)
	}
	return names, metas
}
