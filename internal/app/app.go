package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"postpartum-meal-planner/internal/clipper"
	"postpartum-meal-planner/internal/llm"
	"postpartum-meal-planner/internal/metrics"
	"postpartum-meal-planner/internal/plan"
	"postpartum-meal-planner/internal/program"
	"postpartum-meal-planner/internal/recipe"
	"postpartum-meal-planner/internal/settings"
	"postpartum-meal-planner/internal/shared"
	"postpartum-meal-planner/internal/shopping"
	"postpartum-meal-planner/internal/storage"
)

// DefaultShoppingWindow is the number of upcoming days a shopping list
// covers when the caller does not ask for a specific window.
const DefaultShoppingWindow = 3

// App wires the program engine, the generators and the persistence layer
// together. All state mutations go through App so the cached plan, the
// viewing day and the saved snapshots never drift apart.
type App struct {
	fetcher      *plan.Fetcher
	aggregator   *plan.Aggregator
	builder      *shopping.Builder
	recipes      *recipe.Service
	clipper      *clipper.Clipper
	store        *storage.Store
	metricsStore *metrics.Store

	// now is injectable so day resolution can be pinned in tests.
	now func() time.Time

	mu           sync.Mutex
	settings     settings.Settings
	cache        *plan.Cache
	navigator    *program.Navigator
	shoppingList *shopping.List
}

// NewApp creates an App and restores persisted state: saved settings (or
// defaults on first run), the cached daily plan and the shopping list.
func NewApp(gen llm.Generator, store *storage.Store, metricsStore *metrics.Store, now func() time.Time) (*App, error) {
	if now == nil {
		now = time.Now
	}

	a := &App{
		fetcher:      plan.NewFetcher(gen),
		builder:      shopping.NewBuilder(gen),
		recipes:      recipe.NewService(gen),
		clipper:      clipper.NewClipper(gen),
		store:        store,
		metricsStore: metricsStore,
		now:          now,
		cache:        plan.NewCache(),
	}
	a.aggregator = plan.NewAggregator(a.fetcher, a.cache)

	st, ok, err := store.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if !ok {
		st = settings.Default(now())
		if err := store.SaveSettings(st); err != nil {
			return nil, fmt.Errorf("failed to save initial settings: %w", err)
		}
	}
	a.settings = st

	cached, err := store.LoadDailyPlan()
	if err != nil {
		return nil, fmt.Errorf("failed to load cached plan: %w", err)
	}
	if cached != nil {
		a.cache.Set(cached)
	}

	list, err := store.LoadShoppingList()
	if err != nil {
		return nil, fmt.Errorf("failed to load shopping list: %w", err)
	}
	a.shoppingList = list

	a.navigator = program.NewNavigator(a.currentDayLocked())
	return a, nil
}

// currentDayLocked resolves today's program day from the stored start date.
// A malformed start date falls back to day 1 rather than failing the caller.
func (a *App) currentDayLocked() int {
	start, err := a.settings.StartTime()
	if err != nil {
		log.Printf("Warning: invalid start date %q, falling back to day %d: %v",
			a.settings.StartDate, program.FirstDay, err)
		return program.FirstDay
	}
	return program.ResolveCurrentDay(start, a.now())
}

// CurrentDay returns today's program day, clamped to the 30-day range.
func (a *App) CurrentDay() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentDayLocked()
}

// ViewingDay returns the day the user is currently browsing.
func (a *App) ViewingDay() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.navigator.Viewing()
}

// Settings returns a copy of the current settings.
func (a *App) Settings() settings.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings
}

// ViewPlan returns the plan for the viewing day, generating it only when
// the cache does not already hold that day.
func (a *App) ViewPlan(ctx context.Context) (*plan.DailyPlan, error) {
	a.mu.Lock()
	day := a.navigator.Viewing()
	st := a.settings
	if cached, ok := a.cache.Get(day); ok {
		a.mu.Unlock()
		return cached, nil
	}
	a.mu.Unlock()

	return a.fetchAndCachePlan(ctx, day, st)
}

// RefreshPlan regenerates the viewing day's plan, bypassing the cache.
func (a *App) RefreshPlan(ctx context.Context) (*plan.DailyPlan, error) {
	a.mu.Lock()
	day := a.navigator.Viewing()
	st := a.settings
	a.mu.Unlock()

	return a.fetchAndCachePlan(ctx, day, st)
}

func (a *App) fetchAndCachePlan(ctx context.Context, day int, st settings.Settings) (*plan.DailyPlan, error) {
	p, meta, err := a.fetcher.Fetch(ctx, day, st)
	a.recordMeta(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan for day %d: %w", day, err)
	}

	a.mu.Lock()
	a.cache.Set(p)
	a.mu.Unlock()

	if err := a.store.SaveDailyPlan(p); err != nil {
		log.Printf("Warning: failed to persist plan for day %d: %v", day, err)
	}
	return p, nil
}

// NextDay advances the viewing day and returns it.
func (a *App) NextDay() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.navigator.Next()
}

// PrevDay steps the viewing day back and returns it.
func (a *App) PrevDay() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.navigator.Prev()
}

// JumpToDay moves the viewing day to the given day, clamped to the
// program range, and returns the result.
func (a *App) JumpToDay(day int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.navigator.JumpTo(day)
}

// UpdateSettings replaces the settings and persists them. When the change
// affects plan content (start date or dislikes) the cached plan is dropped;
// comfort toggles keep the cache so the current day's plan survives. A
// start-date change with no cached plan also re-anchors the viewing day.
func (a *App) UpdateSettings(updated settings.Settings) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	startDateChanged := a.settings.StartDate != updated.StartDate
	invalidate := settings.InvalidatesPlan(a.settings, updated)
	hadCachedPlan := a.cache.Cached() != nil
	a.settings = updated

	if invalidate {
		a.cache.Invalidate()
		if err := a.store.ClearDailyPlan(); err != nil {
			log.Printf("Warning: failed to clear persisted plan: %v", err)
		}
	}
	// Re-anchor browsing only when nothing was cached before the change, so
	// a user reading a freshly generated plan stays on the page they opened.
	if startDateChanged && !hadCachedPlan {
		a.navigator.JumpTo(a.currentDayLocked())
	}

	if err := a.store.SaveSettings(updated); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// BuildShoppingList aggregates meals for the next `days` days starting at
// today's program day and consolidates them into a categorized list. The
// result is persisted and replaces any previous list.
func (a *App) BuildShoppingList(ctx context.Context, days int) (*shopping.List, error) {
	if days <= 0 {
		days = DefaultShoppingWindow
	}

	a.mu.Lock()
	anchor := a.currentDayLocked()
	st := a.settings
	a.mu.Unlock()

	names, metas := a.aggregator.MealNames(ctx, anchor, days, st)
	for _, meta := range metas {
		a.recordMeta(meta)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("could not assemble meals for the next %d days", days)
	}

	list, meta, err := a.builder.Build(ctx, names, days)
	a.recordMeta(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to build shopping list: %w", err)
	}
	list.StartDate = a.now()

	a.mu.Lock()
	a.shoppingList = list
	a.mu.Unlock()

	if err := a.store.SaveShoppingList(list); err != nil {
		log.Printf("Warning: failed to persist shopping list: %v", err)
	}
	return list, nil
}

// ShoppingList returns the saved shopping list, or nil when none exists.
func (a *App) ShoppingList() *shopping.List {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.shoppingList
}

// ToggleShoppingItem flips the checked state of one item and persists the
// updated list.
func (a *App) ToggleShoppingItem(index int) (*shopping.List, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.shoppingList == nil {
		return nil, fmt.Errorf("no shopping list to update")
	}
	updated := shopping.Toggle(*a.shoppingList, index)
	a.shoppingList = &updated

	if err := a.store.SaveShoppingList(&updated); err != nil {
		return nil, fmt.Errorf("failed to persist shopping list: %w", err)
	}
	return &updated, nil
}

// ClearShoppingList drops the saved shopping list.
func (a *App) ClearShoppingList() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.shoppingList = nil
	return a.store.ClearShoppingList()
}

// RecipeDetails generates preparation details for a single dish.
func (a *App) RecipeDetails(ctx context.Context, dishName string) (*recipe.Details, error) {
	details, meta, err := a.recipes.Details(ctx, dishName)
	a.recordMeta(meta)
	if err != nil {
		return nil, err
	}
	return details, nil
}

// AdaptRecipeFromURL fetches a recipe page and adapts it for the program.
func (a *App) AdaptRecipeFromURL(ctx context.Context, url string) (*clipper.AdaptedRecipe, error) {
	adapted, meta, err := a.clipper.ClipURL(ctx, url)
	a.recordMeta(meta)
	if err != nil {
		return nil, err
	}
	return adapted, nil
}

func (a *App) recordMeta(meta shared.AgentMeta) {
	if a.metricsStore == nil {
		return
	}
	if err := a.metricsStore.RecordMeta(meta); err != nil {
		log.Printf("Warning: failed to record metrics for %s: %v", meta.AgentName, err)
	}
}
