package plan

import "sync"

// Cache holds the single most recently fetched daily plan. A stored plan is
// a hit only when its day matches the requested day; staleness is tied to
// semantic identity, never to wall-clock time. Settings changes that alter
// generation inputs must call Invalidate.
type Cache struct {
	mu   sync.Mutex
	plan *DailyPlan
}

// NewCache creates an empty single-slot cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached plan if it covers exactly the requested day.
func (c *Cache) Get(day int) (*DailyPlan, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.plan == nil || c.plan.Day != day {
		return nil, false
	}
	return c.plan, true
}

// Set overwrites the slot unconditionally.
func (c *Cache) Set(p *DailyPlan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plan = p
}

// Cached returns whatever plan is currently stored, or nil.
func (c *Cache) Cached() *DailyPlan {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plan
}

// Invalidate clears the slot.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plan = nil
}
