package plan

import "testing"

func TestCacheHitAndMiss(t *testing.T) {
	cache := NewCache()

	if _, ok := cache.Get(5); ok {
		t.Fatal("Expected an empty cache to miss")
	}

	cache.Set(&DailyPlan{Day: 5, Phase: "第一阶段：排毒消肿"})

	got, ok := cache.Get(5)
	if !ok {
		t.Fatal("Expected a hit for day 5")
	}
	if got.Day != 5 {
		t.Errorf("Expected day 5, got %d", got.Day)
	}

	if _, ok := cache.Get(6); ok {
		t.Error("Expected a miss for day 6")
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache := NewCache()
	cache.Set(&DailyPlan{Day: 5})

	cache.Invalidate()

	if _, ok := cache.Get(5); ok {
		t.Error("Expected a miss after invalidation")
	}
	if cache.Cached() != nil {
		t.Error("Expected no cached plan after invalidation")
	}
}

func TestCacheSetOverwrites(t *testing.T) {
	cache := NewCache()
	cache.Set(&DailyPlan{Day: 5})
	cache.Set(&DailyPlan{Day: 9})

	if _, ok := cache.Get(5); ok {
		t.Error("Expected day 5 to be evicted by the day 9 plan")
	}
	if _, ok := cache.Get(9); !ok {
		t.Error("Expected a hit for day 9")
	}
}
