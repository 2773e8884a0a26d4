package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"postpartum-meal-planner/internal/plan"
	"postpartum-meal-planner/internal/settings"
	"postpartum-meal-planner/internal/shopping"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create Store: %v", err)
	}
	return store
}

func TestSettingsSlot(t *testing.T) {
	store := newTestStore(t)

	t.Run("AbsentIsValid", func(t *testing.T) {
		_, ok, err := store.LoadSettings()
		if err != nil {
			t.Fatalf("Expected no error for an absent slot, got %v", err)
		}
		if ok {
			t.Fatal("Expected no settings before the first save")
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		st := settings.Settings{
			StartDate:        "2025-03-01",
			Dislikes:         []string{"香菜"},
			Allergies:        []string{"花生"},
			LactationSupport: true,
		}
		if err := store.SaveSettings(st); err != nil {
			t.Fatalf("Failed to save settings: %v", err)
		}

		loaded, ok, err := store.LoadSettings()
		if err != nil || !ok {
			t.Fatalf("Failed to load settings: ok=%v err=%v", ok, err)
		}
		if loaded.StartDate != "2025-03-01" {
			t.Errorf("Expected start date 2025-03-01, got %s", loaded.StartDate)
		}
		if len(loaded.Dislikes) != 1 || loaded.Dislikes[0] != "香菜" {
			t.Errorf("Unexpected dislikes: %v", loaded.Dislikes)
		}
	})
}

func TestDailyPlanSlot(t *testing.T) {
	store := newTestStore(t)

	if p, err := store.LoadDailyPlan(); err != nil || p != nil {
		t.Fatalf("Expected nil plan before the first save, got %v err=%v", p, err)
	}

	p := &plan.DailyPlan{
		Day:   5,
		Phase: "第一阶段：排毒消肿",
		Meals: []plan.Meal{{ID: "5-0-123", Name: "小米红糖粥", Type: plan.MealBreakfast, Tags: []string{"补血"}}},
	}
	if err := store.SaveDailyPlan(p); err != nil {
		t.Fatalf("Failed to save plan: %v", err)
	}

	loaded, err := store.LoadDailyPlan()
	if err != nil {
		t.Fatalf("Failed to load plan: %v", err)
	}
	if loaded.Day != 5 || len(loaded.Meals) != 1 || loaded.Meals[0].Name != "小米红糖粥" {
		t.Errorf("Unexpected loaded plan: %+v", loaded)
	}

	if err := store.ClearDailyPlan(); err != nil {
		t.Fatalf("Failed to clear plan: %v", err)
	}
	if p, err := store.LoadDailyPlan(); err != nil || p != nil {
		t.Errorf("Expected nil plan after clear, got %v err=%v", p, err)
	}

	// Clearing an already-empty slot is not an error.
	if err := store.ClearDailyPlan(); err != nil {
		t.Errorf("Expected clearing an empty slot to succeed, got %v", err)
	}
}

func TestShoppingListSlot(t *testing.T) {
	store := newTestStore(t)

	list := &shopping.List{
		StartDate:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		DaysCovered: 3,
		Items:       []shopping.Item{{Name: "鸡蛋", Amount: "10个", Category: "奶制品", Checked: true}},
	}
	if err := store.SaveShoppingList(list); err != nil {
		t.Fatalf("Failed to save shopping list: %v", err)
	}

	loaded, err := store.LoadShoppingList()
	if err != nil {
		t.Fatalf("Failed to load shopping list: %v", err)
	}
	if loaded.DaysCovered != 3 || len(loaded.Items) != 1 || !loaded.Items[0].Checked {
		t.Errorf("Unexpected loaded list: %+v", loaded)
	}

	if err := store.ClearShoppingList(); err != nil {
		t.Fatalf("Failed to clear shopping list: %v", err)
	}
	if l, err := store.LoadShoppingList(); err != nil || l != nil {
		t.Errorf("Expected nil list after clear, got %v err=%v", l, err)
	}
}

func TestSlotFilesAreJSON(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("Failed to create Store: %v", err)
	}

	if err := store.SaveSettings(settings.Settings{StartDate: "2025-03-01"}); err != nil {
		t.Fatalf("Failed to save settings: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "settings.json")); err != nil {
		t.Errorf("Expected settings.json to exist: %v", err)
	}
}
