package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"postpartum-meal-planner/internal/plan"
	"postpartum-meal-planner/internal/settings"
	"postpartum-meal-planner/internal/shopping"
)

// Slot file names. Each slot stores one JSON snapshot of the corresponding
// entity; a missing file is a valid empty initial state.
const (
	slotSettings     = "settings"
	slotDailyPlan    = "daily_plan"
	slotShoppingList = "shopping_list"
)

// Store persists application state as JSON snapshot files, one per slot.
// Writes replace the whole snapshot; there is no partial update.
type Store struct {
	basePath string
}

// NewStore creates a new Store and ensures the base directory exists.
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) slotPath(slot string) string {
	return filepath.Join(s.basePath, slot+".json")
}

func (s *Store) save(slot string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", slot, err)
	}
	if err := os.WriteFile(s.slotPath(slot), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s slot: %w", slot, err)
	}
	return nil
}

// load reads a slot into v. It reports whether the slot existed.
func (s *Store) load(slot string, v any) (bool, error) {
	data, err := os.ReadFile(s.slotPath(slot))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s slot: %w", slot, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", slot, err)
	}
	return true, nil
}

func (s *Store) clear(slot string) error {
	if err := os.Remove(s.slotPath(slot)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear %s slot: %w", slot, err)
	}
	return nil
}

// SaveSettings writes the settings snapshot.
func (s *Store) SaveSettings(st settings.Settings) error {
	return s.save(slotSettings, st)
}

// LoadSettings reads the settings snapshot. The second return value is
// false when no settings have been saved yet.
func (s *Store) LoadSettings() (settings.Settings, bool, error) {
	var st settings.Settings
	ok, err := s.load(slotSettings, &st)
	return st, ok, err
}

// SaveDailyPlan writes the cached daily plan snapshot.
func (s *Store) SaveDailyPlan(p *plan.DailyPlan) error {
	return s.save(slotDailyPlan, p)
}

// LoadDailyPlan reads the cached daily plan, or nil when absent.
func (s *Store) LoadDailyPlan() (*plan.DailyPlan, error) {
	var p plan.DailyPlan
	ok, err := s.load(slotDailyPlan, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// ClearDailyPlan removes the cached daily plan snapshot.
func (s *Store) ClearDailyPlan() error {
	return s.clear(slotDailyPlan)
}

// SaveShoppingList writes the shopping list snapshot.
func (s *Store) SaveShoppingList(list *shopping.List) error {
	return s.save(slotShoppingList, list)
}

// LoadShoppingList reads the shopping list, or nil when absent.
func (s *Store) LoadShoppingList() (*shopping.List, error) {
	var list shopping.List
	ok, err := s.load(slotShoppingList, &list)
	if err != nil || !ok {
		return nil, err
	}
	return &list, nil
}

// ClearShoppingList removes the shopping list snapshot.
func (s *Store) ClearShoppingList() error {
	return s.clear(slotShoppingList)
}
