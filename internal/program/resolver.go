package program

import (
	"math"
	"time"
)

// Program length boundaries. The start date counts as day 1.
const (
	FirstDay = 1
	FinalDay = 30
)

// ClampDay forces a day into the program range [1,30]. Out-of-range values
// are clamped, never rejected.
func ClampDay(day int) int {
	if day < FirstDay {
		return FirstDay
	}
	if day > FinalDay {
		return FinalDay
	}
	return day
}

// ResolveCurrentDay computes the current program day from the start date and
// the wall clock. Both timestamps are normalized to midnight before taking
// the whole-day difference, so the answer only changes at date boundaries.
func ResolveCurrentDay(startDate, now time.Time) int {
	start := midnight(startDate)
	today := midnight(now)
	// Rounding keeps the count correct across DST transitions.
	days := int(math.Round(today.Sub(start).Hours()/24)) + 1
	return ClampDay(days)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Navigator tracks the day the user is browsing, which moves independently
// of the real current day.
type Navigator struct {
	viewing int
}

// NewNavigator starts browsing at the given day, clamped to the program
// range.
func NewNavigator(day int) *Navigator {
	return &Navigator{viewing: ClampDay(day)}
}

// Viewing returns the day currently being browsed.
func (n *Navigator) Viewing() int {
	return n.viewing
}

// Next advances one day. At day 30 it is a no-op.
func (n *Navigator) Next() int {
	n.viewing = ClampDay(n.viewing + 1)
	return n.viewing
}

// Prev steps back one day. At day 1 it is a no-op.
func (n *Navigator) Prev() int {
	n.viewing = ClampDay(n.viewing - 1)
	return n.viewing
}

// JumpTo moves straight to a day, clamped to the program range.
func (n *Navigator) JumpTo(day int) int {
	n.viewing = ClampDay(day)
	return n.viewing
}
