package settings

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar-date format used for the program start
// date. Devices configured with the same start date derive the same seeds
// and therefore the same generated plans.
const DateLayout = "2006-01-02"

// Settings holds the user preferences that drive plan generation. Mutation
// is always whole-value replacement; callers never edit fields in place on
// a shared copy.
type Settings struct {
	StartDate        string   `json:"start_date"`
	Dislikes         []string `json:"dislikes"`
	Allergies        []string `json:"allergies"`
	LactationSupport bool     `json:"lactation_support"`
	SeniorMode       bool     `json:"senior_mode"`
}

// Default returns the first-run settings: the program starts today and
// lactation support is on, since that is the common case.
func Default(now time.Time) Settings {
	return Settings{
		StartDate:        now.Format(DateLayout),
		Dislikes:         []string{},
		Allergies:        []string{},
		LactationSupport: true,
		SeniorMode:       false,
	}
}

// StartTime parses the configured start date in the local time zone.
func (s Settings) StartTime() (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s.StartDate, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date %q: %w", s.StartDate, err)
	}
	return t, nil
}

// InvalidatesPlan reports whether replacing old with updated changes the
// generation inputs. Only the start date and dislikes feed the generator;
// lactation support and senior mode are soft preferences and deliberately
// do not force a regeneration.
func InvalidatesPlan(old, updated Settings) bool {
	if old.StartDate != updated.StartDate {
		return true
	}
	return !equalLists(old.Dislikes, updated.Dislikes)
}

func equalLists(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
