package plan

// The five fixed meal slots of a program day. The generator is asked for
// one dish per slot but the contract is not enforced on its output.
const (
	MealBreakfast      = "早餐"
	MealMorningSnack   = "早加餐"
	MealLunch          = "午餐"
	MealAfternoonSnack = "午加餐"
	MealDinner         = "晚餐"
)

// Meal is a single dish in a daily plan. ID is derived from
// (day, index, seed) so it is stable across re-renders for the same logical
// day, without being globally unique across days.
type Meal struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Calories    int      `json:"calories,omitempty"`
	Tags        []string `json:"tags"`
	IsCompleted bool     `json:"is_completed"`
}

// DailyPlan is the full set of meals for one program day. It replaces any
// previously cached plan wholesale; there is no partial merge.
type DailyPlan struct {
	Day   int    `json:"day"`
	Phase string `json:"phase"`
	Meals []Meal `json:"meals"`
}

// MealNames returns the dish names in slot order.
func (p *DailyPlan) MealNames() []string {
	names := make([]string, 0, len(p.Meals))
	for _, m := range p.Meals {
		names = append(names, m.Name)
	}
	return names
}
