package shopping

import "time"

// Categories are the eight fixed buckets every shopping item falls into.
var Categories = []string{"蔬菜", "肉禽", "水产", "粮油干货", "调味品", "水果", "奶制品", "其他"}

// Item is a single consolidated ingredient on the shopping list.
type Item struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
	Checked  bool   `json:"checked"`
}

// List is a generated shopping list covering the next DaysCovered days.
// Regeneration replaces the previous list wholesale; checked state never
// carries over.
type List struct {
	StartDate   time.Time `json:"start_date"`
	DaysCovered int       `json:"days_covered"`
	Items       []Item    `json:"items"`
}

// Toggle returns a copy of the list with the checked state of the item at
// index flipped. Every other field and the ordering are untouched;
// out-of-range indexes return the list unchanged.
func Toggle(list List, index int) List {
	items := make([]Item, len(list.Items))
	copy(items, list.Items)
	if index >= 0 && index < len(items) {
		items[index].Checked = !items[index].Checked
	}
	list.Items = items
	return list
}
