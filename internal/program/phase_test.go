package program

import "testing"

func stageIndex(t *testing.T, name string) int {
	t.Helper()
	switch name {
	case Classify(1).Name:
		return 0
	case Classify(8).Name:
		return 1
	case Classify(15).Name:
		return 2
	}
	t.Fatalf("Unknown phase name %q", name)
	return -1
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		day      int
		expected string
	}{
		{1, Classify(1).Name},
		{7, Classify(1).Name},
		{8, Classify(8).Name},
		{14, Classify(8).Name},
		{15, Classify(15).Name},
		{30, Classify(15).Name},
	}

	for _, c := range cases {
		got := Classify(c.day)
		if got.Name != c.expected {
			t.Errorf("Day %d: expected phase %q, got %q", c.day, c.expected, got.Name)
		}
		if got.Focus == "" {
			t.Errorf("Day %d: expected a non-empty focus", c.day)
		}
	}
}

func TestClassifyMonotone(t *testing.T) {
	prev := 0
	for day := 1; day <= 30; day++ {
		idx := stageIndex(t, Classify(day).Name)
		if idx < prev {
			t.Errorf("Stage index decreased at day %d: %d -> %d", day, prev, idx)
		}
		prev = idx
	}
}

func TestClassifyIsTotal(t *testing.T) {
	// The classifier does not validate range; out-of-range days still map
	// to a stage.
	if Classify(-5).Name != Classify(1).Name {
		t.Error("Expected negative days to fall into the first stage")
	}
	if Classify(99).Name != Classify(30).Name {
		t.Error("Expected days past the program to fall into the last stage")
	}
}
