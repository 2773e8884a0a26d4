package plan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"postpartum-meal-planner/internal/llm"
	"postpartum-meal-planner/internal/program"
	"postpartum-meal-planner/internal/settings"
)

type MockGenerator struct {
	Response    string
	ShouldError bool
	Calls       int
	LastRequest llm.Request
}

func (m *MockGenerator) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	m.Calls++
	m.LastRequest = req
	if m.ShouldError {
		return llm.Response{}, fmt.Errorf("mock generator error")
	}
	return llm.Response{Content: m.Response}, nil
}

func testSettings() settings.Settings {
	return settings.Settings{
		StartDate:        "2025-03-01",
		Dislikes:         []string{"香菜"},
		Allergies:        []string{"花生"},
		LactationSupport: true,
	}
}

func TestFetch(t *testing.T) {
	gen := &MockGenerator{Response: `{
		"meals": [
			{"name": "小米红糖粥", "type": "早餐", "description": "补血暖胃", "calories": 280, "tags": ["补血", "易消化"]},
			{"name": "去油鲫鱼汤", "type": "午餐", "description": "科学下奶"}
		]
	}`}
	fetcher := NewFetcher(gen)

	p, _, err := fetcher.Fetch(context.Background(), 3, testSettings())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if p.Day != 3 {
		t.Errorf("Expected day 3, got %d", p.Day)
	}
	if p.Phase != program.Classify(3).Name {
		t.Errorf("Unexpected phase %q", p.Phase)
	}
	if len(p.Meals) != 2 {
		t.Fatalf("Expected 2 meals, got %d", len(p.Meals))
	}

	seed := program.Seed("2025-03-01-Day-3")
	expectedID := fmt.Sprintf("3-0-%d", seed)
	if p.Meals[0].ID != expectedID {
		t.Errorf("Expected meal ID %q, got %q", expectedID, p.Meals[0].ID)
	}
	if gen.LastRequest.Seed != seed {
		t.Errorf("Expected request seed %d, got %d", seed, gen.LastRequest.Seed)
	}

	// Missing optional fields default rather than fail.
	if p.Meals[1].Tags == nil || len(p.Meals[1].Tags) != 0 {
		t.Errorf("Expected missing tags to default to an empty list, got %v", p.Meals[1].Tags)
	}
	if p.Meals[0].IsCompleted || p.Meals[1].IsCompleted {
		t.Error("Expected meals to start uncompleted")
	}
}

func TestFetchPromptContents(t *testing.T) {
	gen := &MockGenerator{Response: `{"meals": []}`}
	fetcher := NewFetcher(gen)

	if _, _, err := fetcher.Fetch(context.Background(), 3, testSettings()); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	prompt := gen.LastRequest.User
	for _, want := range []string{"第 3 天", "香菜", "花生", "需要催乳"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
	if !gen.LastRequest.JSONMode {
		t.Error("Expected JSON mode to be requested")
	}

	st := testSettings()
	st.LactationSupport = false
	if _, _, err := fetcher.Fetch(context.Background(), 3, st); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(gen.LastRequest.User, "无需催乳") {
		t.Error("Expected the neutral lactation instruction when support is off")
	}
}

func TestFetchGeneratorError(t *testing.T) {
	fetcher := NewFetcher(&MockGenerator{ShouldError: true})

	_, _, err := fetcher.Fetch(context.Background(), 3, testSettings())
	if err == nil {
		t.Fatal("Expected an error when the generator fails")
	}
}

func TestFetchMalformedResponse(t *testing.T) {
	fetcher := NewFetcher(&MockGenerator{Response: "not json at all"})

	_, _, err := fetcher.Fetch(context.Background(), 3, testSettings())
	if err == nil {
		t.Fatal("Expected an error for a malformed response")
	}
	var malformed *llm.MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("Expected a MalformedResponseError, got %T", err)
	}
}

func TestFetchAcceptsFencedJSON(t *testing.T) {
	gen := &MockGenerator{Response: "```json\n{\"meals\": [{\"name\": \"红枣银耳汤\", \"type\": \"早加餐\", \"description\": \"滋补\", \"tags\": []}]}\n```"}
	fetcher := NewFetcher(gen)

	p, _, err := fetcher.Fetch(context.Background(), 20, testSettings())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(p.Meals) != 1 || p.Meals[0].Name != "红枣银耳汤" {
		t.Errorf("Unexpected meals: %+v", p.Meals)
	}
}
