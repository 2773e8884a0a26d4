package clipper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"postpartum-meal-planner/internal/llm"
)

type MockGenerator struct {
	Response    string
	ShouldError bool
	LastRequest llm.Request
}

func (m *MockGenerator) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	m.LastRequest = req
	if m.ShouldError {
		return llm.Response{}, fmt.Errorf("mock ai error")
	}
	return llm.Response{Content: m.Response}, nil
}

func TestFetchAndCleanHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		html := `
		<html>
			<head><script>alert('bad');</script></head>
			<body>
				<h1>麻辣水煮鱼</h1>
				<div class="ads">广告内容</div>
				<p>将鱼切片，用大量辣椒爆炒。</p>
				<script>more_bad_stuff()</script>
				<footer>Copyright 2024</footer>
			</body>
		</html>`
		w.Write([]byte(html))
	}))
	defer ts.Close()

	c := NewClipper(&MockGenerator{})

	cleanText, err := c.fetchAndCleanHTML(ts.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if strings.Contains(cleanText, "alert('bad')") {
		t.Error("Failed to remove <script> tags")
	}
	if strings.Contains(cleanText, "广告内容") {
		t.Error("Failed to remove .ads class")
	}
	if strings.Contains(cleanText, "Copyright 2024") {
		t.Error("Failed to remove <footer>")
	}
	if !strings.Contains(cleanText, "麻辣水煮鱼") {
		t.Error("Expected to find the dish title")
	}
	if !strings.Contains(cleanText, "将鱼切片") {
		t.Error("Expected to find body content")
	}
}

func TestClipURL(t *testing.T) {
	aiResponse := `{
		"title": "水煮鱼（月子改良版）",
		"suitable": false,
		"advice": "原做法辛辣刺激，月子期应改为清炖。",
		"details": {
			"ingredients": ["鲈鱼 1条", "生姜 3片"],
			"steps": ["鱼切段", "清水炖煮"],
			"tips": ["避免辣椒"],
			"nutritionHighlights": "高蛋白低脂"
		}
	}`

	mockAI := &MockGenerator{Response: aiResponse}
	c := NewClipper(mockAI)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>水煮鱼做法：大量辣椒……</body></html>"))
	}))
	defer ts.Close()

	adapted, _, err := c.ClipURL(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("ClipURL failed: %v", err)
	}

	if adapted.Title != "水煮鱼（月子改良版）" {
		t.Errorf("Unexpected title %q", adapted.Title)
	}
	if adapted.Suitable {
		t.Error("Expected the dish to be flagged as unsuitable")
	}
	if len(adapted.Details.Ingredients) != 2 {
		t.Errorf("Expected 2 ingredients, got %d", len(adapted.Details.Ingredients))
	}
	if !strings.Contains(mockAI.LastRequest.User, "水煮鱼做法") {
		t.Error("Expected the cleaned page content in the prompt")
	}
}

func TestClipURLFetchFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClipper(&MockGenerator{})
	_, _, err := c.ClipURL(context.Background(), ts.URL)
	if err == nil {
		t.Fatal("Expected an error for a failing fetch")
	}
}
