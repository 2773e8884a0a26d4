package clipper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"postpartum-meal-planner/internal/llm"
	"postpartum-meal-planner/internal/program"
	"postpartum-meal-planner/internal/recipe"
	"postpartum-meal-planner/internal/shared"

	"github.com/PuerkitoBio/goquery"
)

const adaptSystemPrompt = "你是一位专业的月子餐营养师。请评估网页中的菜谱是否适合坐月子的产妇，并给出月子期改良版。请以纯 JSON 格式返回。"

// Clipper fetches a recipe web page and asks the content generator to
// judge and adapt the dish for postpartum confinement.
type Clipper struct {
	textGen llm.Generator
}

// AdaptedRecipe is the confinement-adjusted version of a clipped dish.
type AdaptedRecipe struct {
	Title    string         `json:"title"`
	Suitable bool           `json:"suitable"`
	Advice   string         `json:"advice"`
	Details  recipe.Details `json:"details"`
}

// NewClipper creates a new Clipper instance.
func NewClipper(textGen llm.Generator) *Clipper {
	return &Clipper{textGen: textGen}
}

// ClipURL fetches the URL, extracts the page text, and produces a
// postpartum-adapted version of the recipe it describes.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*AdaptedRecipe, shared.AgentMeta, error) {
	content, err := c.fetchAndCleanHTML(url)
	if err != nil {
		return nil, shared.AgentMeta{AgentName: "RecipeAdapt"}, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf(`请阅读以下网页内容中的菜谱，并完成：
1. 判断这道菜是否适合坐月子的产妇食用（考虑：生冷、辛辣、油腻、活血食材等）。
2. 给出一句话建议（为什么适合/不适合，如何调整）。
3. 提供月子期改良版做法：低盐、少油、无刺激性调料。

返回 JSON 结构：
{
  "title": "菜名",
  "suitable": true,
  "advice": "一句话建议",
  "details": {
    "ingredients": ["食材1", "食材2"],
    "steps": ["步骤1", "步骤2"],
    "tips": ["贴士1"],
    "nutritionHighlights": "营养亮点描述"
  }
}

网页内容：
%s`, content)

	start := time.Now()
	resp, err := c.textGen.Generate(ctx, llm.Request{
		System:   adaptSystemPrompt,
		User:     prompt,
		Seed:     program.Seed(url),
		JSONMode: true,
	})
	meta := shared.AgentMeta{
		AgentName: "RecipeAdapt",
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		return nil, meta, fmt.Errorf("ai adaptation failed: %w", err)
	}

	var adapted AdaptedRecipe
	if err := llm.DecodeJSON(resp.Content, &adapted); err != nil {
		return nil, meta, err
	}

	return &adapted, meta, nil
}

func (c *Clipper) fetchAndCleanHTML(url string) (string, error) {
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save generator tokens.
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}
