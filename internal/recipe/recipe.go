package recipe

import (
	"context"
	"fmt"
	"time"

	"postpartum-meal-planner/internal/llm"
	"postpartum-meal-planner/internal/program"
	"postpartum-meal-planner/internal/shared"
)

const detailsSystemPrompt = "你是一位经验丰富的月子餐大厨。请以纯 JSON 格式提供详细的菜谱制作指南。"

// Details is the cooking guide for a single dish. The JSON tags match the
// structure the generator is asked for.
type Details struct {
	Ingredients         []string `json:"ingredients"`
	Steps               []string `json:"steps"`
	Tips                []string `json:"tips"`
	NutritionHighlights string   `json:"nutritionHighlights"`
}

// Service generates recipe details through the content generator.
type Service struct {
	gen llm.Generator
}

// NewService creates a new recipe Service.
func NewService(gen llm.Generator) *Service {
	return &Service{gen: gen}
}

// Details generates the cooking guide for one dish. The seed is derived
// from the dish name alone: details for a given dish are meant to be stable
// across sessions.
func (s *Service) Details(ctx context.Context, dishName string) (*Details, shared.AgentMeta, error) {
	seed := program.Seed(dishName)

	start := time.Now()
	resp, err := s.gen.Generate(ctx, llm.Request{
		System:   detailsSystemPrompt,
		User:     buildDetailsPrompt(dishName),
		Seed:     seed,
		JSONMode: true,
	})
	meta := shared.AgentMeta{
		AgentName: "RecipeDetails",
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		return nil, meta, fmt.Errorf("failed to generate recipe details for %q: %w", dishName, err)
	}

	var details Details
	if err := llm.DecodeJSON(resp.Content, &details); err != nil {
		return nil, meta, err
	}

	return &details, meta, nil
}

func buildDetailsPrompt(dishName string) string {
	return fmt.Sprintf(`请提供适合坐月子产妇食用的菜谱详情： "%s"。
要求：低盐、少油、无刺激性调料。
请包含：
1. 食材清单（带大致用量）。
2. 详细烹饪步骤。
3. 恢复贴士（为什么这道菜适合产妇）。
4. 营养亮点（一句话）。

返回 JSON 格式如下：
{
  "ingredients": ["食材1", "食材2"],
  "steps": ["步骤1", "步骤2"],
  "tips": ["贴士1", "贴士2"],
  "nutritionHighlights": "营养亮点描述"
}`, dishName)
}
