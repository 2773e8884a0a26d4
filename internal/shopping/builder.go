package shopping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"postpartum-meal-planner/internal/llm"
	"postpartum-meal-planner/internal/program"
	"postpartum-meal-planner/internal/shared"
)

const builderSystemPrompt = "你是一个智能生活助手，擅长整理采购清单。请以纯 JSON 格式返回。"

// Builder asks the content generator to consolidate meal names into a
// categorized shopping list.
type Builder struct {
	gen llm.Generator
}

// NewBuilder creates a new Builder instance.
func NewBuilder(gen llm.Generator) *Builder {
	return &Builder{gen: gen}
}

// Build merges the ingredients of the given meals into one deduplicated
// list bucketed into the eight fixed categories. Every item starts
// unchecked regardless of any previous list.
func (b *Builder) Build(ctx context.Context, mealNames []string, daysCovered int) (*List, shared.AgentMeta, error) {
	seed := program.Seed(strings.Join(mealNames, ","))

	start := time.Now()
	resp, err := b.gen.Generate(ctx, llm.Request{
		System:   builderSystemPrompt,
		User:     buildShoppingPrompt(mealNames, daysCovered),
		Seed:     seed,
		JSONMode: true,
	})
	meta := shared.AgentMeta{
		AgentName: "ShoppingList",
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		return nil, meta, fmt.Errorf("failed to generate shopping list: %w", err)
	}

	var payload struct {
		Items []struct {
			Name     string `json:"name"`
			Amount   string `json:"amount"`
			Category string `json:"category"`
		} `json:"items"`
	}
	if err := llm.DecodeJSON(resp.Content, &payload); err != nil {
		return nil, meta, err
	}

	items := make([]Item, 0, len(payload.Items))
	for _, it := range payload.Items {
		items = append(items, Item{
			Name:     it.Name,
			Amount:   it.Amount,
			Category: it.Category,
			Checked:  false,
		})
	}

	// The caller stamps StartDate from its own clock.
	return &List{
		DaysCovered: daysCovered,
		Items:       items,
	}, meta, nil
}

func buildShoppingPrompt(mealNames []string, days int) string {
	return fmt.Sprintf(`请为以下 %d 天的月子餐生成一份合并的采购清单：
%s。

要求：
1. 合并相同食材（例如两个菜都需要鸡蛋，合并数量）。
2. 分类必须为中文：%s。
3. 数量要符合家庭采购习惯（如：500g，1把，3个）。

返回 JSON 结构：
{
  "items": [
    {
      "name": "食材名",
      "amount": "数量",
      "category": "分类"
    }
  ]
}`, days, strings.Join(mealNames, "、"), strings.Join(Categories, "、"))
}
