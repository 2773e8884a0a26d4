package plan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"postpartum-meal-planner/internal/llm"
	"postpartum-meal-planner/internal/program"
	"postpartum-meal-planner/internal/settings"
	"postpartum-meal-planner/internal/shared"
)

const planSystemPrompt = "你是一位专业的月子餐营养师。请根据产妇的产后天数和身体状况，生成科学的膳食计划。请务必以纯 JSON 格式返回数据。"

const (
	lactationOnInstruction  = "需要催乳：请在食谱中适当安排科学下奶的汤水（如去油鲫鱼汤、去油猪蹄汤、木瓜等），并保证水分充足。"
	lactationOffInstruction = "无需催乳：饮食清淡均衡即可，避免过度摄入油腻下奶汤水，防止堵奶。"
)

// Fetcher generates a single day's plan through the content generator.
type Fetcher struct {
	gen llm.Generator
}

// NewFetcher creates a new Fetcher instance.
func NewFetcher(gen llm.Generator) *Fetcher {
	return &Fetcher{gen: gen}
}

// Fetch builds the generation request for one program day and maps the
// result into a DailyPlan. The seed is derived from the start date and the
// day, so two devices with the same settings ask for the same plan. On any
// transport or parse failure no partial plan is returned and previously
// cached state is left untouched by this layer.
func (f *Fetcher) Fetch(ctx context.Context, day int, st settings.Settings) (*DailyPlan, shared.AgentMeta, error) {
	phase := program.Classify(day)
	seed := program.Seed(fmt.Sprintf("%s-Day-%d", st.StartDate, day))

	start := time.Now()
	resp, err := f.gen.Generate(ctx, llm.Request{
		System:   planSystemPrompt,
		User:     buildPlanPrompt(day, phase, st),
		Seed:     seed,
		JSONMode: true,
	})
	meta := shared.AgentMeta{
		AgentName: "DailyPlan",
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		return nil, meta, fmt.Errorf("failed to generate daily plan for day %d: %w", day, err)
	}

	var payload struct {
		Meals []struct {
			Name        string   `json:"name"`
			Type        string   `json:"type"`
			Description string   `json:"description"`
			Calories    int      `json:"calories"`
			Tags        []string `json:"tags"`
		} `json:"meals"`
	}
	if err := llm.DecodeJSON(resp.Content, &payload); err != nil {
		return nil, meta, err
	}

	// Accept whatever the generator returned; slot count is not enforced.
	meals := make([]Meal, 0, len(payload.Meals))
	for i, m := range payload.Meals {
		tags := m.Tags
		if tags == nil {
			tags = []string{}
		}
		meals = append(meals, Meal{
			ID:          fmt.Sprintf("%d-%d-%d", day, i, seed),
			Name:        m.Name,
			Type:        m.Type,
			Description: m.Description,
			Calories:    m.Calories,
			Tags:        tags,
			IsCompleted: false,
		})
	}

	return &DailyPlan{
		Day:   day,
		Phase: phase.Name,
		Meals: meals,
	}, meta, nil
}

func buildPlanPrompt(day int, phase program.Phase, st settings.Settings) string {
	lactation := lactationOffInstruction
	if st.LactationSupport {
		lactation = lactationOnInstruction
	}

	return fmt.Sprintf(`请为坐月子的产妇生成第 %d 天的月子餐计划（所属阶段：%s）。
阶段重点：%s。
用户忌口/不喜欢：%s。请不要仅仅去除某项食材，而是直接更换菜品。
用户过敏源：%s。
%s

遵循原则：
1. 结合传统中医坐月子理念（温补、忌生冷）和现代营养学（低盐、高蛋白）。
2. 提供5顿餐点：%s、%s、%s、%s、%s。
3. 菜名要地道、具体（例如“小米红糖粥”而不是“粥”）。

请严格按照以下 JSON 结构返回：
{
  "meals": [
    {
      "name": "具体的菜品名称",
      "type": "餐点类型（必须是：%s、%s、%s、%s、%s 之一）",
      "description": "简短的推荐理由或功效（20字以内）",
      "calories": 300,
      "tags": ["标签1", "标签2"]
    }
  ]
}`,
		day, phase.Name, phase.Focus,
		joinOrNone(st.Dislikes), joinOrNone(st.Allergies), lactation,
		MealBreakfast, MealMorningSnack, MealLunch, MealAfternoonSnack, MealDinner,
		MealBreakfast, MealMorningSnack, MealLunch, MealAfternoonSnack, MealDinner,
	)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "无"
	}
	return strings.Join(items, "、")
}
