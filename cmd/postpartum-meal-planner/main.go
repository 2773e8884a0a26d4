package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"postpartum-meal-planner/internal/app"
	"postpartum-meal-planner/internal/config"
	"postpartum-meal-planner/internal/database"
	"postpartum-meal-planner/internal/llm"
	"postpartum-meal-planner/internal/metrics"
	"postpartum-meal-planner/internal/plan"
	"postpartum-meal-planner/internal/settings"
	"postpartum-meal-planner/internal/shopping"
	"postpartum-meal-planner/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize content generator: %v", err)
	}
	if c, ok := gen.(llm.Closer); ok {
		defer c.Close()
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	metricsStore := metrics.NewStore(db.SQL)

	store, err := storage.NewStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	application, err := app.NewApp(gen, store, metricsStore, nil)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "today":
		application.JumpToDay(application.CurrentDay())
		showPlan(ctx, application, false)
	case "plan":
		if len(os.Args) >= 3 {
			day, err := strconv.Atoi(os.Args[2])
			if err != nil {
				log.Fatalf("Invalid day %q: expected a number", os.Args[2])
			}
			application.JumpToDay(day)
		}
		showPlan(ctx, application, false)
	case "next":
		application.NextDay()
		showPlan(ctx, application, false)
	case "prev":
		application.PrevDay()
		showPlan(ctx, application, false)
	case "refresh":
		showPlan(ctx, application, true)
	case "shopping":
		days := app.DefaultShoppingWindow
		if len(os.Args) >= 3 {
			parsed, err := strconv.Atoi(os.Args[2])
			if err != nil || parsed <= 0 {
				log.Fatalf("Invalid day count %q", os.Args[2])
			}
			days = parsed
		}
		list, err := application.BuildShoppingList(ctx, days)
		if err != nil {
			log.Fatalf("Failed to build shopping list: %v", err)
		}
		printShoppingList(list)
	case "toggle":
		if len(os.Args) < 3 {
			log.Fatal("Usage: postpartum-meal-planner toggle <item number>")
		}
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n < 1 {
			log.Fatalf("Invalid item number %q: expected a number from the shopping list", os.Args[2])
		}
		list, err := application.ToggleShoppingItem(n - 1)
		if err != nil {
			log.Fatalf("Failed to toggle item: %v", err)
		}
		printShoppingList(list)
	case "clear-shopping":
		if err := application.ClearShoppingList(); err != nil {
			log.Fatalf("Failed to clear shopping list: %v", err)
		}
		fmt.Println("Shopping list cleared.")
	case "recipe":
		if len(os.Args) < 3 {
			log.Fatal("Usage: postpartum-meal-planner recipe <dish name>")
		}
		details, err := application.RecipeDetails(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Failed to fetch recipe details: %v", err)
		}
		fmt.Printf("=== %s ===\n\n食材：\n", os.Args[2])
		for _, ing := range details.Ingredients {
			fmt.Printf("  - %s\n", ing)
		}
		fmt.Println("\n步骤：")
		for i, step := range details.Steps {
			fmt.Printf("  %d. %s\n", i+1, step)
		}
		for _, tip := range details.Tips {
			fmt.Printf("\n贴士：%s\n", tip)
		}
		if details.NutritionHighlights != "" {
			fmt.Printf("\n营养亮点：%s\n", details.NutritionHighlights)
		}
	case "adapt":
		if len(os.Args) < 3 {
			log.Fatal("Usage: postpartum-meal-planner adapt <url>")
		}
		adapted, err := application.AdaptRecipeFromURL(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Failed to adapt recipe: %v", err)
		}
		fmt.Printf("=== %s ===\n", adapted.Title)
		if adapted.Suitable {
			fmt.Println("适合月子期食用")
		} else {
			fmt.Println("原食谱不完全适合月子期，已做调整")
		}
		if adapted.Advice != "" {
			fmt.Printf("建议：%s\n", adapted.Advice)
		}
		fmt.Println("\n改造后食材：")
		for _, ing := range adapted.Details.Ingredients {
			fmt.Printf("  - %s\n", ing)
		}
		fmt.Println("\n改造后步骤：")
		for i, step := range adapted.Details.Steps {
			fmt.Printf("  %d. %s\n", i+1, step)
		}
	case "settings":
		runSettings(application, os.Args[2:])
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := metricsStore.Cleanup(*days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// newGenerator prefers DeepSeek when its key is set because the API honors
// an explicit seed; Gemini is the fallback.
func newGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	if cfg.DeepSeekAPIKey != "" {
		return llm.NewDeepSeekClient(cfg), nil
	}
	return llm.NewGeminiClient(ctx, cfg)
}

func showPlan(ctx context.Context, application *app.App, refresh bool) {
	var (
		p   *plan.DailyPlan
		err error
	)
	if refresh {
		p, err = application.RefreshPlan(ctx)
	} else {
		p, err = application.ViewPlan(ctx)
	}
	if err != nil {
		log.Fatalf("Failed to generate plan: %v", err)
	}

	marker := ""
	if p.Day == application.CurrentDay() {
		marker = "（今天）"
	}
	fmt.Printf("=== 第 %d 天%s · %s ===\n\n", p.Day, marker, p.Phase)
	for _, m := range p.Meals {
		fmt.Printf("%-4s %s", m.Type, m.Name)
		if m.Calories > 0 {
			fmt.Printf("（约 %d 千卡）", m.Calories)
		}
		fmt.Println()
		if m.Description != "" {
			fmt.Printf("     %s\n", m.Description)
		}
	}
}

// printShoppingList numbers every item so `toggle <number>` can refer to it.
func printShoppingList(list *shopping.List) {
	fmt.Printf("=== 采购清单（覆盖 %d 天）===\n", list.DaysCovered)
	for _, category := range shopping.Categories {
		first := true
		for i, item := range list.Items {
			if item.Category != category {
				continue
			}
			if first {
				fmt.Printf("\n%s\n", category)
				first = false
			}
			check := " "
			if item.Checked {
				check = "x"
			}
			fmt.Printf("  [%s] %2d. %s %s\n", check, i+1, item.Name, item.Amount)
		}
	}
}

func runSettings(application *app.App, args []string) {
	if len(args) == 0 {
		st := application.Settings()
		fmt.Printf("开始日期：      %s\n", st.StartDate)
		fmt.Printf("忌口：          %s\n", joinOrNone(st.Dislikes))
		fmt.Printf("过敏源：        %s\n", joinOrNone(st.Allergies))
		fmt.Printf("催乳支持：      %t\n", st.LactationSupport)
		fmt.Printf("长辈口味模式：  %t\n", st.SeniorMode)
		return
	}

	current := application.Settings()
	setCmd := flag.NewFlagSet("settings", flag.ExitOnError)
	start := setCmd.String("start", current.StartDate, "Program start date (YYYY-MM-DD)")
	dislikes := setCmd.String("dislikes", strings.Join(current.Dislikes, ","), "Comma-separated disliked foods")
	allergies := setCmd.String("allergies", strings.Join(current.Allergies, ","), "Comma-separated allergens")
	lactation := setCmd.Bool("lactation", current.LactationSupport, "Include lactation support dishes")
	senior := setCmd.Bool("senior", current.SeniorMode, "Senior-friendly taste mode")
	setCmd.Parse(args)

	if _, err := (settings.Settings{StartDate: *start}).StartTime(); err != nil {
		log.Fatalf("Invalid start date %q: expected YYYY-MM-DD", *start)
	}

	updated := settings.Settings{
		StartDate:        *start,
		Dislikes:         splitList(*dislikes),
		Allergies:        splitList(*allergies),
		LactationSupport: *lactation,
		SeniorMode:       *senior,
	}
	if err := application.UpdateSettings(updated); err != nil {
		log.Fatalf("Failed to update settings: %v", err)
	}
	fmt.Println("Settings updated.")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "无"
	}
	return strings.Join(items, "、")
}

func printUsage() {
	fmt.Println("Usage: postpartum-meal-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  today              Show today's meal plan")
	fmt.Println("  plan [day]         Show the plan for a specific day")
	fmt.Println("  next / prev        Browse adjacent days")
	fmt.Println("  refresh            Regenerate the current day's plan")
	fmt.Println("  shopping [days]    Build a shopping list for the next N days (default 3)")
	fmt.Println("  toggle <number>    Check or uncheck a shopping list item")
	fmt.Println("  clear-shopping     Remove the saved shopping list")
	fmt.Println("  recipe <dish>      Show preparation details for a dish")
	fmt.Println("  adapt <url>        Adapt a recipe web page for the program")
	fmt.Println("  settings [flags]   Show or update settings")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
