package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"postpartum-meal-planner/internal/app"
	"postpartum-meal-planner/internal/clipper"
	"postpartum-meal-planner/internal/config"
	"postpartum-meal-planner/internal/metrics"
	"postpartum-meal-planner/internal/plan"
	"postpartum-meal-planner/internal/recipe"
	"postpartum-meal-planner/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot wraps the Telegram API around the application core.
type Bot struct {
	api          *tgbotapi.BotAPI
	app          *app.App
	metricsStore *metrics.Store
	cfg          *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, application *app.App, metricsStore *metrics.Store) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          bot,
		app:          application,
		metricsStore: metricsStore,
		cfg:          cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.CallbackQuery != nil {
		if b.isAllowed(update.CallbackQuery.From.ID) {
			go b.handleCallbackQuery(update.CallbackQuery)
		}
		return
	}

	if update.Message == nil {
		return
	}

	if !b.isAllowed(update.Message.From.ID) {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) isAllowed(userID int64) bool {
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if userID == id {
			return true
		}
	}
	return false
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)

	switch {
	case text == "/usage":
		b.handleUsageRequest(msg)
	case text == "/today":
		b.app.JumpToDay(b.app.CurrentDay())
		b.sendViewingPlan(msg.Chat.ID, 0, false)
	case strings.HasPrefix(text, "/day"):
		b.handleDayRequest(msg, strings.TrimSpace(strings.TrimPrefix(text, "/day")))
	case text == "/next":
		b.app.NextDay()
		b.sendViewingPlan(msg.Chat.ID, 0, false)
	case text == "/prev":
		b.app.PrevDay()
		b.sendViewingPlan(msg.Chat.ID, 0, false)
	case text == "/refresh":
		b.sendViewingPlan(msg.Chat.ID, 0, true)
	case strings.HasPrefix(text, "/shopping"):
		b.handleShoppingRequest(msg, strings.TrimSpace(strings.TrimPrefix(text, "/shopping")))
	case strings.HasPrefix(text, "/recipe"):
		b.handleRecipeRequest(msg, strings.TrimSpace(strings.TrimPrefix(text, "/recipe")))
	case strings.HasPrefix(text, "http://"), strings.HasPrefix(text, "https://"):
		b.handleClipperRequest(msg)
	default:
		b.sendHelp(msg.Chat.ID)
	}
}

func (b *Bot) sendHelp(chatID int64) {
	help := `🍲 *月子餐助手*

/today — 查看今天的餐单
/day N — 查看第 N 天的餐单
/next /prev — 前后翻看
/refresh — 重新生成当前餐单
/shopping [天数] — 生成采购清单（默认 3 天）
/recipe 菜名 — 查看做法
直接发送食谱链接可做月子餐改造`

	msg := tgbotapi.NewMessage(chatID, help)
	msg.ParseMode = "Markdown"
	b.api.Send(msg)
}

func (b *Bot) handleDayRequest(msg *tgbotapi.Message, arg string) {
	day, err := strconv.Atoi(arg)
	if err != nil {
		b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "用法：/day 5"))
		return
	}
	b.app.JumpToDay(day)
	b.sendViewingPlan(msg.Chat.ID, 0, false)
}

// sendViewingPlan renders the viewing day's plan. When messageID is non-zero
// the existing message is edited in place (callback navigation); otherwise a
// status message is sent first and then replaced with the result.
func (b *Bot) sendViewingPlan(chatID int64, messageID int, refresh bool) {
	if messageID == 0 {
		sent, err := b.sendStatus(chatID, "🧑‍🍳 *正在准备餐单...*")
		if err != nil {
			return
		}
		messageID = sent.MessageID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var (
		dayPlan *plan.DailyPlan
		err     error
	)
	if refresh {
		dayPlan, err = b.app.RefreshPlan(ctx)
	} else {
		dayPlan, err = b.app.ViewPlan(ctx)
	}

	if err != nil {
		log.Printf("Error generating plan: %v", err)
		b.editStatus(chatID, messageID, formatError("生成餐单失败", err))
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, messageID, formatDailyPlan(dayPlan, b.app.CurrentDay()))
	edit.ParseMode = "Markdown"
	keyboard := navigationKeyboard()
	edit.ReplyMarkup = &keyboard
	b.api.Send(edit)
}

func navigationKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ 前一天", "nav|prev"),
			tgbotapi.NewInlineKeyboardButtonData("后一天 ➡️", "nav|next"),
		),
	)
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	parts := strings.Split(query.Data, "|")
	if len(parts) < 2 {
		return
	}

	switch parts[0] {
	case "nav":
		switch parts[1] {
		case "prev":
			b.app.PrevDay()
		case "next":
			b.app.NextDay()
		default:
			return
		}
		// Answer callback to remove spinner
		b.api.Request(tgbotapi.NewCallback(query.ID, ""))
		b.sendViewingPlan(query.Message.Chat.ID, query.Message.MessageID, false)
	case "shop":
		index, err := strconv.Atoi(parts[1])
		if err != nil {
			return
		}
		b.api.Request(tgbotapi.NewCallback(query.ID, ""))
		list, err := b.app.ToggleShoppingItem(index)
		if err != nil {
			log.Printf("Error toggling shopping item %d: %v", index, err)
			return
		}
		b.sendShoppingList(query.Message.Chat.ID, query.Message.MessageID, list)
	}
}

func (b *Bot) handleShoppingRequest(msg *tgbotapi.Message, arg string) {
	days := app.DefaultShoppingWindow
	if arg != "" {
		parsed, err := strconv.Atoi(arg)
		if err != nil || parsed <= 0 {
			b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "用法：/shopping 3"))
			return
		}
		days = parsed
	}

	sent, err := b.sendStatus(msg.Chat.ID, fmt.Sprintf("🛒 *正在汇总未来 %d 天的食材...*", days))
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	list, err := b.app.BuildShoppingList(ctx, days)
	if err != nil {
		log.Printf("Error building shopping list: %v", err)
		b.editStatus(msg.Chat.ID, sent.MessageID, formatError("生成采购清单失败", err))
		return
	}

	b.sendShoppingList(msg.Chat.ID, sent.MessageID, list)
}

// sendShoppingList renders the list with one toggle button per item, so a
// tap checks an ingredient off and the message updates in place.
func (b *Bot) sendShoppingList(chatID int64, messageID int, list *shopping.List) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, formatShoppingList(list))
	edit.ParseMode = "Markdown"
	if keyboard := shoppingKeyboard(list); len(keyboard.InlineKeyboard) > 0 {
		edit.ReplyMarkup = &keyboard
	}
	b.api.Send(edit)
}

func shoppingKeyboard(list *shopping.List) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i, item := range list.Items {
		label := "▫️ " + item.Name
		if item.Checked {
			label = "✅ " + item.Name
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("shop|%d", i)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func (b *Bot) handleRecipeRequest(msg *tgbotapi.Message, dish string) {
	if dish == "" {
		b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "用法：/recipe 小米红糖粥"))
		return
	}

	sent, err := b.sendStatus(msg.Chat.ID, fmt.Sprintf("📖 *正在查询「%s」的做法...*", dish))
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	details, err := b.app.RecipeDetails(ctx, dish)
	if err != nil {
		log.Printf("Error fetching recipe details: %v", err)
		b.editStatus(msg.Chat.ID, sent.MessageID, formatError("查询做法失败", err))
		return
	}

	b.editStatus(msg.Chat.ID, sent.MessageID, formatRecipeDetails(dish, details))
}

func (b *Bot) handleClipperRequest(msg *tgbotapi.Message) {
	sent, err := b.sendStatus(msg.Chat.ID, "✂️ *正在分析食谱链接...*")
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	adapted, err := b.app.AdaptRecipeFromURL(ctx, msg.Text)
	if err != nil {
		log.Printf("Error adapting recipe: %v", err)
		b.editStatus(msg.Chat.ID, sent.MessageID, formatError("食谱改造失败", err))
		return
	}

	b.editStatus(msg.Chat.ID, sent.MessageID, formatAdaptedRecipe(adapted))
}

func (b *Bot) handleUsageRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "⛔ *Access Denied*: Admin only."))
		return
	}

	usage, err := b.metricsStore.GetDailyUsage(7)
	if err != nil {
		b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "❌ Error fetching metrics."))
		return
	}

	health := metrics.GetSysHealth(b.cfg.DataDir)

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Generation Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d calls)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))

	reply := tgbotapi.NewMessage(msg.Chat.ID, sb.String())
	reply.ParseMode = "Markdown"
	b.api.Send(reply)
}

func (b *Bot) sendStatus(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	sent, err := b.api.Send(msg)
	if err != nil {
		log.Printf("Failed to send status message: %v", err)
	}
	return sent, err
}

func (b *Bot) editStatus(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "Markdown"
	b.api.Send(edit)
}

func formatError(prefix string, err error) string {
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return fmt.Sprintf("❌ *%s:*\n```\n%v\n```", prefix, safeErr)
}

func formatDailyPlan(p *plan.DailyPlan, currentDay int) string {
	var sb strings.Builder

	marker := ""
	if p.Day == currentDay {
		marker = "（今天）"
	}
	sb.WriteString(fmt.Sprintf("📅 *第 %d 天%s · %s*\n\n", p.Day, marker, p.Phase))

	for _, m := range p.Meals {
		sb.WriteString(fmt.Sprintf("*%s*：%s", m.Type, m.Name))
		if m.Calories > 0 {
			sb.WriteString(fmt.Sprintf("（约 %d 千卡）", m.Calories))
		}
		sb.WriteString("\n")
		if m.Description != "" {
			sb.WriteString(fmt.Sprintf("_%s_\n", m.Description))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatShoppingList(list *shopping.List) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🛒 *采购清单*（覆盖 %d 天）\n", list.DaysCovered))

	for _, category := range shopping.Categories {
		var lines []string
		for _, item := range list.Items {
			if item.Category != category {
				continue
			}
			check := "▫️"
			if item.Checked {
				check = "✅"
			}
			lines = append(lines, fmt.Sprintf("%s %s %s", check, item.Name, item.Amount))
		}
		if len(lines) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n*%s*\n", category))
		for _, line := range lines {
			sb.WriteString(line + "\n")
		}
	}

	return sb.String()
}

func formatRecipeDetails(dish string, d *recipe.Details) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📖 *%s*\n\n", dish))

	sb.WriteString("*食材*\n")
	for _, ing := range d.Ingredients {
		sb.WriteString(fmt.Sprintf("• %s\n", ing))
	}

	sb.WriteString("\n*步骤*\n")
	for i, step := range d.Steps {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
	}

	if len(d.Tips) > 0 {
		sb.WriteString("\n*月子小贴士*\n")
		for _, tip := range d.Tips {
			sb.WriteString(fmt.Sprintf("• %s\n", tip))
		}
	}

	if d.NutritionHighlights != "" {
		sb.WriteString(fmt.Sprintf("\n_营养亮点：%s_\n", d.NutritionHighlights))
	}

	return sb.String()
}

func formatAdaptedRecipe(r *clipper.AdaptedRecipe) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✂️ *%s*\n\n", r.Title))

	if r.Suitable {
		sb.WriteString("✅ 适合月子期食用\n")
	} else {
		sb.WriteString("⚠️ 原食谱不完全适合月子期，已做调整\n")
	}
	if r.Advice != "" {
		sb.WriteString(fmt.Sprintf("_%s_\n", r.Advice))
	}

	sb.WriteString("\n*改造后做法*\n")
	for _, ing := range r.Details.Ingredients {
		sb.WriteString(fmt.Sprintf("• %s\n", ing))
	}
	sb.WriteString("\n")
	for i, step := range r.Details.Steps {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
	}

	return sb.String()
}
