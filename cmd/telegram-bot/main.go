package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postpartum-meal-planner/internal/app"
	"postpartum-meal-planner/internal/config"
	"postpartum-meal-planner/internal/database"
	"postpartum-meal-planner/internal/llm"
	"postpartum-meal-planner/internal/metrics"
	"postpartum-meal-planner/internal/storage"
	"postpartum-meal-planner/internal/telegram"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.TelegramBotToken == "" || cfg.TelegramWebhookURL == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN and TELEGRAM_WEBHOOK_URL must be set")
	}

	ctx := context.Background()

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

	bot, err := telegram.NewBot(cfg, application, metricsStore)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

// newGenerator prefers DeepSeek when its key is set because the API honors
// an explicit seed; Gemini is the fallback.
func newGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	if cfg.DeepSeekAPIKey != "" {
		return llm.NewDeepSeekClient(cfg), nil
	}
	return llm.NewGeminiClient(ctx, cfg)
}
