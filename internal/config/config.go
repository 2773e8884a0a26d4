package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the configuration for the application.
type Config struct {
	// DeepSeek is preferred when both keys are set because its API accepts
	// an explicit seed.
	DeepSeekAPIKey string
	GeminiAPIKey   string

	// DataDir holds the JSON state slots; DatabasePath holds usage metrics.
	DataDir      string
	DatabasePath string

	// Telegram Config (optional for the CLI, required for the bot)
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	deepseekKey := os.Getenv("DEEPSEEK_API_KEY")
	geminiKey := os.Getenv("GEMINI_API_KEY")
	if deepseekKey == "" && geminiKey == "" {
		return nil, fmt.Errorf("neither DEEPSEEK_API_KEY nor GEMINI_API_KEY environment variable is set")
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	databasePath := os.Getenv("DATABASE_PATH")
	if databasePath == "" {
		databasePath = filepath.Join(dataDir, "usage.db")
	}

	var allowedIDs []int64
	for _, raw := range strings.Split(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", raw, err)
		}
		allowedIDs = append(allowedIDs, id)
	}

	var adminID int64
	if raw := os.Getenv("ADMIN_TELEGRAM_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID %q: %w", raw, err)
		}
		adminID = id
	}

	return &Config{
		DeepSeekAPIKey:         deepseekKey,
		GeminiAPIKey:           geminiKey,
		DataDir:                dataDir,
		DatabasePath:           databasePath,
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowedIDs,
		AdminTelegramID:        adminID,
	}, nil
}
