package config

import (
	"os"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	clearEnv := func(t *testing.T) {
		t.Helper()
		// t.Setenv registers cleanup; explicit unsets isolate the subtests.
		for _, key := range []string{
			"DEEPSEEK_API_KEY", "GEMINI_API_KEY", "DATA_DIR", "DATABASE_PATH",
			"TELEGRAM_BOT_TOKEN", "TELEGRAM_WEBHOOK_URL",
			"TELEGRAM_ALLOWED_USER_IDS", "ADMIN_TELEGRAM_ID",
		} {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}

	t.Run("Success", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DEEPSEEK_API_KEY", "ds_key")
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("DATA_DIR", "/tmp/mealdata")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "100, 200")
		t.Setenv("ADMIN_TELEGRAM_ID", "100")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DeepSeekAPIKey != "ds_key" {
			t.Errorf("Expected DeepSeekAPIKey to be 'ds_key', got '%s'", cfg.DeepSeekAPIKey)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
		if cfg.DatabasePath != "/tmp/mealdata/usage.db" {
			t.Errorf("Expected database path under data dir, got '%s'", cfg.DatabasePath)
		}
		if len(cfg.TelegramAllowedUserIDs) != 2 || cfg.TelegramAllowedUserIDs[1] != 200 {
			t.Errorf("Unexpected allowed user IDs: %v", cfg.TelegramAllowedUserIDs)
		}
		if cfg.AdminTelegramID != 100 {
			t.Errorf("Expected admin ID 100, got %d", cfg.AdminTelegramID)
		}
	})

	t.Run("OnlyOneKeyNeeded", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DEEPSEEK_API_KEY", "ds_key")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error with a single key, got %v", err)
		}
		if cfg.DataDir != "data" {
			t.Errorf("Expected default data dir 'data', got '%s'", cfg.DataDir)
		}
	})

	t.Run("MissingAllKeys", func(t *testing.T) {
		clearEnv(t)

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error when no API key is configured, got nil")
		}
	})

	t.Run("BadAllowedUserID", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DEEPSEEK_API_KEY", "ds_key")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "abc")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for a non-numeric user ID, got nil")
		}
	})
}
