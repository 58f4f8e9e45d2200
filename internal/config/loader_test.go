package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"CALENDAR_HTTP_PORT",
			"CALENDAR_SQLITE_DSN",
			"CALENDAR_SESSION_TTL",
			"CALENDAR_LOG_LEVEL",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:calendar.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default session TTL 24h, got %s", cfg.SessionTTL)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Fatalf("expected default log level info, got %v", cfg.LogLevel)
		}
	})

	t.Run("parses duration, numeric and level fields", func(t *testing.T) {
		t.Setenv("CALENDAR_HTTP_PORT", "9090")
		t.Setenv("CALENDAR_SQLITE_DSN", "file:/tmp/calendar.db")
		t.Setenv("CALENDAR_SESSION_TTL", "12h")
		t.Setenv("CALENDAR_LOG_LEVEL", "debug")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/calendar.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("expected session TTL 12h, got %s", cfg.SessionTTL)
		}
		if cfg.LogLevel != slog.LevelDebug {
			t.Fatalf("expected debug log level, got %v", cfg.LogLevel)
		}
	})

	t.Run("errors on invalid values", func(t *testing.T) {
		t.Setenv("CALENDAR_HTTP_PORT", "not-a-port")
		t.Setenv("CALENDAR_SESSION_TTL", "-3h")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for invalid values")
		}
		expected := "環境変数の値が不正です: CALENDAR_HTTP_PORT, CALENDAR_SESSION_TTL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("rejects unknown log levels", func(t *testing.T) {
		t.Setenv("CALENDAR_LOG_LEVEL", "verbose")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for unknown log level")
		}
	})
}
