package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/abhisek/adaptiq/internal/llm"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ADAPTIQ_DB", "ADAPTIQ_REDIS_URL", "ADAPTIQ_LOG_LEVEL",
		"ADAPTIQ_LLM_PROVIDER", "ADAPTIQ_LLM_API_KEY",
		"ADAPTIQ_LLM_PRIMARY_MODEL", "ADAPTIQ_LLM_SECONDARY_MODEL",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "" || cfg.RedisURL != "" {
		t.Errorf("expected empty paths, got %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.LLM.Provider != llm.ProviderMock {
		t.Errorf("Provider = %q, want mock", cfg.LLM.Provider)
	}
	if err := cfg.LLM.Validate(); err != nil {
		t.Errorf("mock config invalid: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADAPTIQ_DB", "/tmp/a.db")
	t.Setenv("ADAPTIQ_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ADAPTIQ_LOG_LEVEL", "debug")
	t.Setenv("ADAPTIQ_LLM_PROVIDER", "openai")
	t.Setenv("ADAPTIQ_LLM_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/tmp/a.db" || cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.LLM.Provider != llm.ProviderOpenAI || cfg.LLM.APIKey != "sk-test" {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
}

func TestLoadDiscoversVendorKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "ak")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Provider != llm.ProviderAnthropic || cfg.LLM.APIKey != "ak" {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
}

func TestLoadInvalidLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADAPTIQ_LOG_LEVEL", "loud")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: slog.LevelWarn}
	logger := cfg.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "tier", "primary")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"tier":"primary"`) {
		t.Errorf("unexpected log output: %s", out)
	}
}
