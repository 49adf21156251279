// Package config reads process settings once at startup.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/abhisek/adaptiq/internal/llm"
)

// Config is everything the CLI needs to wire the pipeline.
type Config struct {
	// DBPath is the SQLite file; empty means the store default.
	DBPath string

	// RedisURL enables the profile cache when set.
	RedisURL string

	LogLevel slog.Level

	LLM llm.Config
}

// Load reads an optional .env file and then the ADAPTIQ_* environment.
// When no provider is configured explicitly the vendor key variables are
// probed, and the mock provider is used when none is found.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	level, err := ParseLevel(os.Getenv("ADAPTIQ_LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath:   os.Getenv("ADAPTIQ_DB"),
		RedisURL: os.Getenv("ADAPTIQ_REDIS_URL"),
		LogLevel: level,
		LLM:      llmConfig(),
	}
	return cfg, nil
}

func llmConfig() llm.Config {
	if os.Getenv("ADAPTIQ_LLM_PROVIDER") != "" || os.Getenv("ADAPTIQ_LLM_API_KEY") != "" {
		return llm.ConfigFromEnv()
	}
	if cfg, ok := llm.DiscoverConfig(); ok {
		return cfg
	}
	cfg := llm.DefaultConfig()
	cfg.Provider = llm.ProviderMock
	cfg.PrimaryModel, cfg.SecondaryModel = "mock", ""
	return cfg
}

// ParseLevel accepts debug, info, warn or error. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: ADAPTIQ_LOG_LEVEL=%q is not a valid level", s)
	}
}

// NewLogger returns a JSON logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: c.LogLevel,
	}))
}
