package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config is the explicit construction value for the generation service.
// Nothing in this package reads process settings after construction.
type Config struct {
	// Provider selects which vendor serves both models.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string

	APIKey string

	// PrimaryModel is tried first. SecondaryModel is the fallback tier and
	// may be empty to disable it.
	PrimaryModel   string
	SecondaryModel string

	// BaseURL optionally overrides the vendor endpoint (OpenAI-compatible
	// gateways, OpenRouter mirrors).
	BaseURL string

	Retry RetryConfig

	// Timeout bounds a single generation call including retries.
	// Default: 30s.
	Timeout time.Duration
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// defaultModels holds the primary/secondary pair per provider.
var defaultModels = map[string][2]string{
	ProviderAnthropic:  {"claude-sonnet", "claude-haiku"},
	ProviderOpenAI:     {"gpt-4o", "gpt-4o-mini"},
	ProviderGemini:     {"gemini-pro", "gemini-flash"},
	ProviderOpenRouter: {"google/gemini-2.0-flash-exp", "meta-llama/llama-3-8b"},
	ProviderMock:       {"mock", "mock"},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	cfg := Config{
		Provider: ProviderAnthropic,
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
	cfg.applyModelDefaults()
	return cfg
}

func (c *Config) applyModelDefaults() {
	models, ok := defaultModels[c.Provider]
	if !ok {
		return
	}
	if c.PrimaryModel == "" {
		c.PrimaryModel = models[0]
	}
	if c.SecondaryModel == "" {
		c.SecondaryModel = models[1]
	}
}

// ConfigFromEnv builds a Config from ADAPTIQ_LLM_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.PrimaryModel, cfg.SecondaryModel = "", ""

	if p := os.Getenv("ADAPTIQ_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	cfg.APIKey = os.Getenv("ADAPTIQ_LLM_API_KEY")
	cfg.PrimaryModel = os.Getenv("ADAPTIQ_LLM_PRIMARY_MODEL")
	cfg.SecondaryModel = os.Getenv("ADAPTIQ_LLM_SECONDARY_MODEL")
	cfg.BaseURL = os.Getenv("ADAPTIQ_LLM_BASE_URL")

	if s := os.Getenv("ADAPTIQ_LLM_TIMEOUT_SECONDS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			cfg.Timeout = time.Duration(n) * time.Second
		}
	}

	cfg.applyModelDefaults()
	return cfg
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemini → OpenAI → Anthropic → OpenRouter) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	probes := []struct {
		env      string
		provider string
	}{
		{"GEMINI_API_KEY", ProviderGemini},
		{"OPENAI_API_KEY", ProviderOpenAI},
		{"ANTHROPIC_API_KEY", ProviderAnthropic},
		{"OPENROUTER_API_KEY", ProviderOpenRouter},
	}
	for _, p := range probes {
		if k := os.Getenv(p.env); k != "" {
			cfg := DefaultConfig()
			cfg.Provider = p.provider
			cfg.APIKey = k
			cfg.PrimaryModel, cfg.SecondaryModel = "", ""
			cfg.applyModelDefaults()
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider has what it needs.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter:
		if c.APIKey == "" {
			return fmt.Errorf("ADAPTIQ_LLM_API_KEY is required for the %s provider", c.Provider)
		}
	case ProviderMock:
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.PrimaryModel == "" {
		return fmt.Errorf("a primary model is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
