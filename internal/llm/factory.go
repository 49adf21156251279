package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/adaptiq/internal/store"
)

// Providers is the primary/secondary pair used by the generation chain.
// Secondary is nil when no secondary model is configured.
type Providers struct {
	Primary   Provider
	Secondary Provider
}

// NewProvider creates a single Provider for model from configuration,
// wrapped with retry and logging middleware.
func NewProvider(ctx context.Context, cfg Config, model string, eventRepo store.EventRepo, logger *slog.Logger) (Provider, error) {
	base, err := newBaseProvider(ctx, cfg, model)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → retry → logging → base
	logged := WithLogging(base, cfg.Provider, eventRepo, logger)
	return WithRetry(logged, cfg.Retry), nil
}

// NewProviders builds the primary and, when configured, secondary providers.
func NewProviders(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *slog.Logger) (*Providers, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	primary, err := NewProvider(ctx, cfg, cfg.PrimaryModel, eventRepo, logger)
	if err != nil {
		return nil, err
	}
	out := &Providers{Primary: primary}

	if cfg.SecondaryModel != "" {
		secondary, err := NewProvider(ctx, cfg, cfg.SecondaryModel, eventRepo, logger)
		if err != nil {
			return nil, err
		}
		out.Secondary = secondary
	}
	return out, nil
}

func newBaseProvider(ctx context.Context, cfg Config, model string) (Provider, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		return NewAnthropicProvider(AnthropicConfig{APIKey: cfg.APIKey, Model: model, BaseURL: cfg.BaseURL})
	case ProviderOpenAI:
		return NewOpenAIProvider(OpenAIConfig{APIKey: cfg.APIKey, Model: model, BaseURL: cfg.BaseURL})
	case ProviderOpenRouter:
		return NewOpenRouterProvider(OpenRouterConfig{APIKey: cfg.APIKey, Model: model, BaseURL: cfg.BaseURL})
	case ProviderGemini:
		return NewGeminiProvider(ctx, GeminiConfig{APIKey: cfg.APIKey, Model: model, BaseURL: cfg.BaseURL})
	case ProviderMock:
		// An empty mock fails every call, so generation exercises the
		// template tier without network access.
		return NewNamedMockProvider(model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}
