package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// Config selects and configures the chained providers.
type Config struct {
	// Order lists provider names to try, first to last.
	Order []string

	Groq      OpenAIConfig
	Gemini    GeminiConfig
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	Retry     RetryConfig
}

// DefaultOrder is the fallback order used when none is configured.
var DefaultOrder = []string{"groq", "gemini", "openai", "anthropic"}

// NewFromConfig builds a Chain from the providers in cfg.Order that have an
// API key. Each provider is wrapped caller → retry → observer → base.
func NewFromConfig(ctx context.Context, cfg Config, log *slog.Logger, stats *Stats) (*Chain, error) {
	order := cfg.Order
	if len(order) == 0 {
		order = DefaultOrder
	}

	var providers []Provider
	for _, name := range order {
		base, err := newProvider(ctx, name, cfg)
		if err != nil {
			return nil, fmt.Errorf("initializing %s provider: %w", name, err)
		}
		if base == nil {
			log.Info("llm provider disabled, no API key", "provider", name)
			continue
		}
		providers = append(providers, WithRetry(WithObserver(base, log, stats), cfg.Retry))
		log.Info("llm provider enabled", "provider", name, "model", base.ModelID())
	}
	return NewChain(log, providers...), nil
}

// newProvider returns nil, nil when the provider has no key configured.
func newProvider(ctx context.Context, name string, cfg Config) (Provider, error) {
	switch name {
	case "groq":
		if cfg.Groq.APIKey == "" {
			return nil, nil
		}
		return NewGroqProvider(cfg.Groq)
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, nil
		}
		return NewGeminiProvider(ctx, cfg.Gemini)
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, nil
		}
		return NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		if cfg.Anthropic.APIKey == "" {
			return nil, nil
		}
		return NewAnthropicProvider(cfg.Anthropic)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", name)
	}
}
