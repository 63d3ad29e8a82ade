package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// NewProvider creates a Provider from configuration, wrapped with request
// logging. A missing API key is reported as *ErrNotConfigured so the caller
// can decide whether to continue with Unconfigured.
func NewProvider(ctx context.Context, cfg Config, logger *slog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base, logger), nil
}

// unconfiguredProvider stands in for a provider that could not be built.
type unconfiguredProvider struct {
	err *ErrNotConfigured
}

// Unconfigured returns a Provider whose every call fails with err. It lets the
// service start without credentials and surface the problem per request.
func Unconfigured(err *ErrNotConfigured) Provider {
	return &unconfiguredProvider{err: err}
}

func (u *unconfiguredProvider) Generate(context.Context, Request) (*Response, error) {
	return nil, u.err
}

func (u *unconfiguredProvider) ModelID() string {
	return "unconfigured"
}
