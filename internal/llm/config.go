package llm

import (
	"fmt"
	"os"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-sonnet"
	BaseURL string // Optional. Used by tests and proxies.
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "anthropic/claude-sonnet-4"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "anthropic",
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "anthropic/claude-sonnet-4",
		},
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values. API keys are read from EDUCOACH_<NAME>_API_KEY
// first and the vendor's standard variable (ANTHROPIC_API_KEY, ...) second.
func ConfigFromEnv() Config {
	return configFromLookup(os.Getenv)
}

func configFromLookup(getenv func(string) string) Config {
	cfg := DefaultConfig()

	first := func(keys ...string) string {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				return v
			}
		}
		return ""
	}
	set := func(dst *string, keys ...string) {
		if v := first(keys...); v != "" {
			*dst = v
		}
	}

	set(&cfg.Provider, "EDUCOACH_LLM_PROVIDER")

	set(&cfg.Anthropic.APIKey, "EDUCOACH_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	set(&cfg.Anthropic.Model, "EDUCOACH_ANTHROPIC_MODEL")
	set(&cfg.Anthropic.BaseURL, "EDUCOACH_ANTHROPIC_BASE_URL")

	set(&cfg.OpenAI.APIKey, "EDUCOACH_OPENAI_API_KEY", "OPENAI_API_KEY")
	set(&cfg.OpenAI.Model, "EDUCOACH_OPENAI_MODEL")
	set(&cfg.OpenAI.BaseURL, "EDUCOACH_OPENAI_BASE_URL")

	set(&cfg.Gemini.APIKey, "EDUCOACH_GEMINI_API_KEY", "GEMINI_API_KEY")
	set(&cfg.Gemini.Model, "EDUCOACH_GEMINI_MODEL")

	set(&cfg.OpenRouter.APIKey, "EDUCOACH_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")
	set(&cfg.OpenRouter.Model, "EDUCOACH_OPENROUTER_MODEL")
	set(&cfg.OpenRouter.BaseURL, "EDUCOACH_OPENROUTER_BASE_URL")

	return cfg
}

// Validate checks that the selected provider has its required API key set.
// A missing key yields *ErrNotConfigured.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case "anthropic":
		key = c.Anthropic.APIKey
	case "openai":
		key = c.OpenAI.APIKey
	case "gemini":
		key = c.Gemini.APIKey
	case "openrouter":
		key = c.OpenRouter.APIKey
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return &ErrNotConfigured{
			Provider: c.Provider,
			Err:      fmt.Errorf("API key is not set"),
		}
	}
	return nil
}
