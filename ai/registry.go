package ai

import (
	"fmt"

	"github.com/DachengChen/querymaster/config"
)

// SupportedProviders lists available provider names for display.
var SupportedProviders = []string{"gemini", "openai", "groq", "cerebras", "anthropic", "ollama", "placeholder"}

// NewProvider creates an AI provider from the application config. dialect
// and dataset are only used by the placeholder, which writes its own SQL.
// The returned provider logs every call.
func NewProvider(cfg config.AIConfig, dialect, dataset string) (Provider, error) {
	p, err := newProvider(cfg, dialect, dataset)
	if err != nil {
		return nil, err
	}
	return WithLogging(p), nil
}

func newProvider(cfg config.AIConfig, dialect, dataset string) (Provider, error) {
	keyErr := func(name, env string) error {
		return fmt.Errorf("%s API key not set. Set %s, add it to ~/.querymaster/config.json or run `querymaster key set %s`",
			name, env, cfg.Provider)
	}

	switch cfg.Provider {
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, keyErr("Gemini", "GOOGLE_API_KEY")
		}
		return NewGemini(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL), nil

	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, keyErr("OpenAI", "OPENAI_API_KEY")
		}
		return NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL), nil

	case "groq":
		if cfg.Groq.APIKey == "" {
			return nil, keyErr("Groq", "GROQ_API_KEY")
		}
		return NewOpenAICompatible("Groq", cfg.Groq.APIKey, cfg.Groq.Model, orDefault(cfg.Groq.BaseURL, "https://api.groq.com/openai/v1")), nil

	case "cerebras":
		if cfg.Cerebras.APIKey == "" {
			return nil, keyErr("Cerebras", "CEREBRAS_API_KEY")
		}
		return NewOpenAICompatible("Cerebras", cfg.Cerebras.APIKey, cfg.Cerebras.Model, orDefault(cfg.Cerebras.BaseURL, "https://api.cerebras.ai/v1")), nil

	case "anthropic":
		if cfg.Anthropic.APIKey == "" {
			return nil, keyErr("Anthropic", "ANTHROPIC_API_KEY")
		}
		return NewAnthropic(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.BaseURL), nil

	case "ollama":
		return NewOllama(cfg.Ollama.Host, cfg.Ollama.Model), nil

	case "placeholder", "":
		return NewPlaceholder(dialect, dataset), nil

	default:
		return nil, fmt.Errorf("unknown AI provider %q. Supported: %v", cfg.Provider, SupportedProviders)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
