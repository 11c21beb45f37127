// AI provider configuration.
//
// API keys can be set in the config file, via environment variables
// (GOOGLE_API_KEY, OPENAI_API_KEY, GROQ_API_KEY, CEREBRAS_API_KEY,
// ANTHROPIC_API_KEY) or stored in the OS keyring with `querymaster key set`.

package config

// AIConfig holds the AI provider selection and credentials.
type AIConfig struct {
	Provider  string          `json:"provider"` // "gemini", "openai", "groq", "cerebras", "anthropic", "ollama", "placeholder"
	Gemini    GeminiConfig    `json:"gemini"`
	OpenAI    OpenAIConfig    `json:"openai"`
	Groq      OpenAIConfig    `json:"groq"`
	Cerebras  OpenAIConfig    `json:"cerebras"`
	Anthropic AnthropicConfig `json:"anthropic"`
	Ollama    OllamaConfig    `json:"ollama"`
}

// OpenAIConfig holds settings for any OpenAI-compatible chat endpoint.
type OpenAIConfig struct {
	APIKey  string `json:"api_key,omitempty"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
}

// AnthropicConfig holds Anthropic-specific settings.
type AnthropicConfig struct {
	APIKey  string `json:"api_key,omitempty"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
}

// GeminiConfig holds Google Gemini-specific settings.
type GeminiConfig struct {
	APIKey  string `json:"api_key,omitempty"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
}

// OllamaConfig holds Ollama-specific settings.
type OllamaConfig struct {
	Host  string `json:"host"`
	Model string `json:"model"`
}

// DefaultAIConfig returns sensible defaults.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Provider: "gemini",
		Gemini: GeminiConfig{
			Model:   "gemini-2.5-pro",
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		},
		OpenAI: OpenAIConfig{
			Model:   "gpt-4o",
			BaseURL: "https://api.openai.com/v1",
		},
		Groq: OpenAIConfig{
			Model:   "llama-3.3-70b-versatile",
			BaseURL: "https://api.groq.com/openai/v1",
		},
		Cerebras: OpenAIConfig{
			Model:   "llama-3.3-70b",
			BaseURL: "https://api.cerebras.ai/v1",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet-4-20250514",
		},
		Ollama: OllamaConfig{
			Host:  "http://localhost:11434",
			Model: "llama3.2",
		},
	}
}

// KeyNames lists the providers whose API key may live in the keyring.
func KeyNames() []string {
	return []string{"gemini", "openai", "groq", "cerebras", "anthropic"}
}

// NeedsAPIKey reports whether provider authenticates with an API key.
func NeedsAPIKey(provider string) bool {
	for _, n := range KeyNames() {
		if n == provider {
			return true
		}
	}
	return false
}

// APIKey returns the configured key for provider, or "".
func (a *AIConfig) APIKey(provider string) string {
	if f := a.apiKeyField(provider); f != nil {
		return *f
	}
	return ""
}

func (a *AIConfig) apiKeyField(provider string) *string {
	switch provider {
	case "gemini":
		return &a.Gemini.APIKey
	case "openai":
		return &a.OpenAI.APIKey
	case "groq":
		return &a.Groq.APIKey
	case "cerebras":
		return &a.Cerebras.APIKey
	case "anthropic":
		return &a.Anthropic.APIKey
	default:
		return nil
	}
}
