package config

import (
	"github.com/papercomputeco/frontier/pkg/brochure"
	"github.com/papercomputeco/frontier/pkg/page"
)

const (
	defaultProvider = "ollama"
	defaultListen   = ":7860"

	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-3-haiku-20240307"
	defaultGeminiModel    = "gemini-2.5-flash"
	defaultOllamaModel    = "llama3.2"

	defaultOpenAIURL    = "https://api.openai.com/v1"
	defaultAnthropicURL = "https://api.anthropic.com"
	defaultOllamaURL    = "http://localhost:11434"
	defaultGradioURL    = "http://localhost:7860"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Defaults: DefaultsConfig{
			Provider: defaultProvider,
		},
		Providers: ProvidersConfig{
			OpenAI:    ProviderConfig{BaseURL: defaultOpenAIURL, Model: defaultOpenAIModel},
			Anthropic: ProviderConfig{BaseURL: defaultAnthropicURL, Model: defaultAnthropicModel},
			Gemini:    ProviderConfig{Model: defaultGeminiModel},
			Ollama:    ProviderConfig{BaseURL: defaultOllamaURL, Model: defaultOllamaModel},
			Gradio:    ProviderConfig{BaseURL: defaultGradioURL, Model: defaultProvider},
		},
		Server: ServerConfig{
			Listen: defaultListen,
		},
		Fetch: FetchConfig{
			UserAgent:      page.DefaultUserAgent,
			MaxPromptChars: brochure.DefaultMaxPromptChars,
		},
	}
}
