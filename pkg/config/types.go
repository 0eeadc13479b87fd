package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent frontier configuration stored as
// config.toml in the .frontier/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	Defaults  DefaultsConfig  `toml:"defaults"`
	Providers ProvidersConfig `toml:"providers"`
	Server    ServerConfig    `toml:"server"`
	Fetch     FetchConfig     `toml:"fetch"`
}

// DefaultsConfig selects the backend and generation parameters used when a
// command does not name them.
type DefaultsConfig struct {
	Provider    string  `toml:"provider,omitempty"`
	Model       string  `toml:"model,omitempty"`
	Temperature float64 `toml:"temperature,omitempty"`
	MaxTokens   int     `toml:"max_tokens,omitempty"`
}

// ProviderConfig holds per-backend endpoint settings.
type ProviderConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
	Model   string `toml:"model,omitempty"`
}

// ProvidersConfig holds one ProviderConfig per supported backend.
type ProvidersConfig struct {
	OpenAI    ProviderConfig `toml:"openai"`
	Anthropic ProviderConfig `toml:"anthropic"`
	Gemini    ProviderConfig `toml:"gemini"`
	Ollama    ProviderConfig `toml:"ollama"`
	Gradio    ProviderConfig `toml:"gradio"`
}

// Get returns the settings for the named backend. Unknown names yield a
// zero ProviderConfig.
func (p *ProvidersConfig) Get(name string) ProviderConfig {
	if ptr := p.lookup(name); ptr != nil {
		return *ptr
	}
	return ProviderConfig{}
}

func (p *ProvidersConfig) lookup(name string) *ProviderConfig {
	switch name {
	case "openai":
		return &p.OpenAI
	case "anthropic":
		return &p.Anthropic
	case "gemini":
		return &p.Gemini
	case "ollama":
		return &p.Ollama
	case "gradio":
		return &p.Gradio
	}
	return nil
}

// ServerConfig holds web server settings.
type ServerConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// FetchConfig holds web page fetching settings for summarize and brochure.
type FetchConfig struct {
	UserAgent      string `toml:"user_agent,omitempty"`
	MaxPromptChars int    `toml:"max_prompt_chars,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func intKey(key string, field func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.Itoa(*field(c))
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			if n < 0 {
				return fmt.Errorf("invalid value for %s: must not be negative", key)
			}
			*field(c) = n
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"defaults.provider": stringKey(func(c *Config) *string { return &c.Defaults.Provider }),
	"defaults.model":    stringKey(func(c *Config) *string { return &c.Defaults.Model }),
	"defaults.temperature": {
		get: func(c *Config) string {
			if c.Defaults.Temperature == 0 {
				return ""
			}
			return strconv.FormatFloat(c.Defaults.Temperature, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			t, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for defaults.temperature: %w", err)
			}
			if t < 0 || t > 2 {
				return fmt.Errorf("invalid value for defaults.temperature: %v is outside [0, 2]", t)
			}
			c.Defaults.Temperature = t
			return nil
		},
	},
	"defaults.max_tokens": intKey("defaults.max_tokens", func(c *Config) *int { return &c.Defaults.MaxTokens }),

	"providers.openai.base_url":    stringKey(func(c *Config) *string { return &c.Providers.OpenAI.BaseURL }),
	"providers.openai.model":       stringKey(func(c *Config) *string { return &c.Providers.OpenAI.Model }),
	"providers.anthropic.base_url": stringKey(func(c *Config) *string { return &c.Providers.Anthropic.BaseURL }),
	"providers.anthropic.model":    stringKey(func(c *Config) *string { return &c.Providers.Anthropic.Model }),
	"providers.gemini.base_url":    stringKey(func(c *Config) *string { return &c.Providers.Gemini.BaseURL }),
	"providers.gemini.model":       stringKey(func(c *Config) *string { return &c.Providers.Gemini.Model }),
	"providers.ollama.base_url":    stringKey(func(c *Config) *string { return &c.Providers.Ollama.BaseURL }),
	"providers.ollama.model":       stringKey(func(c *Config) *string { return &c.Providers.Ollama.Model }),
	"providers.gradio.base_url":    stringKey(func(c *Config) *string { return &c.Providers.Gradio.BaseURL }),
	"providers.gradio.model":       stringKey(func(c *Config) *string { return &c.Providers.Gradio.Model }),

	"server.listen": stringKey(func(c *Config) *string { return &c.Server.Listen }),

	"fetch.user_agent":       stringKey(func(c *Config) *string { return &c.Fetch.UserAgent }),
	"fetch.max_prompt_chars": intKey("fetch.max_prompt_chars", func(c *Config) *int { return &c.Fetch.MaxPromptChars }),
}
