package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/frontier/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the FRONTIER_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (FRONTIER_SERVER_LISTEN, FRONTIER_DEFAULTS_MODEL, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: FRONTIER_SERVER_LISTEN, FRONTIER_PROVIDERS_OLLAMA_BASE_URL, etc.
	v.SetEnvPrefix("FRONTIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Defaults
	v.SetDefault("defaults.provider", d.Defaults.Provider)
	v.SetDefault("defaults.model", d.Defaults.Model)
	v.SetDefault("defaults.temperature", d.Defaults.Temperature)
	v.SetDefault("defaults.max_tokens", d.Defaults.MaxTokens)

	// Providers
	for _, name := range providerNames {
		p := d.Providers.Get(name)
		v.SetDefault("providers."+name+".base_url", p.BaseURL)
		v.SetDefault("providers."+name+".model", p.Model)
	}

	// Server
	v.SetDefault("server.listen", d.Server.Listen)

	// Fetch
	v.SetDefault("fetch.user_agent", d.Fetch.UserAgent)
	v.SetDefault("fetch.max_prompt_chars", d.Fetch.MaxPromptChars)
}

// ProviderFromViper returns the effective settings for the named backend.
func ProviderFromViper(v *viper.Viper, name string) ProviderConfig {
	return ProviderConfig{
		BaseURL: v.GetString("providers." + name + ".base_url"),
		Model:   v.GetString("providers." + name + ".model"),
	}
}
