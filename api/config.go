// Package api serves the browser chat UI and a Gradio-compatible call API
// backed by the streaming aggregator.
package api

import (
	"github.com/papercomputeco/frontier/pkg/llm/provider"
)

// DefaultSystemPrompt is used when Config.SystemPrompt is empty.
const DefaultSystemPrompt = "You are a helpful assistant that responds in markdown"

// Config is the web server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":7860")
	ListenAddr string

	// SystemPrompt is prepended to every conversation.
	SystemPrompt string

	// Backends are the labels offered by the UI model dropdown, e.g. "GPT",
	// "Claude", "Gemini", "Ollama".
	Backends []string

	// Default is the label used when a request names none.
	Default string

	// Temperature and MaxTokens are applied to every request when positive.
	Temperature float64
	MaxTokens   int
}

// Resolver builds the adapter and model name for a UI label or backend name.
type Resolver func(label string) (provider.Provider, string, error)
