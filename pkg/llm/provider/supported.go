package provider

import (
	"slices"
	"strings"

	"github.com/papercomputeco/frontier/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/frontier/pkg/llm/provider/gemini"
	"github.com/papercomputeco/frontier/pkg/llm/provider/gradio"
	"github.com/papercomputeco/frontier/pkg/llm/provider/ollama"
	"github.com/papercomputeco/frontier/pkg/llm/provider/openai"
	"github.com/papercomputeco/frontier/pkg/stream"
)

// Supported provider type constants
const (
	OpenAI    = "openai"
	Anthropic = "anthropic"
	Gemini    = "gemini"
	Ollama    = "ollama"
	Gradio    = "gradio"
)

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{OpenAI, Anthropic, Gemini, Ollama, Gradio}
}

// labels maps the display names offered by the UI to provider names.
var labels = map[string]string{
	"gpt":    OpenAI,
	"claude": Anthropic,
}

// displayLabels are the UI labels of each provider.
var displayLabels = map[string]string{
	OpenAI:    "GPT",
	Anthropic: "Claude",
	Gemini:    "Gemini",
	Ollama:    "Ollama",
	Gradio:    "Gradio",
}

// Label returns the UI label for a canonical provider name, or name itself
// when it has none.
func Label(name string) string {
	if label, ok := displayLabels[name]; ok {
		return label
	}
	return name
}

// Resolve maps a UI label ("GPT", "Claude", "Gemini", "Ollama") or a canonical
// provider name to the canonical name, case-insensitively.
func Resolve(label string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	if name, ok := labels[key]; ok {
		return name, nil
	}
	if slices.Contains(SupportedProviders(), key) {
		return key, nil
	}
	return "", stream.UnknownBackend(label)
}

// New creates the adapter for the given provider type. Unknown types fail
// with an UnknownBackend failure before any request is made.
func New(providerType string, cfg Config) (Provider, error) {
	switch providerType {
	case OpenAI:
		return openai.New(cfg), nil
	case Anthropic:
		return anthropic.New(cfg), nil
	case Gemini:
		return gemini.New(cfg), nil
	case Ollama:
		return ollama.New(cfg), nil
	case Gradio:
		return gradio.New(cfg), nil
	default:
		return nil, stream.UnknownBackend(providerType)
	}
}
