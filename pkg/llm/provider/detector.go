package provider

import (
	"strings"

	"github.com/papercomputeco/frontier/pkg/stream"
)

// ollamaFamilies are model families commonly served by a local Ollama.
var ollamaFamilies = []string{
	"llama", "mistral", "mixtral", "gemma", "qwen", "phi", "deepseek",
	"codellama", "tinyllama", "vicuna", "orca", "neural-chat", "starling",
}

// rule maps a model name prefix to a provider.
type rule struct {
	prefix   string
	provider string
}

// Detector picks a provider from a model identifier.
type Detector struct {
	rules []rule
}

// NewDetector creates a new Detector with the default rules. Rules are
// checked in order; the first matching prefix wins.
func NewDetector() *Detector {
	rules := []rule{
		{"gpt-", OpenAI},
		{"chatgpt-", OpenAI},
		{"o1", OpenAI},
		{"o3", OpenAI},
		{"o4", OpenAI},
		{"claude-", Anthropic},
		{"gemini-", Gemini},
	}
	for _, family := range ollamaFamilies {
		rules = append(rules, rule{family, Ollama})
	}
	return &Detector{rules: rules}
}

// Detect returns the provider name for model. Any "name:tag" model is assumed
// to be served by Ollama. Identifiers matching no rule fail with an
// UnknownBackend failure.
func (d *Detector) Detect(model string) (string, error) {
	m := strings.ToLower(strings.TrimSpace(model))
	for _, r := range d.rules {
		if strings.HasPrefix(m, r.prefix) {
			return r.provider, nil
		}
	}
	if name, tag, ok := strings.Cut(m, ":"); ok && name != "" && tag != "" {
		return Ollama, nil
	}
	return "", stream.UnknownBackend(model)
}
