package llm

// FormatJSON asks the provider to constrain its output to a JSON object.
const FormatJSON = "json"

// ChatRequest represents a provider-agnostic chat completion request.
// Each provider adapter translates it into its own wire format.
type ChatRequest struct {
	// Model name (e.g., "gpt-4o-mini", "claude-3-haiku-20240307", "llama3.2")
	Model string `json:"model"`

	// Conversation messages, system prompt included
	Messages []Message `json:"messages"`

	// Generation parameters (unified across providers)
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`

	// Format requests structured output. Only FormatJSON is recognized.
	Format string `json:"format,omitempty"`
}

// WithTemperature returns a copy of the request with the temperature set.
func (r ChatRequest) WithTemperature(t float64) ChatRequest {
	r.Temperature = &t
	return r
}

// WithMaxTokens returns a copy of the request with the output token limit set.
func (r ChatRequest) WithMaxTokens(n int) ChatRequest {
	r.MaxTokens = &n
	return r
}
