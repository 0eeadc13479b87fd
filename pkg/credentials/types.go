package credentials

// Credentials is the content of credentials.toml:
//
//	version = 1
//
//	[keys]
//	openai = "sk-proj-..."
type Credentials struct {
	Version int               `toml:"version"`
	Keys    map[string]string `toml:"keys"`
}

// KeyInfo describes a backend that authenticates with an API key.
type KeyInfo struct {
	// Name is the canonical backend name, e.g. "openai".
	Name string

	// Label is the vendor name used in key reports.
	Label string

	// EnvVars are checked in order before credentials.toml. The first is the
	// one the vendor documents.
	EnvVars []string

	// MaskPrefix is how many leading characters a key report reveals.
	MaskPrefix int
}

var keyInfos = []KeyInfo{
	{Name: "openai", Label: "OpenAI", EnvVars: []string{"OPENAI_API_KEY"}, MaskPrefix: 8},
	{Name: "anthropic", Label: "Anthropic", EnvVars: []string{"ANTHROPIC_API_KEY"}, MaskPrefix: 7},
	{Name: "gemini", Label: "Google", EnvVars: []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}, MaskPrefix: 8},
}

// Lookup returns the key info for a backend.
func Lookup(provider string) (KeyInfo, bool) {
	for _, s := range keyInfos {
		if s.Name == provider {
			return s, true
		}
	}
	return KeyInfo{}, false
}
