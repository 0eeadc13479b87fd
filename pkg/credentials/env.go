package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Key sources reported by Resolve.
const (
	SourceEnv    = "env"
	SourceStored = "credentials.toml"
)

// LoadDotEnv loads KEY=value pairs from the given files (default ".env") into
// the process environment, overriding variables that are already set.
// Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Overload(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// Resolve returns the API key for provider and where it came from. The
// provider's environment variables win over a key stored in credentials.toml.
// An empty key means none is configured.
func (m *Manager) Resolve(provider string) (key, source string, err error) {
	info, _ := Lookup(provider)
	for _, name := range info.EnvVars {
		if v := os.Getenv(name); v != "" {
			return v, SourceEnv, nil
		}
	}

	key, err = m.GetKey(provider)
	if err != nil || key == "" {
		return "", "", err
	}
	return key, SourceStored, nil
}

// Mask returns the first n characters of key, or all of it when shorter.
func Mask(key string, n int) string {
	if len(key) <= n {
		return key
	}
	return key[:n]
}

// Report describes whether provider has a key, revealing only its prefix.
func Report(provider, key string) string {
	info, ok := Lookup(provider)
	if !ok {
		info = KeyInfo{Label: provider, MaskPrefix: 4}
	}
	if key == "" {
		return info.Label + " API Key not set"
	}
	return fmt.Sprintf("%s API Key exists and begins %s", info.Label, Mask(key, info.MaskPrefix))
}
