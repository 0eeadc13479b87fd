// Package credentials stores backend API keys in credentials.toml and
// resolves them against the environment.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/frontier/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 1
)

// Manager reads and writes credentials.toml in the .frontier/ directory.
type Manager struct {
	path string

	// mu serializes read-modify-write cycles within the process.
	mu sync.Mutex
}

// NewManager creates a credentials Manager. If override is non-empty it is
// used as the .frontier/ directory; otherwise the standard dotdir resolution
// applies.
func NewManager(override string) (*Manager, error) {
	path, err := dotdir.NewManager().File(override, credentialsFile)
	if err != nil {
		return nil, err
	}
	return &Manager{path: path}, nil
}

// Path returns the resolved path to credentials.toml.
func (m *Manager) Path() string {
	return m.path
}

// Load reads credentials.toml. A missing file yields empty credentials; a
// file written by a newer frontier is rejected rather than misread.
func (m *Manager) Load() (*Credentials, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{Version: currentVersion, Keys: map[string]string{}}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds := &Credentials{}
	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	if creds.Version > currentVersion {
		return nil, fmt.Errorf("credentials.toml version %d is newer than supported version %d", creds.Version, currentVersion)
	}
	if creds.Keys == nil {
		creds.Keys = map[string]string{}
	}
	return creds, nil
}

// Save replaces credentials.toml with 0600 permissions. The file is written
// next to the target and renamed into place so readers never see a partial
// file.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}
	creds.Version = currentVersion

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".credentials-*.toml")
	if err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("writing credentials: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := os.Rename(tmp.Name(), m.path); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

func (m *Manager) update(fn func(keys map[string]string)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.Load()
	if err != nil {
		return err
	}
	fn(creds.Keys)
	return m.Save(creds)
}

// SetKey stores an API key for the given provider.
func (m *Manager) SetKey(provider, key string) error {
	return m.update(func(keys map[string]string) {
		keys[provider] = key
	})
}

// RemoveKey deletes the stored key for a provider. Removing a key that is
// not stored is not an error.
func (m *Manager) RemoveKey(provider string) error {
	return m.update(func(keys map[string]string) {
		delete(keys, provider)
	})
}

// GetKey returns the stored API key for provider, or "" when none is stored.
func (m *Manager) GetKey(provider string) (string, error) {
	creds, err := m.Load()
	if err != nil {
		return "", err
	}
	return creds.Keys[provider], nil
}

// ListProviders returns the providers with stored keys, sorted.
func (m *Manager) ListProviders() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(creds.Keys)), nil
}

// EnvVarForProvider returns the documented environment variable for a
// provider, or "" for backends without API keys.
func EnvVarForProvider(provider string) string {
	s, ok := Lookup(provider)
	if !ok {
		return ""
	}
	return s.EnvVars[0]
}

// SupportedProviders returns the backends that authenticate with API keys.
func SupportedProviders() []string {
	names := make([]string, len(keyInfos))
	for i, s := range keyInfos {
		names[i] = s.Name
	}
	return names
}

// IsSupportedProvider reports whether provider authenticates with an API key.
func IsSupportedProvider(provider string) bool {
	_, ok := Lookup(provider)
	return ok
}
