// Package backend wires configuration, credentials and logging into backend
// adapters for frontier commands.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/frontier/pkg/config"
	"github.com/papercomputeco/frontier/pkg/credentials"
	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/llm/provider"
	"github.com/papercomputeco/frontier/pkg/logger"
	"github.com/papercomputeco/frontier/pkg/page"
)

// Factory builds backend adapters from the effective configuration. It is
// safe for concurrent use; Reload may run while adapters are being built.
type Factory struct {
	mu    sync.RWMutex
	v     *viper.Viper
	creds *credentials.Manager

	logger     *slog.Logger
	logFile    io.Closer
	httpClient *http.Client
	raw        io.Writer

	// detect picks the default backend from --model when --provider was not
	// given.
	detect bool
}

// Options configures Load.
type Options struct {
	// Flags are the registry keys of config.Flags registered on the command.
	Flags []string

	// Raw receives a verbatim copy of every upstream byte stream when set.
	Raw io.Writer

	// HTTPClient overrides http.DefaultClient for upstream requests.
	HTTPClient *http.Client

	// DotEnv lists the .env files to load. Empty means ".env".
	DotEnv []string

	// LogFile, when set, also appends JSON log records to this file.
	LogFile string
}

// Load reads .env files, config.toml, FRONTIER_* variables and the command's
// flags, in increasing order of precedence. The persistent --config-dir and
// --debug flags are read from cmd when present.
func Load(cmd *cobra.Command, opts Options) (*Factory, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	if err := credentials.LoadDotEnv(opts.DotEnv...); err != nil {
		return nil, err
	}

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, opts.Flags)

	creds, err := credentials.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	f := &Factory{
		v:          v,
		creds:      creds,
		logger:     logger.New(logger.WithDebug(debug), logger.WithPretty(true), logger.WithPrefix(cmd.Name())),
		httpClient: opts.HTTPClient,
		raw:        opts.Raw,
		detect:     flagChanged(cmd, config.FlagModel) && !flagChanged(cmd, config.FlagProvider),
	}

	if opts.LogFile != "" {
		fileLog, file, err := logger.File(opts.LogFile, logger.WithDebug(debug), logger.WithPrefix(cmd.Name()))
		if err != nil {
			return nil, err
		}
		f.logger = logger.Multi(f.logger, fileLog)
		f.logFile = file
	}

	return f, nil
}

// Close releases the log file opened by Load, if any.
func (f *Factory) Close() error {
	if f.logFile == nil {
		return nil
	}
	return f.logFile.Close()
}

func flagChanged(cmd *cobra.Command, key string) bool {
	fl := cmd.Flags().Lookup(config.Flags[key].Name)
	return fl != nil && fl.Changed
}

// Logger returns the command logger.
func (f *Factory) Logger() *slog.Logger {
	return f.logger
}

// String returns the effective value of a dotted config key.
func (f *Factory) String(key string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.v.GetString(key)
}

// Int returns the effective value of a dotted config key.
func (f *Factory) Int(key string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.v.GetInt(key)
}

// DefaultName is the backend selected by --provider or defaults.provider.
func (f *Factory) DefaultName() string {
	return f.String("defaults.provider")
}

// ClientConfig returns the adapter configuration for a canonical backend
// name together with the backend's configured settings.
func (f *Factory) ClientConfig(canonical string) (llm.ClientConfig, config.ProviderConfig, error) {
	f.mu.RLock()
	pc := config.ProviderFromViper(f.v, canonical)
	f.mu.RUnlock()

	var key string
	if credentials.IsSupportedProvider(canonical) && f.creds != nil {
		var (
			source string
			err    error
		)
		key, source, err = f.creds.Resolve(canonical)
		if err != nil {
			return llm.ClientConfig{}, pc, fmt.Errorf("reading %s credentials: %w", canonical, err)
		}
		f.logger.Debug("resolved api key", "provider", canonical, "source", source, "set", key != "")
	}

	return llm.ClientConfig{
		APIKey:     key,
		BaseURL:    pc.BaseURL,
		HTTPClient: f.httpClient,
		Logger:     f.logger.With("provider", canonical),
		Raw:        f.raw,
	}, pc, nil
}

// Provider builds the adapter for a backend name or UI label and returns it
// with the backend's configured model.
func (f *Factory) Provider(name string) (provider.Provider, string, error) {
	canonical, err := provider.Resolve(name)
	if err != nil {
		return nil, "", err
	}

	cfg, pc, err := f.ClientConfig(canonical)
	if err != nil {
		return nil, "", err
	}

	prov, err := provider.New(canonical, cfg)
	if err != nil {
		return nil, "", err
	}
	return prov, pc.Model, nil
}

// Default builds the adapter selected by --provider. --model, or
// defaults.model, overrides the backend's configured model. When --model is
// given without --provider, the backend is detected from the model name and
// falls back to defaults.provider for unrecognized names.
func (f *Factory) Default() (provider.Provider, string, error) {
	name := f.DefaultName()
	m := f.String("defaults.model")
	if f.detect && m != "" {
		detected, err := provider.NewDetector().Detect(m)
		if err != nil {
			f.logger.Debug("model not recognized, using default backend", "model", m, "provider", name)
		} else {
			name = detected
		}
	}

	prov, model, err := f.Provider(name)
	if err != nil {
		return nil, "", err
	}
	if m != "" {
		model = m
	}
	return prov, model, nil
}

// Request builds a chat request, applying the configured temperature and
// output token limit when they are positive.
func (f *Factory) Request(model string, msgs []llm.Message) *llm.ChatRequest {
	temperature, maxTokens := f.Sampling()

	req := llm.ChatRequest{Model: model, Messages: msgs}
	if temperature > 0 {
		req = req.WithTemperature(temperature)
	}
	if maxTokens > 0 {
		req = req.WithMaxTokens(maxTokens)
	}
	return &req
}

// Sampling returns the effective temperature and output token limit.
func (f *Factory) Sampling() (float64, int) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.v.GetFloat64("defaults.temperature"), f.v.GetInt("defaults.max_tokens")
}

// Fetcher returns a page fetcher using the configured user agent.
func (f *Factory) Fetcher() *page.Fetcher {
	return &page.Fetcher{
		HTTPClient: f.httpClient,
		UserAgent:  f.String("fetch.user_agent"),
	}
}

// ConfigFile returns the config.toml in use, or "" when none was found.
func (f *Factory) ConfigFile() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.v.ConfigFileUsed()
}

// Reload re-reads config.toml.
func (f *Factory) Reload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Watch reloads the configuration whenever config.toml is written, calling
// onChange after each successful reload. It blocks until ctx is done. When no
// config file is in use there is nothing to watch and Watch returns nil.
func (f *Factory) Watch(ctx context.Context, onChange func()) error {
	path := f.ConfigFile()
	if path == "" {
		f.logger.Debug("no config file, not watching")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching config dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := f.Reload(); err != nil {
				f.logger.Warn("config reload failed", "error", err)
				continue
			}
			f.logger.Info("config reloaded", "path", path)
			if onChange != nil {
				onChange()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("config watcher error: %w", err)
		}
	}
}
