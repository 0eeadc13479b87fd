// Package servecmder provides the serve command, the browser chat UI backed
// by every configured backend.
package servecmder

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/frontier/api"
	"github.com/papercomputeco/frontier/cmd/frontier/backend"
	"github.com/papercomputeco/frontier/pkg/config"
	"github.com/papercomputeco/frontier/pkg/llm/provider"
)

const serveLongDesc string = `Serve the browser chat UI.

The UI offers a model dropdown with one entry per backend. Each backend uses
its configured base URL and model from config.toml. The server also exposes a
Gradio-compatible call API at /gradio_api/call/chat.

Edits to config.toml are picked up while the server runs: new requests see
the updated base URLs, models and sampling settings.

Examples:
  frontier serve
  frontier serve --listen :8080 --backends Ollama,Gradio
  frontier serve -s "You are a pirate" --temperature 0.9
  frontier serve --log-file serve.log`

const serveShortDesc string = "Serve the browser chat UI"

var defaultBackends = []string{"GPT", "Claude", "Gemini", "Ollama"}

type serveCommander struct {
	listen      string
	provider    string
	temperature float64
	maxTokens   int
	backends    []string
	system      string
	logFile     string
}

var serveFlags = []string{
	config.FlagListen,
	config.FlagProvider,
	config.FlagTemperature,
	config.FlagMaxTokens,
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.provider)
	config.AddFloatFlag(cmd, config.Flags, config.FlagTemperature, &cmder.temperature)
	config.AddIntFlag(cmd, config.Flags, config.FlagMaxTokens, &cmder.maxTokens)
	cmd.Flags().StringSliceVar(&cmder.backends, "backends", defaultBackends, "Backend labels offered by the model dropdown")
	cmd.Flags().StringVarP(&cmder.system, "system", "s", "", "System prompt (default: "+api.DefaultSystemPrompt+")")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append JSON logs to this file")

	return cmd
}

func (c *serveCommander) run(cmd *cobra.Command) error {
	f, err := backend.Load(cmd, backend.Options{Flags: serveFlags, LogFile: c.logFile})
	if err != nil {
		return err
	}
	defer f.Close()
	log := f.Logger()

	for _, label := range c.backends {
		if _, err := provider.Resolve(label); err != nil {
			return err
		}
	}

	temperature, maxTokens := f.Sampling()
	server := api.NewServer(api.Config{
		ListenAddr:   f.String("server.listen"),
		SystemPrompt: c.system,
		Backends:     c.backends,
		Default:      provider.Label(f.DefaultName()),
		Temperature:  temperature,
		MaxTokens:    maxTokens,
	}, f.Provider, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Channel to capture errors from goroutines
	errChan := make(chan error, 2)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	go func() {
		err := f.Watch(ctx, func() {
			server.SetSampling(f.Sampling())
		})
		if err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		_ = server.Shutdown()
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		return server.Shutdown()
	}
}
