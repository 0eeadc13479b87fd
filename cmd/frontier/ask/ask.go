// Package askcmder provides the ask command, a one-shot streamed question to
// any configured backend.
package askcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/frontier/cmd/frontier/backend"
	"github.com/papercomputeco/frontier/pkg/cliui"
	"github.com/papercomputeco/frontier/pkg/config"
	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/stream"
)

const askLongDesc string = `Ask a backend one question and stream the answer.

The prompt is taken from the arguments, or from stdin when there are none.
The backend and model come from --provider and --model, falling back to
config.toml and then to built-in defaults.

Examples:
  frontier ask "Tell a light-hearted joke for data scientists"
  frontier ask -p anthropic --markdown "Explain SSE in three bullets"
  echo "What is 2+2?" | frontier ask -p ollama -m llama3.2
  frontier ask --raw -p openai "hi" 2> raw.txt`

const askShortDesc string = "Ask a backend one question and stream the answer"

type askCommander struct {
	provider    string
	model       string
	temperature float64
	maxTokens   int
	system      string
	markdown    bool
	raw         bool
}

var askFlags = []string{
	config.FlagProvider,
	config.FlagModel,
	config.FlagTemperature,
	config.FlagMaxTokens,
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: askShortDesc,
		Long:  askLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return cmder.run(cmd, prompt)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.provider)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddFloatFlag(cmd, config.Flags, config.FlagTemperature, &cmder.temperature)
	config.AddIntFlag(cmd, config.Flags, config.FlagMaxTokens, &cmder.maxTokens)
	cmd.Flags().StringVarP(&cmder.system, "system", "s", "", "System prompt")
	cmd.Flags().BoolVar(&cmder.markdown, "markdown", false, "Render the answer as live terminal markdown")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Copy the raw upstream byte stream to stderr")

	return cmd
}

func (c *askCommander) run(cmd *cobra.Command, prompt string) error {
	opts := backend.Options{Flags: askFlags}
	if c.raw {
		opts.Raw = cmd.ErrOrStderr()
	}
	f, err := backend.Load(cmd, opts)
	if err != nil {
		return err
	}

	prov, model, err := f.Default()
	if err != nil {
		return err
	}

	var msgs []llm.Message
	if c.system != "" {
		msgs = append(msgs, llm.NewTextMessage(llm.RoleSystem, c.system))
	}
	msgs = append(msgs, llm.NewTextMessage(llm.RoleUser, prompt))

	out, err := backend.NewOutput(cmd.OutOrStdout(), c.markdown)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	f.Logger().Debug("asking", "provider", prov.Name(), "model", model)

	_, err = stream.Fold(prov.Stream(ctx, f.Request(model, msgs)), out)
	if finishErr := out.Finish(); err == nil {
		err = finishErr
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			cliui.Fail(cmd.ErrOrStderr(), err, stream.PartialText(err))
		}
		return err
	}
	return nil
}

// readPrompt joins args, or reads all of in when there are no args.
func readPrompt(in io.Reader, args []string) (string, error) {
	prompt := strings.Join(args, " ")
	if len(args) == 0 {
		b, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("reading prompt: %w", err)
		}
		prompt = string(b)
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt cannot be empty")
	}
	return prompt, nil
}
