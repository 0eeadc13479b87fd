// Package chatcmder provides the chat command for an interactive, streamed
// conversation with any configured backend.
package chatcmder

import (
	"bufio"
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
	"github.com/papercomputeco/frontier/pkg/llm/provider"
	"github.com/papercomputeco/frontier/pkg/stream"
)

// DefaultSystemPrompt is used when --system is not given.
const DefaultSystemPrompt = "You are a helpful assistant"

var (
	userPrompt      = cliui.UserStyle.Render("you> ")
	assistantPrompt = cliui.AssistantStyle.Render("assistant> ")
)

const chatLongDesc string = `Start an interactive chat session.

Every reply is streamed as it is generated. The conversation history is kept
for the rest of the session and sent with each message. A message that fails
is dropped from the history so it can be retried.

Type /reset to start over, and /exit or Ctrl+D to quit.

Examples:
  frontier chat
  frontier chat -p anthropic --markdown
  frontier chat -p ollama -m llama3.2 -s "You are a pirate"`

const chatShortDesc string = "Interactive streamed chat with a backend"

type chatCommander struct {
	provider    string
	model       string
	temperature float64
	maxTokens   int
	system      string
	markdown    bool
}

var chatFlags = []string{
	config.FlagProvider,
	config.FlagModel,
	config.FlagTemperature,
	config.FlagMaxTokens,
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.provider)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddFloatFlag(cmd, config.Flags, config.FlagTemperature, &cmder.temperature)
	config.AddIntFlag(cmd, config.Flags, config.FlagMaxTokens, &cmder.maxTokens)
	cmd.Flags().StringVarP(&cmder.system, "system", "s", DefaultSystemPrompt, "System prompt")
	cmd.Flags().BoolVar(&cmder.markdown, "markdown", false, "Render replies as live terminal markdown")

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command) error {
	f, err := backend.Load(cmd, backend.Options{Flags: chatFlags})
	if err != nil {
		return err
	}

	prov, model, err := f.Default()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s %s  %s %s\n\n",
		cliui.KeyStyle.Render("Backend:"),
		cliui.NameStyle.Render(prov.Name()),
		cliui.KeyStyle.Render("Model:"),
		cliui.NameStyle.Render(model),
	)
	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /reset to start over, /exit or Ctrl+D to quit."))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var history []llm.Message
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "/exit":
			fmt.Fprintln(out)
			return nil
		case "/reset":
			history = nil
			fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("History cleared."))
			continue
		}

		msgs := Messages(c.system, history, input)
		reply, err := c.send(ctx, out, prov, f.Request(model, msgs))
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			cliui.Fail(errOut, err, stream.PartialText(err))
			fmt.Fprintln(out)
			continue
		}

		history = append(history,
			llm.NewTextMessage(llm.RoleUser, input),
			llm.NewTextMessage(llm.RoleAssistant, reply),
		)
		fmt.Fprintln(out)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(out)
	return nil
}

// Messages builds the conversation sent for one user message: the system
// prompt, the session history, then the new message.
func Messages(system string, history []llm.Message, message string) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+2)
	if system != "" {
		msgs = append(msgs, llm.NewTextMessage(llm.RoleSystem, system))
	}
	msgs = append(msgs, history...)
	return append(msgs, llm.NewTextMessage(llm.RoleUser, message))
}

func (c *chatCommander) send(ctx context.Context, w io.Writer, prov provider.Provider, req *llm.ChatRequest) (string, error) {
	fmt.Fprint(w, assistantPrompt)
	if c.markdown {
		fmt.Fprintln(w)
	}

	out, err := backend.NewOutput(w, c.markdown)
	if err != nil {
		return "", err
	}
	text, err := stream.Fold(prov.Stream(ctx, req), out)
	if finishErr := out.Finish(); err == nil {
		err = finishErr
	}
	return text, err
}
