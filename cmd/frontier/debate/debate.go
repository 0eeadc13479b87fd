// Package debatecmder provides the debate command, in which two backends
// with opposite personas talk to each other.
package debatecmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/frontier/cmd/frontier/backend"
	"github.com/papercomputeco/frontier/pkg/cliui"
	"github.com/papercomputeco/frontier/pkg/debate"
	"github.com/papercomputeco/frontier/pkg/llm/provider"
	"github.com/papercomputeco/frontier/pkg/sink"
	"github.com/papercomputeco/frontier/pkg/stream"
)

const debateLongDesc string = `Let two backends argue.

The lead backend plays an argumentative persona that disagrees with
everything; the reply backend plays a polite one that looks for common
ground. Each side sees its own lines as assistant turns and the other
side's lines as user turns. Every reply is streamed as it is generated.

Examples:
  frontier debate
  frontier debate --lead ollama --reply gemini --rounds 3
  frontier debate --lead-model gpt-4o --reply-model claude-3-5-sonnet-latest`

const debateShortDesc string = "Let two backends argue"

const (
	defaultLead    = provider.OpenAI
	defaultReply   = provider.Anthropic
	leadOpening    = "Hi there"
	replyOpening   = "Hi"
	replyMaxTokens = 500
)

type debateCommander struct {
	lead       string
	reply      string
	leadModel  string
	replyModel string
	rounds     int
}

func NewDebateCmd() *cobra.Command {
	cmder := &debateCommander{}

	cmd := &cobra.Command{
		Use:   "debate",
		Short: debateShortDesc,
		Long:  debateLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVar(&cmder.lead, "lead", defaultLead, "Backend playing the argumentative side")
	cmd.Flags().StringVar(&cmder.reply, "reply", defaultReply, "Backend playing the polite side")
	cmd.Flags().StringVar(&cmder.leadModel, "lead-model", "", "Model for the lead side (default: the backend's configured model)")
	cmd.Flags().StringVar(&cmder.replyModel, "reply-model", "", "Model for the reply side (default: the backend's configured model)")
	cmd.Flags().IntVar(&cmder.rounds, "rounds", debate.DefaultRounds, "Number of exchanges after the opening lines")

	return cmd
}

func (c *debateCommander) run(cmd *cobra.Command) error {
	f, err := backend.Load(cmd, backend.Options{})
	if err != nil {
		return err
	}

	lead, err := side(f, c.lead, c.leadModel)
	if err != nil {
		return err
	}
	lead.System = debate.ArgumentativePrompt
	lead.Opening = leadOpening

	reply, err := side(f, c.reply, c.replyModel)
	if err != nil {
		return err
	}
	reply.System = debate.PolitePrompt
	reply.Opening = replyOpening
	reply.MaxTokens = replyMaxTokens

	if lead.Name == reply.Name {
		lead.Name += " 1"
		reply.Name += " 2"
	}

	d := &debate.Debate{
		Lead:   lead,
		Reply:  reply,
		Rounds: c.rounds,
		Logger: f.Logger().With("component", "debate"),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	_, err = d.Run(ctx, transcript(out))
	fmt.Fprintln(out)
	if err != nil && !errors.Is(err, context.Canceled) {
		cliui.Fail(cmd.ErrOrStderr(), err, stream.PartialText(err))
	}
	return err
}

func side(f *backend.Factory, name, model string) (debate.Side, error) {
	prov, configured, err := f.Provider(name)
	if err != nil {
		return debate.Side{}, err
	}
	if model == "" {
		model = configured
	}
	return debate.Side{
		Name:     provider.Label(prov.Name()),
		Provider: prov,
		Model:    model,
	}, nil
}

// transcript prints a speaker header before each line and streams the line
// under it.
func transcript(w io.Writer) func(speaker string) stream.Sink {
	first := true
	return func(speaker string) stream.Sink {
		if !first {
			fmt.Fprint(w, "\n\n")
		}
		first = false
		fmt.Fprintf(w, "%s\n", cliui.AssistantStyle.Render(speaker+":"))
		return sink.NewPlain(w)
	}
}
