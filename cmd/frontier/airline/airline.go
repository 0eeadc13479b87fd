// Package airlinecmder provides the airline command, an interactive FlightAI
// customer support assistant that looks up ticket prices with a tool call.
package airlinecmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/frontier/cmd/frontier/backend"
	"github.com/papercomputeco/frontier/pkg/airline"
	"github.com/papercomputeco/frontier/pkg/cliui"
	"github.com/papercomputeco/frontier/pkg/llm"
	"github.com/papercomputeco/frontier/pkg/llm/provider"
)

var (
	userPrompt      = cliui.UserStyle.Render("you> ")
	assistantPrompt = cliui.AssistantStyle.Render("flightai> ")
)

const airlineLongDesc string = `Chat with FlightAI, an airline customer support assistant.

The assistant answers in short, courteous sentences. When asked about the
price of a return ticket it calls the get_ticket_price tool, which is
answered locally from a fixed price list, and then replies with the result.
Tool calls need an OpenAI-compatible endpoint; the openai backend settings
and credentials are used.

Type /exit or Ctrl+D to quit.

Examples:
  frontier airline
  frontier airline -m gpt-4o`

const airlineShortDesc string = "Chat with the FlightAI airline assistant"

type airlineCommander struct {
	model string
}

func NewAirlineCmd() *cobra.Command {
	cmder := &airlineCommander{}

	cmd := &cobra.Command{
		Use:   "airline",
		Short: airlineShortDesc,
		Long:  airlineLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.model, "model", "m", airline.DefaultModel, "OpenAI model with tool calling")

	return cmd
}

func (c *airlineCommander) run(cmd *cobra.Command) error {
	f, err := backend.Load(cmd, backend.Options{})
	if err != nil {
		return err
	}

	cfg, _, err := f.ClientConfig(provider.OpenAI)
	if err != nil {
		return err
	}
	assistant := airline.New(cfg, c.model)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s %s\n\n", cliui.KeyStyle.Render("Model:"), cliui.NameStyle.Render(c.model))
	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Ask about flights and ticket prices. /exit or Ctrl+D to quit."))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var history []llm.Message
	scanner := bufio.NewScanner(cmd.InOrStdin())

	for {
		fmt.Fprint(out, userPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		reply, err := assistant.Chat(ctx, history, input)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			cliui.Fail(cmd.ErrOrStderr(), err, "")
			continue
		}

		fmt.Fprintf(out, "%s%s\n\n", assistantPrompt, reply)
		history = append(history,
			llm.NewTextMessage(llm.RoleUser, input),
			llm.NewTextMessage(llm.RoleAssistant, reply),
		)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(out)
	return nil
}
