// Package frontiercmder
package frontiercmder

import (
	"github.com/spf13/cobra"

	airlinecmder "github.com/papercomputeco/frontier/cmd/frontier/airline"
	askcmder "github.com/papercomputeco/frontier/cmd/frontier/ask"
	authcmder "github.com/papercomputeco/frontier/cmd/frontier/auth"
	brochurecmder "github.com/papercomputeco/frontier/cmd/frontier/brochure"
	chatcmder "github.com/papercomputeco/frontier/cmd/frontier/chat"
	configcmder "github.com/papercomputeco/frontier/cmd/frontier/config"
	debatecmder "github.com/papercomputeco/frontier/cmd/frontier/debate"
	keyscmder "github.com/papercomputeco/frontier/cmd/frontier/keys"
	servecmder "github.com/papercomputeco/frontier/cmd/frontier/serve"
	summarizecmder "github.com/papercomputeco/frontier/cmd/frontier/summarize"
	versioncmder "github.com/papercomputeco/frontier/cmd/version"
)

const frontierLongDesc string = `Frontier streams responses from OpenAI, Anthropic, Gemini, Ollama and
Gradio backends and renders them as they arrive.

Talk to a model:
  frontier ask "Tell me a joke"     One-shot question
  frontier chat                     Interactive chat with history
  frontier serve                    Browser chat UI

Workflows:
  frontier summarize <url>          Summarize a web page
  frontier brochure <company> <url> Write a company brochure
  frontier debate                   Let two models argue
  frontier airline                  FlightAI assistant with a price tool`

const frontierShortDesc string = "Frontier - streaming LLM client"

func NewFrontierCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "frontier",
		Short:        frontierShortDesc,
		Long:         frontierLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .frontier/ config directory")

	// Add subcommands
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(summarizecmder.NewSummarizeCmd())
	cmd.AddCommand(brochurecmder.NewBrochureCmd())
	cmd.AddCommand(debatecmder.NewDebateCmd())
	cmd.AddCommand(airlinecmder.NewAirlineCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(keyscmder.NewKeysCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
