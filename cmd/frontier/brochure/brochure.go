// Package brochurecmder provides the brochure command, which writes a short
// company brochure from the company's website.
package brochurecmder

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/frontier/cmd/frontier/backend"
	"github.com/papercomputeco/frontier/pkg/brochure"
	"github.com/papercomputeco/frontier/pkg/cliui"
	"github.com/papercomputeco/frontier/pkg/config"
	"github.com/papercomputeco/frontier/pkg/stream"
)

const brochureLongDesc string = `Write a company brochure from its website.

The landing page is fetched and the backend picks the links relevant to a
brochure, such as About or Careers pages, answering in JSON. Those pages are
fetched too, and their combined text is sent back with a request for a short
markdown brochure aimed at prospective customers, investors and recruits.
Pages that fail to load are skipped.

Examples:
  frontier brochure "Hugging Face" https://huggingface.co
  frontier brochure -p openai -m gpt-4o-mini Anthropic https://anthropic.com
  frontier brochure --max-prompt-chars 8000 Acme https://acme.test`

const brochureShortDesc string = "Write a company brochure from its website"

type brochureCommander struct {
	provider       string
	model          string
	userAgent      string
	maxPromptChars int
	markdown       bool
}

var brochureFlags = []string{
	config.FlagProvider,
	config.FlagModel,
	config.FlagUserAgent,
	config.FlagMaxPromptChars,
}

func NewBrochureCmd() *cobra.Command {
	cmder := &brochureCommander{}

	cmd := &cobra.Command{
		Use:   "brochure <company> <url>",
		Short: brochureShortDesc,
		Long:  brochureLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0], args[1])
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.provider)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagUserAgent, &cmder.userAgent)
	config.AddIntFlag(cmd, config.Flags, config.FlagMaxPromptChars, &cmder.maxPromptChars)
	cmd.Flags().BoolVar(&cmder.markdown, "markdown", true, "Render the brochure as live terminal markdown")

	return cmd
}

func (c *brochureCommander) run(cmd *cobra.Command, company, url string) error {
	f, err := backend.Load(cmd, backend.Options{Flags: brochureFlags})
	if err != nil {
		return err
	}

	prov, model, err := f.Default()
	if err != nil {
		return err
	}

	out, err := backend.NewOutput(cmd.OutOrStdout(), c.markdown)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	b := &brochure.Builder{
		Fetcher:        f.Fetcher(),
		Provider:       prov,
		Model:          model,
		MaxPromptChars: f.Int("fetch.max_prompt_chars"),
		Logger:         f.Logger(),
	}

	_, err = b.Stream(ctx, company, url, out)
	if finishErr := out.Finish(); err == nil {
		err = finishErr
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		cliui.Fail(cmd.ErrOrStderr(), err, stream.PartialText(err))
	}
	return err
}
