// Package summarizecmder provides the summarize command, which streams a
// short markdown summary of a web page.
package summarizecmder

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/frontier/cmd/frontier/backend"
	"github.com/papercomputeco/frontier/pkg/cliui"
	"github.com/papercomputeco/frontier/pkg/config"
	"github.com/papercomputeco/frontier/pkg/page"
	"github.com/papercomputeco/frontier/pkg/stream"
	"github.com/papercomputeco/frontier/pkg/summarize"
)

const summarizeLongDesc string = `Summarize a web page.

The page is fetched, stripped of scripts, styles, images and inputs, and its
text is sent to the backend with a request for a short markdown summary that
also covers any news or announcements.

Examples:
  frontier summarize https://example.com
  frontier summarize -p openai https://anthropic.com
  frontier summarize --markdown=false https://example.com > summary.md`

const summarizeShortDesc string = "Summarize a web page"

type summarizeCommander struct {
	provider  string
	model     string
	userAgent string
	markdown  bool
}

var summarizeFlags = []string{
	config.FlagProvider,
	config.FlagModel,
	config.FlagUserAgent,
}

func NewSummarizeCmd() *cobra.Command {
	cmder := &summarizeCommander{}

	cmd := &cobra.Command{
		Use:   "summarize <url>",
		Short: summarizeShortDesc,
		Long:  summarizeLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0])
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.provider)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagUserAgent, &cmder.userAgent)
	cmd.Flags().BoolVar(&cmder.markdown, "markdown", true, "Render the summary as live terminal markdown")

	return cmd
}

func (c *summarizeCommander) run(cmd *cobra.Command, url string) error {
	f, err := backend.Load(cmd, backend.Options{Flags: summarizeFlags})
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

	fetcher := f.Fetcher()
	progress := cmd.ErrOrStderr()
	s := &summarize.Summarizer{
		Fetcher: page.SourceFunc(func(ctx context.Context, url string) (*page.Page, error) {
			var p *page.Page
			err := cliui.Step(progress, "Fetching "+url, func() error {
				var err error
				p, err = fetcher.Fetch(ctx, url)
				return err
			})
			return p, err
		}),
		Provider: prov,
		Model:    model,
	}
	f.Logger().Debug("summarizing", "url", url, "provider", prov.Name(), "model", model)

	_, err = s.Stream(ctx, url, out)
	if finishErr := out.Finish(); err == nil {
		err = finishErr
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		cliui.Fail(cmd.ErrOrStderr(), err, stream.PartialText(err))
	}
	return err
}
