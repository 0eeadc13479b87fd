// Package keyscmder provides the keys command, which reports which provider
// API keys are available without revealing them.
package keyscmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/frontier/pkg/cliui"
	"github.com/papercomputeco/frontier/pkg/credentials"
)

const keysLongDesc string = `Report which provider API keys are available.

Keys are looked up the same way every other command looks them up: a .env
file in the working directory is loaded first, then the provider's
environment variable is checked, then credentials.toml in the .frontier/
directory. Only a short prefix of each key is printed.

Examples:
  frontier keys`

const keysShortDesc string = "Report which provider API keys are available"

type keysCommander struct {
	configDir string
	dotEnv    []string
}

func NewKeysCmd() *cobra.Command {
	cmder := &keysCommander{}

	cmd := &cobra.Command{
		Use:   "keys",
		Short: keysShortDesc,
		Long:  keysLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceVar(&cmder.dotEnv, "env-file", []string{".env"}, "Dotenv files to load before checking")

	return cmd
}

func (c *keysCommander) run(w io.Writer) error {
	if err := credentials.LoadDotEnv(c.dotEnv...); err != nil {
		return err
	}

	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	fmt.Fprintln(w)
	for _, provider := range credentials.SupportedProviders() {
		key, source, err := mgr.Resolve(provider)
		if err != nil {
			return fmt.Errorf("reading %s credentials: %w", provider, err)
		}

		report := credentials.Report(provider, key)
		if key == "" {
			fmt.Fprintf(w, "  %s %s\n", cliui.FailMark, cliui.DimStyle.Render(report))
			continue
		}
		fmt.Fprintf(w, "  %s %s %s\n", cliui.SuccessMark, report, cliui.DimStyle.Render("("+source+")"))
	}
	fmt.Fprintln(w)

	return nil
}
