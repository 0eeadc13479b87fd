package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/frontier/pkg/cliui"
	"github.com/papercomputeco/frontier/pkg/config"
)

const listLongDesc string = `List all configuration values.

Prints every configuration key grouped by its TOML table, with the value
frontier would use. Keys absent from config.toml show their built-in default.

Examples:
  frontier config list`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(cmd.OutOrStdout(), configDir)
		},
	}

	return cmd
}

func runList(w io.Writer, configDir string) error {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	printTarget(w, cfger.GetTarget())

	// Keys arrive grouped by table, so a header is printed whenever the
	// table changes.
	section := ""
	for _, key := range config.ValidConfigKeys() {
		i := strings.LastIndex(key, ".")
		table, name := key[:i], key[i+1:]
		if table != section {
			if section != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "  %s\n", cliui.HeaderStyle.Render("["+table+"]"))
			section = table
		}

		value, err := cfger.GetConfigValue(key)
		if err != nil {
			return err
		}
		shown := cliui.DimStyle.Render("<not set>")
		if value != "" {
			shown = cliui.ValueStyle.Render(fmt.Sprintf("%q", value))
		}
		fmt.Fprintf(w, "    %-18s %s\n", cliui.KeyStyle.Render(name), shown)
	}
	fmt.Fprintln(w)

	return nil
}
