// Package configcmder provides the config command for managing persistent
// frontier configuration stored in the .frontier/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent frontier configuration.

Configuration is stored as config.toml in the .frontier/ directory and provides
default values for command flags. CLI flags and FRONTIER_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  defaults.provider, defaults.model, defaults.temperature, defaults.max_tokens,
  providers.<name>.base_url, providers.<name>.model,
  server.listen,
  fetch.user_agent, fetch.max_prompt_chars

Backend names are openai, anthropic, gemini, ollama and gradio.

Use subcommands to get, set, or list configuration values:
  frontier config set <key> <value>    Set a configuration value
  frontier config get <key>            Get a configuration value
  frontier config list                 List all configuration values

Examples:
  frontier config set defaults.provider anthropic
  frontier config set providers.ollama.model llama3.2
  frontier config get server.listen
  frontier config list`

const configShortDesc string = "Manage persistent frontier configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
