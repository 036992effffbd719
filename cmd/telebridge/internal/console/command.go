package console

import (
	"github.com/spf13/cobra"
)

func NewConsoleCommand() *cobra.Command {
	var configPath string
	var debug bool

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Drive the bot interactively",
		Long: `Opens a prompt that issues Bot API calls through the adapter.
No updates are consumed, so a running gateway is not disturbed.`,
		Args: cobra.NoArgs,
		Example: `  telebridge console
  telebridge console --config ./config.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return consoleCmd(cmd.Context(), configPath, debug)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ~/.telebridge/config.json)")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	return cmd
}
