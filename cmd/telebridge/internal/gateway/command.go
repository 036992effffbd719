package gateway

import (
	"github.com/spf13/cobra"
)

func NewGatewayCommand() *cobra.Command {
	var debug bool
	var configPath string

	cmd := &cobra.Command{
		Use:     "gateway",
		Aliases: []string{"g"},
		Short:   "Start the Telegram bridge",
		Args:    cobra.NoArgs,
		Example: `  telebridge gateway
  telebridge gateway --debug --config ./config.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return gatewayCmd(cmd.Context(), configPath, debug)
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ~/.telebridge/config.json)")

	return cmd
}
