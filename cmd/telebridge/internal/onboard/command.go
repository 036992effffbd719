package onboard

import (
	"github.com/spf13/cobra"
)

func NewOnboardCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:     "onboard",
		Aliases: []string{"o"},
		Short:   "Write a starter config",
		Args:    cobra.NoArgs,
		Example: `  telebridge onboard
  telebridge onboard --token 123456:ABC --allow @alice
  telebridge onboard --config ./config.json --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return onboard(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (default: ~/.telebridge/config.json)")
	cmd.Flags().StringVar(&opts.token, "token", "", "Telegram bot token from @BotFather")
	cmd.Flags().StringSliceVar(&opts.allow, "allow", nil, "Users allowed to reach the bridge (id or @username)")
	cmd.Flags().BoolVar(&opts.relay, "relay", true, "Enable the websocket relay")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite an existing config")

	return cmd
}
