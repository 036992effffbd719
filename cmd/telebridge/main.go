// Telebridge - Telegram bot bridge speaking a platform neutral event model
// Derived from the PicoClaw gateway.
// License: MIT
//
// Copyright (c) 2026 PicoClaw contributors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/telebridge/cmd/telebridge/internal"
	"github.com/tinyland-inc/telebridge/cmd/telebridge/internal/console"
	"github.com/tinyland-inc/telebridge/cmd/telebridge/internal/gateway"
	"github.com/tinyland-inc/telebridge/cmd/telebridge/internal/onboard"
	"github.com/tinyland-inc/telebridge/cmd/telebridge/internal/version"
)

func NewTelebridgeCommand() *cobra.Command {
	short := fmt.Sprintf("%s telebridge - Telegram event bridge v%s\n\n", internal.Logo, internal.GetVersion())

	cmd := &cobra.Command{
		Use:          "telebridge",
		Short:        short,
		Example:      "telebridge gateway",
		SilenceUsage: true,
	}

	cmd.AddCommand(
		onboard.NewOnboardCommand(),
		gateway.NewGatewayCommand(),
		console.NewConsoleCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewTelebridgeCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
