package onboard

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/tinyland-inc/telebridge/cmd/telebridge/internal"
	"github.com/tinyland-inc/telebridge/pkg/config"
)

type options struct {
	configPath string
	token      string
	allow      []string
	relay      bool
	force      bool
}

func onboard(out io.Writer, opts options) error {
	path := opts.configPath
	if path == "" {
		path = internal.GetConfigPath()
	}
	path = config.ExpandHome(path)

	if _, err := os.Stat(path); err == nil && !opts.force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	if opts.token != "" {
		cfg.Telegram.Enabled = true
		cfg.Telegram.Token = opts.token
	}
	cfg.Telegram.AllowFrom = append(cfg.Telegram.AllowFrom, opts.allow...)
	if opts.relay {
		cfg.Relay.Enabled = true
		cfg.Relay.AuthToken = uuid.NewString()
	}

	if err := config.SaveConfig(path, cfg); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	fmt.Fprintf(out, "%s Config written to %s\n", internal.Logo, path)
	if cfg.Relay.Enabled {
		fmt.Fprintf(out, "  Relay: ws://%s%s (token %s)\n", cfg.Relay.Addr(), cfg.Relay.Path, cfg.Relay.AuthToken)
	}
	if !cfg.Telegram.Enabled {
		fmt.Fprintln(out, "  Next: set telegram.token and telegram.enabled, then run telebridge gateway")
	} else {
		fmt.Fprintln(out, "  Next: telebridge gateway")
	}
	return nil
}
