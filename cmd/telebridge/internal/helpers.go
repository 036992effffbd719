package internal

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mymmrac/telego"

	"github.com/tinyland-inc/telebridge/pkg/channels/telegram"
	"github.com/tinyland-inc/telebridge/pkg/config"
	"github.com/tinyland-inc/telebridge/pkg/logger"
)

const Logo = "📡"

var (
	version   = "dev"
	gitCommit string
	buildTime string
	goVersion string
)

func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".telebridge", "config.json")
}

// LoadConfig reads the config file named by path, or the default location
// when path is empty, and applies the log settings it carries.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = GetConfigPath()
	}
	cfg, err := config.LoadConfig(config.ExpandHome(path))
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	logger.Configure(cfg.Log.Development)
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	return cfg, nil
}

// NewBot builds the Telegram client for cfg.
func NewBot(cfg config.TelegramConfig) (*telego.Bot, error) {
	var opts []telego.BotOption
	if cfg.APIURL != "" && cfg.APIURL != telegram.DefaultAPIURL {
		opts = append(opts, telego.WithAPIServer(cfg.APIURL))
	}
	if cfg.Proxy != "" {
		proxy, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", cfg.Proxy, err)
		}
		opts = append(opts, telego.WithHTTPClient(&http.Client{
			Transport: &http.Transport{Proxy: http.ProxyURL(proxy)},
		}))
	}
	return telego.NewBot(cfg.Token, opts...)
}

// NewAdapter wires a Telegram adapter to bot using the endpoint in cfg.
func NewAdapter(bot *telego.Bot, cfg config.TelegramConfig) *telegram.Adapter {
	return telegram.NewAdapter(bot,
		telegram.WithToken(cfg.Token),
		telegram.WithAPIURL(cfg.APIURL),
	)
}

// FormatVersion returns the version string with optional git commit
func FormatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

// FormatBuildInfo returns build time and go version info
func FormatBuildInfo() (string, string) {
	build := buildTime
	goVer := goVersion
	if goVer == "" {
		goVer = runtime.Version()
	}
	return build, goVer
}

func GetVersion() string {
	return version
}
