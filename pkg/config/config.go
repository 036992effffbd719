package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "123" and 123.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Relay    RelayConfig    `json:"relay"`
	Log      LogConfig      `json:"log"`
}

type TelegramConfig struct {
	Enabled        bool                `env:"TELEBRIDGE_TELEGRAM_ENABLED"         json:"enabled"`
	Token          string              `env:"TELEBRIDGE_TELEGRAM_TOKEN"           json:"token"`
	Proxy          string              `env:"TELEBRIDGE_TELEGRAM_PROXY"           json:"proxy"`
	APIURL         string              `env:"TELEBRIDGE_TELEGRAM_API_URL"         json:"api_url"`
	AllowFrom      FlexibleStringSlice `env:"TELEBRIDGE_TELEGRAM_ALLOW_FROM"      json:"allow_from"`
	PollTimeout    int                 `env:"TELEBRIDGE_TELEGRAM_POLL_TIMEOUT"    json:"poll_timeout"`
	AllowedUpdates []string            `env:"TELEBRIDGE_TELEGRAM_ALLOWED_UPDATES" json:"allowed_updates"`
}

// RelayConfig configures the websocket relay that streams events to
// external consumers.
type RelayConfig struct {
	Enabled   bool   `env:"TELEBRIDGE_RELAY_ENABLED"    json:"enabled"`
	Host      string `env:"TELEBRIDGE_RELAY_HOST"       json:"host"`
	Port      int    `env:"TELEBRIDGE_RELAY_PORT"       json:"port"`
	Path      string `env:"TELEBRIDGE_RELAY_PATH"       json:"path"`
	AuthToken string `env:"TELEBRIDGE_RELAY_AUTH_TOKEN" json:"auth_token"`
}

func (r RelayConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level       string `env:"TELEBRIDGE_LOG_LEVEL"       json:"level"`
	Development bool   `env:"TELEBRIDGE_LOG_DEVELOPMENT" json:"development"`
}

// DefaultAllowedUpdates subscribes to every update kind the normalizer
// understands, including the ones Telegram withholds unless asked.
var DefaultAllowedUpdates = []string{
	"message",
	"edited_message",
	"channel_post",
	"edited_channel_post",
	"message_reaction",
	"message_reaction_count",
	"my_chat_member",
	"chat_member",
	"chat_join_request",
	"chat_boost",
	"removed_chat_boost",
	"inline_query",
	"chosen_inline_result",
	"callback_query",
	"poll",
	"poll_answer",
}

func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			APIURL:         "https://api.telegram.org",
			AllowFrom:      FlexibleStringSlice{},
			PollTimeout:    30,
			AllowedUpdates: append([]string(nil), DefaultAllowedUpdates...),
		},
		Relay: RelayConfig{
			Host: "127.0.0.1",
			Port: 18790,
			Path: "/events",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads path over the defaults and applies environment
// overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

var (
	ErrMissingToken = errors.New("telegram.token is required when telegram is enabled")
	ErrInvalidPort  = errors.New("relay.port must be between 1 and 65535")
)

// Validate checks the settings the gateway cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Telegram.Enabled && strings.TrimSpace(c.Telegram.Token) == "" {
		errs = append(errs, ErrMissingToken)
	}
	if c.Telegram.PollTimeout < 0 {
		errs = append(errs, fmt.Errorf("telegram.poll_timeout must not be negative, got %d", c.Telegram.PollTimeout))
	}
	if c.Relay.Enabled && (c.Relay.Port < 1 || c.Relay.Port > 65535) {
		errs = append(errs, fmt.Errorf("%w, got %d", ErrInvalidPort, c.Relay.Port))
	}
	if c.Relay.Enabled && !strings.HasPrefix(c.Relay.Path, "/") {
		errs = append(errs, fmt.Errorf("relay.path must start with /, got %q", c.Relay.Path))
	}
	return errors.Join(errs...)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
