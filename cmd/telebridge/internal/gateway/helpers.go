package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mymmrac/telego"

	"github.com/tinyland-inc/telebridge/cmd/telebridge/internal"
	"github.com/tinyland-inc/telebridge/pkg/bus"
	"github.com/tinyland-inc/telebridge/pkg/channels"
	"github.com/tinyland-inc/telebridge/pkg/channels/telegram"
	"github.com/tinyland-inc/telebridge/pkg/logger"
	"github.com/tinyland-inc/telebridge/pkg/relay"
)

func gatewayCmd(parent context.Context, configPath string, debug bool) error {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if debug {
		logger.SetLevel(logger.DEBUG)
		fmt.Println("🔍 Debug mode enabled")
	}
	if parent == nil {
		parent = context.Background()
	}

	msgBus := bus.NewMessageBus()
	manager := channels.NewManager(msgBus)

	var adapter *telegram.Adapter
	if cfg.Telegram.Enabled {
		bot, err := internal.NewBot(cfg.Telegram)
		if err != nil {
			return fmt.Errorf("error creating telegram bot: %w", err)
		}
		adapter = internal.NewAdapter(bot, cfg.Telegram)
		source := telegram.LongPolling(bot, &telego.GetUpdatesParams{
			Timeout:        cfg.Telegram.PollTimeout,
			AllowedUpdates: cfg.Telegram.AllowedUpdates,
		})
		manager.Register(telegram.NewChannel(adapter, source, msgBus,
			channels.WithAllowList(cfg.Telegram.AllowFrom)))
	}

	enabled := manager.EnabledChannels()
	if len(enabled) == 0 {
		return errors.New("no channels enabled; set telegram.enabled in the config")
	}
	fmt.Printf("✓ Channels enabled: %s\n", enabled)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	managerErr := make(chan error, 1)
	go func() { managerErr <- manager.StartAll(ctx) }()

	relayErr := make(chan error, 1)
	if cfg.Relay.Enabled {
		srv := relay.NewServer(cfg.Relay, msgBus, adapter)
		go srv.ForwardInbound(ctx)
		go func() { relayErr <- srv.ListenAndServe(ctx) }()
		fmt.Printf("✓ Relay listening on ws://%s%s\n", cfg.Relay.Addr(), cfg.Relay.Path)
	} else {
		go drainInbound(ctx, msgBus)
	}

	fmt.Println("Press Ctrl+C to stop")

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-managerErr:
		if err != nil {
			runErr = fmt.Errorf("error starting channels: %w", err)
		}
		stop()
	case err := <-relayErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorCF("gateway", "Relay stopped", map[string]any{"error": err.Error()})
		}
		stop()
	}

	fmt.Println("\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	manager.StopAll(shutdownCtx)
	msgBus.Close()
	logger.Sync()
	fmt.Println("✓ Gateway stopped")

	return runErr
}

// drainInbound logs events when nothing else consumes them, keeping
// channels from blocking on a full bus.
func drainInbound(ctx context.Context, mb *bus.MessageBus) {
	for {
		ev, ok := mb.ConsumeInbound(ctx)
		if !ok {
			return
		}
		logger.InfoCF("gateway", "Event received", map[string]any{
			"channel": ev.Channel,
			"kind":    string(ev.Envelope.Kind),
			"sender":  ev.SenderID,
			"chat":    ev.ChatID,
		})
	}
}

var _ relay.Backend = (*telegram.Adapter)(nil)
