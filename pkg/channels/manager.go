package channels

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/tinyland-inc/telebridge/pkg/bus"
	"github.com/tinyland-inc/telebridge/pkg/logger"
)

// ErrUnknownChannel is reported for outbound messages addressed to a channel
// that is not registered.
var ErrUnknownChannel = errors.New("unknown channel")

// Manager owns the registered channels and delivers outbound bus messages to
// them.
type Manager struct {
	bus      *bus.MessageBus
	mu       sync.RWMutex
	channels map[string]Channel
}

func NewManager(mb *bus.MessageBus) *Manager {
	return &Manager{
		bus:      mb,
		channels: make(map[string]Channel),
	}
}

func (m *Manager) Register(ch Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[ch.Name()] = ch
}

func (m *Manager) Get(name string) (Channel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[name]
	return ch, ok
}

// EnabledChannels returns the registered channel names in order.
func (m *Manager) EnabledChannels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.channels))
	for name := range m.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StartAll starts every channel and then dispatches outbound messages until
// ctx is done or the bus closes.
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.RLock()
	chans := make([]Channel, 0, len(m.channels))
	for _, ch := range m.channels {
		chans = append(chans, ch)
	}
	m.mu.RUnlock()

	if len(chans) == 0 {
		logger.WarnC("channels", "No channels enabled")
	}
	for _, ch := range chans {
		logger.InfoCF("channels", "Starting channel", map[string]any{"channel": ch.Name()})
		if err := ch.Start(ctx); err != nil {
			return fmt.Errorf("start %s: %w", ch.Name(), err)
		}
	}

	m.dispatchOutbound(ctx)
	return nil
}

func (m *Manager) dispatchOutbound(ctx context.Context) {
	for {
		msg, ok := m.bus.SubscribeOutbound(ctx)
		if !ok {
			return
		}
		d, err := m.Deliver(ctx, msg)
		if err != nil {
			logger.ErrorCF("channels", "Outbound delivery failed", map[string]any{
				"channel": msg.Channel,
				"chat_id": msg.ChatID,
				"error":   err.Error(),
			})
		}
		msg.Reply(d, err)
	}
}

// Deliver sends one outbound message through its channel.
func (m *Manager) Deliver(ctx context.Context, msg bus.OutboundMessage) (bus.Delivery, error) {
	ch, ok := m.Get(msg.Channel)
	if !ok {
		return bus.Delivery{}, fmt.Errorf("%w: %s", ErrUnknownChannel, msg.Channel)
	}
	return ch.Send(ctx, msg)
}

func (m *Manager) StopAll(ctx context.Context) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for name, ch := range m.channels {
		if err := ch.Stop(ctx); err != nil {
			logger.ErrorCF("channels", "Error stopping channel", map[string]any{
				"channel": name,
				"error":   err.Error(),
			})
		}
	}
}

// GetStatus reports whether each channel is running.
func (m *Manager) GetStatus() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status := make(map[string]bool, len(m.channels))
	for name, ch := range m.channels {
		status[name] = ch.IsRunning()
	}
	return status
}
