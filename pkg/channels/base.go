package channels

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/tinyland-inc/telebridge/pkg/bus"
	"github.com/tinyland-inc/telebridge/pkg/event"
)

// Channel is a running platform connection. Send reports the composite ids
// of the delivered messages and the segments it degraded.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, msg bus.OutboundMessage) (bus.Delivery, error)
	IsRunning() bool
	IsAllowed(senderID string) bool
}

type BaseChannelOption func(*BaseChannel)

// WithAllowList restricts which senders reach the bus. An empty list admits
// everyone.
func WithAllowList(allow []string) BaseChannelOption {
	return func(c *BaseChannel) { c.allowList = allow }
}

type BaseChannel struct {
	bus       *bus.MessageBus
	running   atomic.Bool
	name      string
	allowList []string
}

func NewBaseChannel(name string, mb *bus.MessageBus, opts ...BaseChannelOption) *BaseChannel {
	bc := &BaseChannel{
		bus:  mb,
		name: name,
	}
	for _, opt := range opts {
		opt(bc)
	}
	return bc
}

func (c *BaseChannel) Name() string {
	return c.name
}

func (c *BaseChannel) IsRunning() bool {
	return c.running.Load()
}

func (c *BaseChannel) SetRunning(running bool) {
	c.running.Store(running)
}

// IsAllowed matches senderID against the allow list. Either side may use the
// compound "id|username" form, and a leading "@" on usernames is ignored.
func (c *BaseChannel) IsAllowed(senderID string) bool {
	if len(c.allowList) == 0 {
		return true
	}

	idPart, userPart := splitSender(senderID)
	for _, allowed := range c.allowList {
		allowedID, allowedUser := splitSender(strings.TrimPrefix(allowed, "@"))
		switch {
		case senderID == allowed, idPart == allowedID:
			return true
		case allowedUser != "" && (idPart == allowedUser || userPart == allowedUser):
			return true
		case userPart != "" && userPart == allowedID:
			return true
		}
	}
	return false
}

func splitSender(s string) (id, user string) {
	if idx := strings.Index(s, "|"); idx > 0 {
		return s[:idx], strings.TrimPrefix(s[idx+1:], "@")
	}
	return s, ""
}

// HandleEvent publishes e on the bus unless the sender is filtered out. An
// empty senderID marks events with no sender, which are always published.
func (c *BaseChannel) HandleEvent(ctx context.Context, senderID, chatID string, e event.Event) error {
	if senderID != "" && !c.IsAllowed(senderID) {
		return nil
	}
	return c.bus.PublishInbound(ctx, bus.InboundEvent{
		Channel:  c.name,
		SenderID: senderID,
		ChatID:   chatID,
		Envelope: event.NewEnvelope(c.name, e),
	})
}
