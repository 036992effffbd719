package telegram

import (
	"context"
	"errors"
	"sync"

	"github.com/mymmrac/telego"

	"github.com/tinyland-inc/telebridge/pkg/bus"
	"github.com/tinyland-inc/telebridge/pkg/channels"
	"github.com/tinyland-inc/telebridge/pkg/event"
	"github.com/tinyland-inc/telebridge/pkg/logger"
	"github.com/tinyland-inc/telebridge/pkg/message"
)

// UpdateSource opens the update stream. The stream closes when ctx is done.
type UpdateSource func(ctx context.Context) (<-chan telego.Update, error)

// LongPolling returns an UpdateSource backed by getUpdates.
func LongPolling(bot *telego.Bot, params *telego.GetUpdatesParams) UpdateSource {
	return func(ctx context.Context) (<-chan telego.Update, error) {
		return bot.UpdatesViaLongPolling(ctx, params)
	}
}

// Channel feeds normalized updates to the bus and delivers outbound
// messages through an Adapter.
type Channel struct {
	*channels.BaseChannel
	adapter *Adapter
	source  UpdateSource

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewChannel(adapter *Adapter, source UpdateSource, mb *bus.MessageBus, opts ...channels.BaseChannelOption) *Channel {
	return &Channel{
		BaseChannel: channels.NewBaseChannel(Platform, mb, opts...),
		adapter:     adapter,
		source:      source,
	}
}

func (c *Channel) Adapter() *Adapter { return c.adapter }

func (c *Channel) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return errors.New("telegram channel already started")
	}

	self, err := c.adapter.Self(ctx)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	updates, err := c.source(runCtx)
	if err != nil {
		cancel()
		return err
	}
	c.cancel = cancel
	c.done = make(chan struct{})
	c.SetRunning(true)

	logger.InfoCF("telegram", "Telegram channel started", map[string]any{
		"bot_id":   self.ID,
		"username": self.Nickname,
	})

	go c.run(runCtx, updates, c.done)
	return nil
}

func (c *Channel) run(ctx context.Context, updates <-chan telego.Update, done chan struct{}) {
	defer close(done)
	defer c.SetRunning(false)
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			c.handleUpdate(ctx, u)
		}
	}
}

func (c *Channel) handleUpdate(ctx context.Context, u telego.Update) {
	for _, e := range c.adapter.Normalize(u) {
		sender, chat := route(e)
		if err := c.HandleEvent(ctx, sender, chat, e); err != nil {
			logger.WarnCF("telegram", "Dropped event", map[string]any{
				"update_id": u.UpdateID,
				"kind":      string(e.Kind()),
				"error":     err.Error(),
			})
		}
	}
}

// route extracts the allow list identity and chat of an event. Events with
// no acting user have an empty sender and are never filtered.
func route(e event.Event) (sender, chat string) {
	switch ev := e.(type) {
	case *event.MessageEvent:
		return compoundSender(ev.Sender), chatOf(ev.ID)
	case *event.MessageEdited:
		if ev.NewMessage != nil {
			chat = chatOf(ev.NewMessage.ID)
		}
		return compoundSender(ev.User), chat
	case *event.MessageReactions:
		return compoundSender(ev.User), chatOf(ev.Message.ID)
	case *event.GroupAdd:
		return compoundSender(ev.User), ev.Group.ID
	case *event.MemberIncrease:
		return "", ev.Group.ID
	case *event.MemberDecrease:
		return "", ev.Group.ID
	case *event.MemberMuteChange:
		return "", ev.Group.ID
	case *event.AdminChange:
		return "", ev.Group.ID
	}
	return "", ""
}

func compoundSender(u event.User) string {
	if u.Nickname == "" {
		return u.ID
	}
	return u.ID + "|" + u.Nickname
}

func chatOf(id string) string {
	chat, _, err := message.DecodeID(id)
	if err != nil {
		return ""
	}
	return chat
}

func (c *Channel) Stop(ctx context.Context) error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	logger.InfoC("telegram", "Telegram channel stopped")
	return nil
}

func (c *Channel) Send(ctx context.Context, msg bus.OutboundMessage) (bus.Delivery, error) {
	res, err := c.adapter.SendMessage(ctx, msg.Segments, msg.ChatID)
	return bus.Delivery{IDs: res.IDs, Warnings: res.Warnings}, err
}
