package bus

import (
	"github.com/tinyland-inc/telebridge/pkg/event"
	"github.com/tinyland-inc/telebridge/pkg/message"
)

// InboundEvent is a normalized event published by a channel.
type InboundEvent struct {
	Channel  string         `json:"channel"`
	SenderID string         `json:"sender_id,omitempty"` // "id|username" when known
	ChatID   string         `json:"chat_id,omitempty"`
	Envelope event.Envelope `json:"envelope"`
}

// OutboundMessage asks the channel named by Channel to deliver Segments to
// ChatID. When Result is set, the outcome is written to it exactly once.
type OutboundMessage struct {
	Channel  string                `json:"channel"`
	ChatID   string                `json:"chat_id"`
	Segments message.Segments      `json:"segments"`
	Result   chan<- OutboundResult `json:"-"`
}

// Delivery is what a channel reports for a send: the composite ids of the
// delivered messages and every segment it had to degrade.
type Delivery struct {
	IDs      []string          `json:"message_ids"`
	Warnings []message.Warning `json:"warnings,omitempty"`
}

type OutboundResult struct {
	Delivery
	Err error
}

// Reply reports the delivery outcome to the requester, if one is waiting.
// Result channels must be buffered.
func (m OutboundMessage) Reply(d Delivery, err error) {
	if m.Result == nil {
		return
	}
	select {
	case m.Result <- OutboundResult{Delivery: d, Err: err}:
	default:
	}
}
