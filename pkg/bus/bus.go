package bus

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrBusClosed is returned when publishing to a closed MessageBus.
var ErrBusClosed = errors.New("message bus closed")

// MessageBus carries normalized events from channels to the runtime and send
// requests back. Both directions are buffered.
type MessageBus struct {
	inbound  chan InboundEvent
	outbound chan OutboundMessage
	done     chan struct{}
	closed   atomic.Bool
}

const defaultBufferSize = 100

func NewMessageBus() *MessageBus {
	return NewMessageBusSize(defaultBufferSize)
}

func NewMessageBusSize(size int) *MessageBus {
	return &MessageBus{
		inbound:  make(chan InboundEvent, size),
		outbound: make(chan OutboundMessage, size),
		done:     make(chan struct{}),
	}
}

func (mb *MessageBus) PublishInbound(ctx context.Context, ev InboundEvent) error {
	if mb.closed.Load() {
		return ErrBusClosed
	}
	select {
	case mb.inbound <- ev:
		return nil
	case <-mb.done:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (mb *MessageBus) ConsumeInbound(ctx context.Context) (InboundEvent, bool) {
	select {
	case ev, ok := <-mb.inbound:
		return ev, ok
	case <-mb.done:
		return InboundEvent{}, false
	case <-ctx.Done():
		return InboundEvent{}, false
	}
}

func (mb *MessageBus) PublishOutbound(ctx context.Context, msg OutboundMessage) error {
	if mb.closed.Load() {
		return ErrBusClosed
	}
	select {
	case mb.outbound <- msg:
		return nil
	case <-mb.done:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (mb *MessageBus) SubscribeOutbound(ctx context.Context) (OutboundMessage, bool) {
	select {
	case msg, ok := <-mb.outbound:
		return msg, ok
	case <-mb.done:
		return OutboundMessage{}, false
	case <-ctx.Done():
		return OutboundMessage{}, false
	}
}

// InboundSize reports the number of queued inbound events.
func (mb *MessageBus) InboundSize() int { return len(mb.inbound) }

func (mb *MessageBus) OutboundSize() int { return len(mb.outbound) }

func (mb *MessageBus) Close() {
	if mb.closed.CompareAndSwap(false, true) {
		close(mb.done)
	}
}
