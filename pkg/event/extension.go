package event

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Extensions routes AnyEvent payloads to handlers registered by payload type
// name. Handlers receive the payload already typed; a payload of a different
// Go type than the handler expects is not delivered to it.
type Extensions struct {
	mu       sync.RWMutex
	handlers map[string][]func(*AnyEvent) bool
}

func NewExtensions() *Extensions {
	return &Extensions{handlers: make(map[string][]func(*AnyEvent) bool)}
}

// Handle registers fn for AnyEvents whose Type equals typ and whose payload
// is a T.
func Handle[T any](x *Extensions, typ string, fn func(T)) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.handlers[typ] = append(x.handlers[typ], func(e *AnyEvent) bool {
		v, ok := PayloadAs[T](e)
		if !ok {
			return false
		}
		fn(v)
		return true
	})
}

// Dispatch delivers e to its registered handlers and returns how many ran.
func (x *Extensions) Dispatch(e *AnyEvent) int {
	x.mu.RLock()
	hs := x.handlers[e.Type]
	x.mu.RUnlock()

	n := 0
	for _, h := range hs {
		if h(e) {
			n++
		}
	}
	return n
}

// Envelope is the transport form of an event: a unique id, the variant kind
// and the moment it was emitted.
type Envelope struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	Channel string    `json:"channel"`
	Emitted time.Time `json:"emitted"`
	Event   Event     `json:"event"`
}

func NewEnvelope(channel string, e Event) Envelope {
	return Envelope{
		ID:      uuid.New().String(),
		Kind:    e.Kind(),
		Channel: channel,
		Emitted: time.Now().UTC(),
		Event:   e,
	}
}
