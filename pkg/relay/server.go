package relay

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tinyland-inc/telebridge/pkg/bus"
	"github.com/tinyland-inc/telebridge/pkg/config"
	"github.com/tinyland-inc/telebridge/pkg/logger"
	"github.com/tinyland-inc/telebridge/pkg/message"
)

// Backend performs the actions that address an existing message. Sends go
// through the bus instead.
type Backend interface {
	DeleteMessage(ctx context.Context, id string) error
	SetMessageReaction(ctx context.Context, id, emoji string) error
}

// Request is an action sent by a subscriber. ID is echoed on the reply.
type Request struct {
	ID     string          `json:"id"`
	Action string          `json:"action"`
	Params json.RawMessage `json:"params"`
}

const (
	ActionSendMessage        = "send_message"
	ActionDeleteMessage      = "delete_message"
	ActionSetMessageReaction = "set_message_reaction"
)

type sendParams struct {
	Channel  string           `json:"channel"`
	ChatID   string           `json:"chat_id"`
	Segments message.Segments `json:"segments"`
}

type messageParams struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji,omitempty"`
}

var errUnknownAction = errors.New("unknown action")

type Server struct {
	cfg      config.RelayConfig
	hub      *Hub
	bus      *bus.MessageBus
	backend  Backend
	upgrader websocket.Upgrader
	timeout  time.Duration
}

func NewServer(cfg config.RelayConfig, mb *bus.MessageBus, backend Backend) *Server {
	return &Server{
		cfg:     cfg,
		hub:     NewHub(),
		bus:     mb,
		backend: backend,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		timeout: 30 * time.Second,
	}
}

func (s *Server) Hub() *Hub { return s.hub }

// Handler serves the websocket endpoint at the configured path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.handleWebSocket)
	return mux
}

func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.AuthToken == "" {
		return true
	}
	token := r.URL.Query().Get("token")
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AuthToken)) == 1
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.ErrorCF("relay", "WebSocket upgrade failed", map[string]any{"error": err.Error()})
		return
	}

	c := s.hub.register(conn)
	logger.InfoCF("relay", "Subscriber connected", map[string]any{
		"client_id": c.id,
		"remote":    r.RemoteAddr,
	})
	c.reply(Frame{Type: FrameHello, Data: map[string]string{"client_id": c.id}})

	go c.writePump()
	go c.readPump(context.WithoutCancel(r.Context()), s.handleRequest)
}

func (s *Server) handleRequest(ctx context.Context, c *client, data []byte) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		c.reply(Frame{Type: FrameError, Error: "invalid request: " + err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.dispatch(ctx, req)
	if err != nil {
		logger.WarnCF("relay", "Action failed", map[string]any{
			"client_id": c.id,
			"action":    req.Action,
			"error":     err.Error(),
		})
		c.reply(Frame{Type: FrameError, ID: req.ID, Error: err.Error()})
		return
	}
	c.reply(Frame{Type: FrameResult, ID: req.ID, Data: result})
}

func (s *Server) dispatch(ctx context.Context, req Request) (any, error) {
	switch req.Action {
	case ActionSendMessage:
		var p sendParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, fmt.Errorf("send_message params: %w", err)
		}
		return s.send(ctx, p)

	case ActionDeleteMessage:
		var p messageParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, fmt.Errorf("delete_message params: %w", err)
		}
		return nil, s.backend.DeleteMessage(ctx, p.MessageID)

	case ActionSetMessageReaction:
		var p messageParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, fmt.Errorf("set_message_reaction params: %w", err)
		}
		return nil, s.backend.SetMessageReaction(ctx, p.MessageID, p.Emoji)
	}
	return nil, fmt.Errorf("%w: %q", errUnknownAction, req.Action)
}

// send queues the message on the bus and waits for the channel manager to
// report the delivered ids and any degraded segments.
func (s *Server) send(ctx context.Context, p sendParams) (bus.Delivery, error) {
	result := make(chan bus.OutboundResult, 1)
	err := s.bus.PublishOutbound(ctx, bus.OutboundMessage{
		Channel:  p.Channel,
		ChatID:   p.ChatID,
		Segments: p.Segments,
		Result:   result,
	})
	if err != nil {
		return bus.Delivery{}, err
	}
	select {
	case res := <-result:
		if res.Err != nil {
			return bus.Delivery{}, res.Err
		}
		return res.Delivery, nil
	case <-ctx.Done():
		return bus.Delivery{}, ctx.Err()
	}
}

// ForwardInbound broadcasts every inbound bus event until ctx is done or the
// bus closes.
func (s *Server) ForwardInbound(ctx context.Context) {
	for {
		ev, ok := s.bus.ConsumeInbound(ctx)
		if !ok {
			return
		}
		s.hub.Broadcast(Frame{Type: FrameEvent, ID: ev.Envelope.ID, Data: ev.Envelope})
	}
}

// ListenAndServe runs the relay until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoCF("relay", "Relay listening", map[string]any{"addr": srv.Addr, "path": s.cfg.Path})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
