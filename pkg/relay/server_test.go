package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyland-inc/telebridge/pkg/bus"
	"github.com/tinyland-inc/telebridge/pkg/channels"
	"github.com/tinyland-inc/telebridge/pkg/channels/telegram"
	"github.com/tinyland-inc/telebridge/pkg/config"
	"github.com/tinyland-inc/telebridge/pkg/event"
)

type stubBackend struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (b *stubBackend) DeleteMessage(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.deleted = append(b.deleted, id)
	return nil
}

func (b *stubBackend) SetMessageReaction(ctx context.Context, id, emoji string) error {
	return nil
}

func newTestServer(t *testing.T, token string, backend Backend) (*Server, *bus.MessageBus, string) {
	t.Helper()
	mb := bus.NewMessageBus()
	cfg := config.DefaultConfig().Relay
	cfg.AuthToken = token
	s := NewServer(cfg, mb, backend)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Hub().Close()
		ts.Close()
		mb.Close()
	})
	return s, mb, "ws" + strings.TrimPrefix(ts.URL, "http") + cfg.Path
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	hello := readFrame(t, conn)
	require.Equal(t, FrameHello, hello.Type)
	return conn
}

type rawFrame struct {
	Type  string          `json:"type"`
	ID    string          `json:"id"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func readFrame(t *testing.T, conn *websocket.Conn) rawFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f rawFrame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestServer_RejectsBadToken(t *testing.T) {
	_, _, url := newTestServer(t, "s3cret", &stubBackend{})

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	header := http.Header{"Authorization": []string{"Bearer s3cret"}}
	dial(t, url, header)
}

func TestServer_ForwardsInboundEvents(t *testing.T) {
	s, mb, url := newTestServer(t, "", &stubBackend{})
	conn := dial(t, url, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.ForwardInbound(ctx)

	env := event.NewEnvelope("telegram", &event.MessageEvent{ID: "1_2"})
	require.NoError(t, mb.PublishInbound(ctx, bus.InboundEvent{Channel: "telegram", Envelope: env}))

	f := readFrame(t, conn)
	assert.Equal(t, FrameEvent, f.Type)
	assert.Equal(t, env.ID, f.ID)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(f.Data, &decoded))
	assert.Equal(t, "message", decoded["kind"])
}

func TestServer_SendMessageWaitsForDelivery(t *testing.T) {
	_, mb, url := newTestServer(t, "", &stubBackend{})
	conn := dial(t, url, nil)

	go func() {
		msg, ok := mb.SubscribeOutbound(context.Background())
		if !ok {
			return
		}
		msg.Reply(bus.Delivery{IDs: []string{msg.ChatID + "_7"}}, nil)
	}()

	req := `{"id":"r1","action":"send_message","params":{"channel":"telegram","chat_id":"100","segments":[{"type":"text","data":{"content":"hi"}}]}}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(req)))

	f := readFrame(t, conn)
	require.Equal(t, FrameResult, f.Type, f.Error)
	assert.Equal(t, "r1", f.ID)
	assert.JSONEq(t, `{"message_ids":["100_7"]}`, string(f.Data))
}

// echoBot answers every sendMessage in chat 100 with message 7.
type echoBot struct {
	telegram.BotAPI
}

func (echoBot) GetMe(ctx context.Context) (*telego.User, error) {
	return &telego.User{ID: 99, IsBot: true, Username: "bridge_bot"}, nil
}

func (echoBot) SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	return &telego.Message{MessageID: 7, Chat: telego.Chat{ID: params.ChatID.ID}, Text: params.Text}, nil
}

func TestServer_SendMessageReturnsWarnings(t *testing.T) {
	_, mb, url := newTestServer(t, "", &stubBackend{})
	conn := dial(t, url, nil)

	idle := func(ctx context.Context) (<-chan telego.Update, error) {
		return make(chan telego.Update), nil
	}
	manager := channels.NewManager(mb)
	manager.Register(telegram.NewChannel(telegram.NewAdapter(echoBot{}), idle, mb))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = manager.StartAll(ctx) }()

	req := `{"id":"r4","action":"send_message","params":{"channel":"telegram","chat_id":"100","segments":[{"type":"at_all"},{"type":"text","data":{"content":"x"}}]}}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(req)))

	f := readFrame(t, conn)
	require.Equal(t, FrameResult, f.Type, f.Error)
	assert.Equal(t, "r4", f.ID)

	var got bus.Delivery
	require.NoError(t, json.Unmarshal(f.Data, &got))
	assert.Equal(t, []string{"100_7"}, got.IDs)
	require.Len(t, got.Warnings, 1)
	assert.Equal(t, "at_all", got.Warnings[0].Segment)
	assert.NotEmpty(t, got.Warnings[0].Reason)
}

func TestServer_DeleteMessage(t *testing.T) {
	backend := &stubBackend{}
	_, _, url := newTestServer(t, "", backend)
	conn := dial(t, url, nil)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"id":     "r2",
		"action": ActionDeleteMessage,
		"params": map[string]string{"message_id": "100_7"},
	}))
	f := readFrame(t, conn)
	assert.Equal(t, FrameResult, f.Type)

	backend.mu.Lock()
	assert.Equal(t, []string{"100_7"}, backend.deleted)
	backend.mu.Unlock()

	backend.err = errors.New("message can't be deleted")
	require.NoError(t, conn.WriteJSON(map[string]any{
		"id":     "r3",
		"action": ActionDeleteMessage,
		"params": map[string]string{"message_id": "100_8"},
	}))
	f = readFrame(t, conn)
	assert.Equal(t, FrameError, f.Type)
	assert.Equal(t, "r3", f.ID)
	assert.Contains(t, f.Error, "can't be deleted")
}

func TestServer_UnknownActionAndBadJSON(t *testing.T) {
	_, _, url := newTestServer(t, "", &stubBackend{})
	conn := dial(t, url, nil)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"x","action":"mute_group"}`)))
	f := readFrame(t, conn)
	assert.Equal(t, FrameError, f.Type)
	assert.Contains(t, f.Error, "unknown action")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	f = readFrame(t, conn)
	assert.Equal(t, FrameError, f.Type)
	assert.Contains(t, f.Error, "invalid request")
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	h := NewHub()
	h.Broadcast(Frame{Type: FrameEvent})
	assert.Equal(t, 0, h.Clients())
	h.Close()
}
