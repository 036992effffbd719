package telegram

import (
	"context"
	"errors"
	"sync"

	"github.com/mymmrac/telego"
)

var errTransport = errors.New("transport failure")

// fakeBot records every request and answers with sequential message ids in
// chat 100. failAt makes the n-th request (1-based) fail.
type fakeBot struct {
	mu     sync.Mutex
	calls  []string
	params []any
	nextID int
	failAt int

	me     *telego.User
	chat   *telego.ChatFullInfo
	count  int
	admins []telego.ChatMember
	file   *telego.File
}

func newFakeBot() *fakeBot {
	return &fakeBot{
		nextID: 1,
		me:     &telego.User{ID: 99, IsBot: true, FirstName: "Bridge", Username: "bridge_bot"},
	}
}

func (f *fakeBot) record(method string, params any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
	f.params = append(f.params, params)
	if f.failAt == len(f.calls) {
		return errTransport
	}
	return nil
}

func (f *fakeBot) msg() telego.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := telego.Message{MessageID: f.nextID, Chat: telego.Chat{ID: 100}}
	f.nextID++
	return m
}

func (f *fakeBot) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBot) GetMe(ctx context.Context) (*telego.User, error) {
	if err := f.record("getMe", nil); err != nil {
		return nil, err
	}
	return f.me, nil
}

func (f *fakeBot) SendMessage(ctx context.Context, p *telego.SendMessageParams) (*telego.Message, error) {
	if err := f.record("sendMessage", p); err != nil {
		return nil, err
	}
	m := f.msg()
	return &m, nil
}

func (f *fakeBot) SendMediaGroup(ctx context.Context, p *telego.SendMediaGroupParams) ([]telego.Message, error) {
	if err := f.record("sendMediaGroup", p); err != nil {
		return nil, err
	}
	out := make([]telego.Message, 0, len(p.Media))
	for range p.Media {
		out = append(out, f.msg())
	}
	return out, nil
}

func (f *fakeBot) SendVenue(ctx context.Context, p *telego.SendVenueParams) (*telego.Message, error) {
	if err := f.record("sendVenue", p); err != nil {
		return nil, err
	}
	m := f.msg()
	return &m, nil
}

func (f *fakeBot) SendSticker(ctx context.Context, p *telego.SendStickerParams) (*telego.Message, error) {
	if err := f.record("sendSticker", p); err != nil {
		return nil, err
	}
	m := f.msg()
	return &m, nil
}

func (f *fakeBot) DeleteMessage(ctx context.Context, p *telego.DeleteMessageParams) error {
	return f.record("deleteMessage", p)
}

func (f *fakeBot) EditMessageText(ctx context.Context, p *telego.EditMessageTextParams) (*telego.Message, error) {
	if err := f.record("editMessageText", p); err != nil {
		return nil, err
	}
	return &telego.Message{MessageID: p.MessageID}, nil
}

func (f *fakeBot) EditMessageMedia(ctx context.Context, p *telego.EditMessageMediaParams) (*telego.Message, error) {
	if err := f.record("editMessageMedia", p); err != nil {
		return nil, err
	}
	return &telego.Message{MessageID: p.MessageID}, nil
}

func (f *fakeBot) SetMessageReaction(ctx context.Context, p *telego.SetMessageReactionParams) error {
	return f.record("setMessageReaction", p)
}

func (f *fakeBot) RestrictChatMember(ctx context.Context, p *telego.RestrictChatMemberParams) error {
	return f.record("restrictChatMember", p)
}

func (f *fakeBot) BanChatMember(ctx context.Context, p *telego.BanChatMemberParams) error {
	return f.record("banChatMember", p)
}

func (f *fakeBot) GetChat(ctx context.Context, p *telego.GetChatParams) (*telego.ChatFullInfo, error) {
	if err := f.record("getChat", p); err != nil {
		return nil, err
	}
	return f.chat, nil
}

func (f *fakeBot) GetChatMemberCount(ctx context.Context, p *telego.GetChatMemberCountParams) (*int, error) {
	if err := f.record("getChatMemberCount", p); err != nil {
		return nil, err
	}
	n := f.count
	return &n, nil
}

func (f *fakeBot) GetChatAdministrators(ctx context.Context, p *telego.GetChatAdministratorsParams) ([]telego.ChatMember, error) {
	if err := f.record("getChatAdministrators", p); err != nil {
		return nil, err
	}
	return f.admins, nil
}

func (f *fakeBot) GetFile(ctx context.Context, p *telego.GetFileParams) (*telego.File, error) {
	if err := f.record("getFile", p); err != nil {
		return nil, err
	}
	return f.file, nil
}

func (f *fakeBot) SetMyName(ctx context.Context, p *telego.SetMyNameParams) error {
	return f.record("setMyName", p)
}

func (f *fakeBot) SetMyDescription(ctx context.Context, p *telego.SetMyDescriptionParams) error {
	return f.record("setMyDescription", p)
}
