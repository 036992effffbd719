package telegram

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mymmrac/telego"

	"github.com/tinyland-inc/telebridge/pkg/event"
)

// DefaultAPIURL is the public Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// BotAPI is the subset of *telego.Bot the adapter issues requests through.
type BotAPI interface {
	GetMe(ctx context.Context) (*telego.User, error)
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
	SendMediaGroup(ctx context.Context, params *telego.SendMediaGroupParams) ([]telego.Message, error)
	SendVenue(ctx context.Context, params *telego.SendVenueParams) (*telego.Message, error)
	SendSticker(ctx context.Context, params *telego.SendStickerParams) (*telego.Message, error)
	DeleteMessage(ctx context.Context, params *telego.DeleteMessageParams) error
	EditMessageText(ctx context.Context, params *telego.EditMessageTextParams) (*telego.Message, error)
	EditMessageMedia(ctx context.Context, params *telego.EditMessageMediaParams) (*telego.Message, error)
	SetMessageReaction(ctx context.Context, params *telego.SetMessageReactionParams) error
	RestrictChatMember(ctx context.Context, params *telego.RestrictChatMemberParams) error
	BanChatMember(ctx context.Context, params *telego.BanChatMemberParams) error
	GetChat(ctx context.Context, params *telego.GetChatParams) (*telego.ChatFullInfo, error)
	GetChatMemberCount(ctx context.Context, params *telego.GetChatMemberCountParams) (*int, error)
	GetChatAdministrators(ctx context.Context, params *telego.GetChatAdministratorsParams) ([]telego.ChatMember, error)
	GetFile(ctx context.Context, params *telego.GetFileParams) (*telego.File, error)
	SetMyName(ctx context.Context, params *telego.SetMyNameParams) error
	SetMyDescription(ctx context.Context, params *telego.SetMyDescriptionParams) error
}

var _ BotAPI = (*telego.Bot)(nil)

// Adapter translates canonical operations into Bot API requests. It holds no
// state besides the bot identity, which is fetched once per instance.
type Adapter struct {
	api    BotAPI
	token  string
	apiURL string
	now    func() time.Time

	selfMu sync.Mutex
	self   *event.User
}

type Option func(*Adapter)

// WithToken sets the bot token used to build file download URLs.
func WithToken(token string) Option {
	return func(a *Adapter) { a.token = token }
}

func WithAPIURL(url string) Option {
	return func(a *Adapter) {
		if url != "" {
			a.apiURL = strings.TrimRight(url, "/")
		}
	}
}

// WithClock replaces time.Now for mute expiry computations.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

func NewAdapter(api BotAPI, opts ...Option) *Adapter {
	a := &Adapter{
		api:    api,
		apiURL: DefaultAPIURL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Self returns the bot's own identity, calling getMe on first use.
func (a *Adapter) Self(ctx context.Context) (event.User, error) {
	a.selfMu.Lock()
	defer a.selfMu.Unlock()

	if a.self != nil {
		return *a.self, nil
	}
	me, err := a.api.GetMe(ctx)
	if err != nil {
		return event.User{}, err
	}
	u := parseUser(*me)
	a.self = &u
	return u, nil
}

// Normalize converts one update into canonical events using the adapter
// clock.
func (a *Adapter) Normalize(update telego.Update) []event.Event {
	return Normalize(update, a.now())
}

// chatID converts a chat scope to a platform chat address. Numeric scopes
// are chat ids, anything else is treated as a @username.
func chatID(scope string) telego.ChatID {
	if id, err := strconv.ParseInt(scope, 10, 64); err == nil {
		return telego.ChatID{ID: id}
	}
	if !strings.HasPrefix(scope, "@") {
		scope = "@" + scope
	}
	return telego.ChatID{Username: scope}
}

func parseUserID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}
