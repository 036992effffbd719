package telegram

import (
	"time"

	"github.com/mymmrac/telego"

	"github.com/tinyland-inc/telebridge/pkg/event"
	"github.com/tinyland-inc/telebridge/pkg/message"
)

// Normalize maps one update to canonical events, in a stable order. Update
// kinds without a canonical shape are wrapped in an AnyEvent rather than
// dropped. now anchors mute durations.
func Normalize(u telego.Update, now time.Time) []event.Event {
	switch {
	case u.Message != nil:
		return normalizeMessage(u.Message)
	case u.ChannelPost != nil:
		return normalizeMessage(u.ChannelPost)
	case u.EditedMessage != nil:
		return normalizeEdit(u.EditedMessage)
	case u.EditedChannelPost != nil:
		return normalizeEdit(u.EditedChannelPost)
	case u.MessageReaction != nil:
		return normalizeReaction(u.MessageReaction)
	case u.MyChatMember != nil:
		return normalizeMember(u.MyChatMember, true, now)
	case u.ChatMember != nil:
		return normalizeMember(u.ChatMember, false, now)
	case u.ChatJoinRequest != nil:
		return normalizeJoinRequest(u.ChatJoinRequest)
	}
	return []event.Event{wrapUnmodeled(u)}
}

func normalizeMessage(m *telego.Message) []event.Event {
	var events []event.Event
	group := parseGroup(m.Chat)

	if m.From != nil {
		t := time.Unix(m.Date, 0).UTC()
		msg := ParseMessage(m)
		events = append(events, &event.MessageEvent{
			ID:      msg.ID,
			Time:    &t,
			Sender:  parseUser(*m.From),
			Group:   groupOf(m.Chat),
			Message: msg,
		})
	}
	for _, member := range m.NewChatMembers {
		events = append(events, &event.MemberIncrease{
			Group:  group,
			User:   parseUser(member),
			Reason: event.IncreaseUnknown,
		})
	}
	if m.LeftChatMember != nil {
		events = append(events, &event.MemberDecrease{
			Group:  group,
			User:   parseUser(*m.LeftChatMember),
			Reason: event.DecreaseUnknown,
		})
	}
	return events
}

// The platform does not expose the content before an edit.
func normalizeEdit(m *telego.Message) []event.Event {
	if m.From == nil {
		return nil
	}
	msg := ParseMessage(m)
	return []event.Event{&event.MessageEdited{
		User:       parseUser(*m.From),
		Group:      groupOf(m.Chat),
		NewMessage: &msg,
	}}
}

func normalizeReaction(r *telego.MessageReactionUpdated) []event.Event {
	if r.User == nil {
		return nil
	}
	return []event.Event{&event.MessageReactions{
		User:      parseUser(*r.User),
		Group:     groupOf(r.Chat),
		Message:   message.Message{ID: message.EncodeNumericID(r.Chat.ID, r.MessageID)},
		Reactions: parseReactions(r.NewReaction),
	}}
}

func normalizeJoinRequest(r *telego.ChatJoinRequest) []event.Event {
	return []event.Event{&event.GroupAdd{
		ID:      message.EncodeNumericID(r.Chat.ID, int(r.UserChatID)),
		User:    parseUser(r.From),
		Group:   parseGroup(r.Chat),
		Message: r.Bio,
	}}
}

// memberTransition flattens a new chat member status into the facts the
// classification rule looks at.
type memberTransition struct {
	user       telego.User
	left       bool
	banned     bool
	restricted bool
	promoted   bool
	untilDate  int64
}

func transitionOf(m telego.ChatMember) memberTransition {
	switch s := m.(type) {
	case *telego.ChatMemberOwner:
		return memberTransition{user: s.User, promoted: true}
	case *telego.ChatMemberAdministrator:
		return memberTransition{user: s.User, promoted: true}
	case *telego.ChatMemberMember:
		return memberTransition{user: s.User}
	case *telego.ChatMemberRestricted:
		// A restricted user who is no longer a member has left the chat.
		return memberTransition{user: s.User, left: !s.IsMember, restricted: true, untilDate: s.UntilDate}
	case *telego.ChatMemberLeft:
		return memberTransition{user: s.User, left: true}
	case *telego.ChatMemberBanned:
		return memberTransition{user: s.User, banned: true, untilDate: s.UntilDate}
	}
	return memberTransition{}
}

// normalizeMember classifies a membership transition, first match wins:
// left, banned, restricted, promoted.
func normalizeMember(u *telego.ChatMemberUpdated, self bool, now time.Time) []event.Event {
	if u.NewChatMember == nil {
		return nil
	}
	t := transitionOf(u.NewChatMember)
	return classifyTransition(u.Chat, u.From, t, self, now)
}

func classifyTransition(chat telego.Chat, from telego.User, t memberTransition, self bool, now time.Time) []event.Event {
	group := parseGroup(chat)
	user := parseUser(t.user)
	operator := parseUser(from)

	switch {
	case t.left:
		if from.ID == t.user.ID {
			return []event.Event{&event.MemberDecrease{Group: group, User: user, Reason: event.DecreaseUnknown}}
		}
		return []event.Event{&event.MemberDecrease{Group: group, User: user, Reason: event.DecreaseKick, Operator: &operator}}
	case t.banned:
		if !self {
			return []event.Event{&event.MemberDecrease{Group: group, User: user, Reason: event.DecreaseKick, Operator: &operator}}
		}
		return []event.Event{muteChange(group, user, operator, t.untilDate, now)}
	case t.restricted:
		return []event.Event{muteChange(group, user, operator, t.untilDate, now)}
	case t.promoted:
		return []event.Event{&event.AdminChange{Group: group, User: user, Type: event.AdminSet}}
	}
	return nil
}

// muteChange builds a mute notice. An until date of zero means the platform
// reported no expiry; an expiry in the past yields a zero duration.
func muteChange(group event.Group, user, operator event.User, until int64, now time.Time) event.Event {
	e := &event.MemberMuteChange{
		Group:    group,
		User:     user,
		Operator: &operator,
		Type:     event.Mute,
	}
	if until != 0 {
		d := time.Unix(until, 0).Sub(now).Truncate(time.Second)
		if d < 0 {
			d = 0
		}
		e.Duration = &d
	}
	return e
}

// Stable kind names for updates wrapped in an AnyEvent.
const (
	AnyChatBoost               = "ChatBoost"
	AnyRemovedChatBoost        = "RemovedChatBoost"
	AnyMessageReactionCount    = "MessageReactionCount"
	AnyInlineQuery             = "InlineQuery"
	AnyChosenInlineResult      = "ChosenInlineResult"
	AnyCallbackQuery           = "CallbackQuery"
	AnyShippingQuery           = "ShippingQuery"
	AnyPreCheckoutQuery        = "PreCheckoutQuery"
	AnyPoll                    = "Poll"
	AnyPollAnswer              = "PollAnswer"
	AnyBusinessConnection      = "BusinessConnection"
	AnyBusinessMessage         = "BusinessMessage"
	AnyEditedBusinessMessage   = "EditedBusinessMessage"
	AnyDeletedBusinessMessages = "DeletedBusinessMessages"
	AnyUnknown                 = "Unknown"
)

func wrapUnmodeled(u telego.Update) event.Event {
	typ, payload := unmodeledPayload(u)
	return &event.AnyEvent{Platform: Platform, Type: typ, Payload: payload}
}

func unmodeledPayload(u telego.Update) (string, any) {
	switch {
	case u.ChatBoost != nil:
		return AnyChatBoost, u.ChatBoost
	case u.RemovedChatBoost != nil:
		return AnyRemovedChatBoost, u.RemovedChatBoost
	case u.MessageReactionCount != nil:
		return AnyMessageReactionCount, u.MessageReactionCount
	case u.InlineQuery != nil:
		return AnyInlineQuery, u.InlineQuery
	case u.ChosenInlineResult != nil:
		return AnyChosenInlineResult, u.ChosenInlineResult
	case u.CallbackQuery != nil:
		return AnyCallbackQuery, u.CallbackQuery
	case u.ShippingQuery != nil:
		return AnyShippingQuery, u.ShippingQuery
	case u.PreCheckoutQuery != nil:
		return AnyPreCheckoutQuery, u.PreCheckoutQuery
	case u.Poll != nil:
		return AnyPoll, u.Poll
	case u.PollAnswer != nil:
		return AnyPollAnswer, u.PollAnswer
	case u.BusinessConnection != nil:
		return AnyBusinessConnection, u.BusinessConnection
	case u.BusinessMessage != nil:
		return AnyBusinessMessage, u.BusinessMessage
	case u.EditedBusinessMessage != nil:
		return AnyEditedBusinessMessage, u.EditedBusinessMessage
	case u.DeletedBusinessMessages != nil:
		return AnyDeletedBusinessMessages, u.DeletedBusinessMessages
	}
	return AnyUnknown, u
}
