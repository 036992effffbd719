// Package event defines the canonical events produced by platform adapters.
//
// Event is a closed sum type: message events, notices, requests, and AnyEvent
// for platform payloads that have no canonical shape. Events are constructed
// once by a normalizer and never mutated afterwards.
package event

import (
	"time"

	"github.com/tinyland-inc/telebridge/pkg/message"
)

// Kind is the stable name of an event variant.
type Kind string

const (
	KindMessage          Kind = "message"
	KindMemberIncrease   Kind = "notice.member_increase"
	KindMemberDecrease   Kind = "notice.member_decrease"
	KindMemberMuteChange Kind = "notice.member_mute_change"
	KindAdminChange      Kind = "notice.admin_change"
	KindMessageEdited    Kind = "notice.message_edited"
	KindMessageReactions Kind = "notice.message_reactions"
	KindGroupAdd         Kind = "request.group_add"
	KindAny              Kind = "any"
)

type Event interface {
	Kind() Kind
	isEvent()
}

// User is a platform account as seen by the bot.
type User struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname,omitempty"`
}

// Group is a multi-user chat. Private chats have no Group.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// MessageEvent is a newly received message.
type MessageEvent struct {
	ID      string          `json:"id"`
	Time    *time.Time      `json:"time,omitempty"`
	Sender  User            `json:"sender"`
	Group   *Group          `json:"group,omitempty"`
	Message message.Message `json:"message"`
}

type IncreaseReason string

const (
	IncreaseUnknown IncreaseReason = "unknown"
	IncreaseInvite  IncreaseReason = "invite"
	IncreaseApprove IncreaseReason = "approve"
)

type MemberIncrease struct {
	Group  Group          `json:"group"`
	User   User           `json:"user"`
	Reason IncreaseReason `json:"reason"`
}

type DecreaseReason string

const (
	DecreaseUnknown DecreaseReason = "unknown"
	DecreaseLeave   DecreaseReason = "leave"
	DecreaseKick    DecreaseReason = "kick"
)

type MemberDecrease struct {
	Group    Group          `json:"group"`
	User     User           `json:"user"`
	Reason   DecreaseReason `json:"reason"`
	Operator *User          `json:"operator,omitempty"` // set for kicks when known
}

type MuteType string

const (
	Mute   MuteType = "mute"
	Unmute MuteType = "unmute"
)

// MemberMuteChange reports a mute. A nil Duration means the mute has no
// expiry.
type MemberMuteChange struct {
	Group    Group          `json:"group"`
	User     User           `json:"user"`
	Operator *User          `json:"operator,omitempty"`
	Type     MuteType       `json:"type"`
	Duration *time.Duration `json:"duration,omitempty"`
}

type AdminChangeType string

const (
	AdminSet   AdminChangeType = "set"
	AdminUnset AdminChangeType = "unset"
)

type AdminChange struct {
	Group Group           `json:"group"`
	User  User            `json:"user"`
	Type  AdminChangeType `json:"type"`
}

// MessageEdited carries the new content of an edited message. OldMessage is
// set only on platforms that expose prior content.
type MessageEdited struct {
	User       User             `json:"user"`
	Group      *Group           `json:"group,omitempty"`
	Operator   *User            `json:"operator,omitempty"`
	NewMessage *message.Message `json:"new_message,omitempty"`
	OldMessage *message.Message `json:"old_message,omitempty"`
}

// MessageReactions lists the reactions a user currently has on a message, in
// platform order.
type MessageReactions struct {
	User      User            `json:"user"`
	Group     *Group          `json:"group,omitempty"`
	Message   message.Message `json:"message"`
	Reactions []string        `json:"reactions"`
}

// GroupAdd is a request to join a group. ID addresses the request when it is
// answered.
type GroupAdd struct {
	ID      string `json:"id"`
	User    User   `json:"user"`
	Group   Group  `json:"group"`
	Message string `json:"message,omitempty"`
}

// AnyEvent wraps a platform payload that has no canonical event. Type is a
// stable name for the payload kind; Payload is the untouched platform value.
type AnyEvent struct {
	Platform string `json:"platform"`
	Type     string `json:"type"`
	Payload  any    `json:"payload"`
}

func (*MessageEvent) Kind() Kind     { return KindMessage }
func (*MemberIncrease) Kind() Kind   { return KindMemberIncrease }
func (*MemberDecrease) Kind() Kind   { return KindMemberDecrease }
func (*MemberMuteChange) Kind() Kind { return KindMemberMuteChange }
func (*AdminChange) Kind() Kind      { return KindAdminChange }
func (*MessageEdited) Kind() Kind    { return KindMessageEdited }
func (*MessageReactions) Kind() Kind { return KindMessageReactions }
func (*GroupAdd) Kind() Kind         { return KindGroupAdd }
func (*AnyEvent) Kind() Kind         { return KindAny }

func (*MessageEvent) isEvent()     {}
func (*MemberIncrease) isEvent()   {}
func (*MemberDecrease) isEvent()   {}
func (*MemberMuteChange) isEvent() {}
func (*AdminChange) isEvent()      {}
func (*MessageEdited) isEvent()    {}
func (*MessageReactions) isEvent() {}
func (*GroupAdd) isEvent()         {}
func (*AnyEvent) isEvent()         {}

// IsNotice reports whether k is one of the notice variants.
func (k Kind) IsNotice() bool {
	switch k {
	case KindMemberIncrease, KindMemberDecrease, KindMemberMuteChange,
		KindAdminChange, KindMessageEdited, KindMessageReactions:
		return true
	}
	return false
}

// IsRequest reports whether k is one of the request variants.
func (k Kind) IsRequest() bool { return k == KindGroupAdd }

// PayloadAs returns the AnyEvent payload as T when the event carries one.
func PayloadAs[T any](e *AnyEvent) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	v, ok := e.Payload.(T)
	return v, ok
}
