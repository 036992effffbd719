package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyland-inc/telebridge/pkg/message"
)

func TestGate_UnsupportedOperationsMakeNoCalls(t *testing.T) {
	ctx := context.Background()
	// Arguments are deliberately invalid: the gate runs before validation.
	calls := map[Operation]func(a *Adapter) error{
		OpGetMessageDetail: func(a *Adapter) error { _, err := a.GetMessageDetail(ctx, "bad"); return err },
		OpMuteGroup:        func(a *Adapter) error { return a.MuteGroup(ctx, "", true) },
		OpChangeGroupAdmin: func(a *Adapter) error { return a.ChangeGroupAdmin(ctx, "", "x", true) },
		OpSetGroupMemberAlias: func(a *Adapter) error {
			return a.SetGroupMemberAlias(ctx, "", "", "")
		},
		OpSetGroupProfile:   func(a *Adapter) error { return a.SetGroupProfile(ctx, "", GroupProfile{}) },
		OpGetGroupFileCount: func(a *Adapter) error { _, err := a.GetGroupFileCount(ctx, "", ""); return err },
		OpGetGroupFsList:    func(a *Adapter) error { _, err := a.GetGroupFsList(ctx, "", ""); return err },
		OpDeleteGroupFile:   func(a *Adapter) error { return a.DeleteGroupFile(ctx, "", "") },
		OpDeleteGroupFolder: func(a *Adapter) error { return a.DeleteGroupFolder(ctx, "", "") },
		OpCreateGroupFolder: func(a *Adapter) error { return a.CreateGroupFolder(ctx, "", "", "") },
		OpGetBotFriendList:  func(a *Adapter) error { _, err := a.GetBotFriendList(ctx); return err },
		OpGetBotGroupList:   func(a *Adapter) error { _, err := a.GetBotGroupList(ctx); return err },
		OpHandleAddFriendRequest: func(a *Adapter) error {
			return a.HandleAddFriendRequest(ctx, "", RequestResponse{Approve: true})
		},
		OpHandleAddGroupRequest: func(a *Adapter) error {
			return a.HandleAddGroupRequest(ctx, "", RequestResponse{})
		},
		OpHandleInviteGroupRequest: func(a *Adapter) error {
			return a.HandleInviteGroupRequest(ctx, "", RequestResponse{})
		},
		OpBroadcastAll: func(a *Adapter) error {
			_, err := a.Broadcast(ctx, message.Segments{message.Text{Content: "hi"}})
			return err
		},
	}

	ops := UnsupportedOperations()
	require.Len(t, ops, len(calls), "every unsupported operation needs a case")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			call, ok := calls[op]
			require.True(t, ok, "missing case for %s", op)

			bot := newFakeBot()
			err := call(NewAdapter(bot))

			assert.ErrorIs(t, err, ErrUnsupported)
			var ue *UnsupportedError
			require.True(t, errors.As(err, &ue))
			assert.Equal(t, op, ue.Operation)
			assert.Equal(t, unsupported[op], ue.Reason)
			assert.Equal(t, 0, bot.callCount())
			assert.False(t, Supports(op))
		})
	}
}

func TestGate_SupportedOperations(t *testing.T) {
	for _, op := range []Operation{OpSendMessage, OpDeleteMessage, OpEditMessage, OpGetFileInfo} {
		assert.True(t, Supports(op), string(op))
		assert.NoError(t, gate(op))
	}
}

func TestDeleteMessage(t *testing.T) {
	bot := newFakeBot()
	a := NewAdapter(bot)

	require.NoError(t, a.DeleteMessage(context.Background(), "-1001_42"))
	p := bot.params[0].(*telego.DeleteMessageParams)
	assert.Equal(t, int64(-1001), p.ChatID.ID)
	assert.Equal(t, 42, p.MessageID)

	err := a.DeleteMessage(context.Background(), "42")
	assert.ErrorIs(t, err, message.ErrFormat)
	assert.Equal(t, 1, bot.callCount())
}

func TestSetMessageReaction(t *testing.T) {
	bot := newFakeBot()
	a := NewAdapter(bot)

	require.NoError(t, a.SetMessageReaction(context.Background(), "5_6", "👍"))
	p := bot.params[0].(*telego.SetMessageReactionParams)
	require.Len(t, p.Reaction, 1)
	assert.Equal(t, "👍", ParseReaction(p.Reaction[0]))

	require.NoError(t, a.SetMessageReaction(context.Background(), "5_6", ""))
	assert.Empty(t, bot.params[1].(*telego.SetMessageReactionParams).Reaction)
}

func TestGetGroupMemberList(t *testing.T) {
	bot := newFakeBot()
	bot.admins = []telego.ChatMember{
		&telego.ChatMemberOwner{User: telego.User{ID: 1, Username: "boss"}},
		&telego.ChatMemberAdministrator{User: telego.User{ID: 2, FirstName: "Ann", LastName: "Lee"}},
	}
	a := NewAdapter(bot)

	members, err := a.GetGroupMemberList(context.Background(), "-100")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, RoleOwner, members[0].Role)
	assert.Equal(t, "boss", members[0].User.Nickname)
	assert.Equal(t, RoleAdmin, members[1].Role)
	assert.Equal(t, "Ann Lee", members[1].User.Nickname)
}

func TestKickGroupMember(t *testing.T) {
	bot := newFakeBot()
	a := NewAdapter(bot)

	require.NoError(t, a.KickGroupMember(context.Background(), "-100", "7"))
	p := bot.params[0].(*telego.BanChatMemberParams)
	assert.Equal(t, int64(7), p.UserID)

	assert.Error(t, a.KickGroupMember(context.Background(), "-100", "seven"))
	assert.Equal(t, 1, bot.callCount())
}

func TestMuteGroupMember(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	bot := newFakeBot()
	a := NewAdapter(bot, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	require.NoError(t, a.MuteGroupMember(ctx, "-100", "7", true, 0))
	p := bot.params[0].(*telego.RestrictChatMemberParams)
	assert.Equal(t, now.Add(DefaultMuteDuration).Unix(), p.UntilDate)
	require.NotNil(t, p.Permissions.CanSendMessages)
	assert.False(t, *p.Permissions.CanSendMessages)

	require.NoError(t, a.MuteGroupMember(ctx, "-100", "7", true, 5*time.Minute))
	assert.Equal(t, now.Add(5*time.Minute).Unix(), bot.params[1].(*telego.RestrictChatMemberParams).UntilDate)

	require.NoError(t, a.MuteGroupMember(ctx, "-100", "7", false, 0))
	p = bot.params[2].(*telego.RestrictChatMemberParams)
	assert.Zero(t, p.UntilDate)
	assert.True(t, *p.Permissions.CanSendPhotos)
}

func TestGetGroupProfile(t *testing.T) {
	bot := newFakeBot()
	bot.chat = &telego.ChatFullInfo{ID: -100, Title: "Gophers"}
	bot.count = 42
	a := NewAdapter(bot)

	p, err := a.GetGroupProfile(context.Background(), "-100")
	require.NoError(t, err)
	assert.Equal(t, GroupProfile{Name: "Gophers", MemberCount: 42}, p)
	assert.Equal(t, []string{"getChat", "getChatMemberCount"}, bot.calls)
}

func TestGetUserProfile(t *testing.T) {
	bot := newFakeBot()
	bot.chat = &telego.ChatFullInfo{
		ID:        7,
		FirstName: "Ann",
		LastName:  "Lee",
		Bio:       "hello",
		Birthdate: &telego.Birthdate{Day: 1, Month: 2, Year: 1990},
	}
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	a := NewAdapter(bot, WithClock(func() time.Time { return now }))

	p, err := a.GetUserProfile(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", p.Nickname)
	assert.Equal(t, "hello", p.Signature)
	require.NotNil(t, p.Age)
	assert.Equal(t, 34, *p.Age)
}

func TestBotProfile(t *testing.T) {
	bot := newFakeBot()
	a := NewAdapter(bot)
	ctx := context.Background()

	self, err := a.GetBotProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "99", self.ID)
	assert.Equal(t, "bridge_bot", self.Nickname)

	_, err = a.GetBotProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, bot.callCount(), "identity is fetched once per adapter")

	require.NoError(t, a.SetBotProfile(ctx, BotProfile{Signature: "relay"}))
	assert.Equal(t, []string{"getMe", "setMyDescription"}, bot.calls)
}

func TestGetFileInfo(t *testing.T) {
	bot := newFakeBot()
	bot.file = &telego.File{FileID: "abc", FileSize: 12, FilePath: "photos/file_1.jpg"}
	a := NewAdapter(bot, WithToken("T0K"), WithAPIURL("http://localhost:8081/"))

	info, err := a.GetFileInfo(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", info.ID)
	assert.Equal(t, "file_1.jpg", info.Name)
	assert.Equal(t, int64(12), info.Size)
	assert.Equal(t, "http://localhost:8081/file/botT0K/photos/file_1.jpg", info.URI)
}
