package telegram

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/mymmrac/telego"

	"github.com/tinyland-inc/telebridge/pkg/event"
	"github.com/tinyland-inc/telebridge/pkg/message"
)

// DefaultMuteDuration applies when a mute is requested without a duration.
const DefaultMuteDuration = 60 * time.Second

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Member is a chat member as listed by GetGroupMemberList.
type Member struct {
	User event.User `json:"user"`
	Role Role       `json:"role"`
}

type GroupProfile struct {
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
}

type UserProfile struct {
	Nickname  string `json:"nickname"`
	Signature string `json:"signature,omitempty"`
	Age       *int   `json:"age,omitempty"`
}

// BotProfile is a bot identity update. Empty fields are left unchanged.
type BotProfile struct {
	Nickname  string `json:"nickname,omitempty"`
	Signature string `json:"signature,omitempty"`
}

// RequestResponse answers a friend, join or invite request.
type RequestResponse struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason,omitempty"`
}

// DeleteMessage deletes the message addressed by id.
func (a *Adapter) DeleteMessage(ctx context.Context, id string) error {
	if err := gate(OpDeleteMessage); err != nil {
		return err
	}
	chat, msgID, err := message.DecodeNumericID(id)
	if err != nil {
		return fmt.Errorf("delete target: %w", err)
	}
	return a.api.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    chatID(chat),
		MessageID: msgID,
	})
}

// SetMessageReaction replaces the bot's reaction on a message with one
// emoji. An empty emoji clears it.
func (a *Adapter) SetMessageReaction(ctx context.Context, id, emoji string) error {
	if err := gate(OpSetMessageReaction); err != nil {
		return err
	}
	chat, msgID, err := message.DecodeNumericID(id)
	if err != nil {
		return fmt.Errorf("reaction target: %w", err)
	}
	params := &telego.SetMessageReactionParams{
		ChatID:    chatID(chat),
		MessageID: msgID,
	}
	if emoji != "" {
		params.Reaction = []telego.ReactionType{
			&telego.ReactionTypeEmoji{Type: telego.ReactionEmoji, Emoji: emoji},
		}
	}
	return a.api.SetMessageReaction(ctx, params)
}

// GetGroupMemberList returns the chat administrators. The Bot API exposes no
// listing of ordinary members.
func (a *Adapter) GetGroupMemberList(ctx context.Context, groupID string) ([]Member, error) {
	if err := gate(OpGetGroupMemberList); err != nil {
		return nil, err
	}
	admins, err := a.api.GetChatAdministrators(ctx, &telego.GetChatAdministratorsParams{ChatID: chatID(groupID)})
	if err != nil {
		return nil, err
	}
	members := make([]Member, 0, len(admins))
	for _, m := range admins {
		switch s := m.(type) {
		case *telego.ChatMemberOwner:
			members = append(members, Member{User: parseUser(s.User), Role: RoleOwner})
		case *telego.ChatMemberAdministrator:
			members = append(members, Member{User: parseUser(s.User), Role: RoleAdmin})
		}
	}
	return members, nil
}

func (a *Adapter) KickGroupMember(ctx context.Context, groupID, userID string) error {
	if err := gate(OpKickGroupMember); err != nil {
		return err
	}
	uid, err := parseUserID(userID)
	if err != nil {
		return fmt.Errorf("user id %q: %w", userID, err)
	}
	return a.api.BanChatMember(ctx, &telego.BanChatMemberParams{
		ChatID: chatID(groupID),
		UserID: uid,
	})
}

// MuteGroupMember restricts a member from sending anything until now plus d,
// or lifts the restriction when mute is false.
func (a *Adapter) MuteGroupMember(ctx context.Context, groupID, userID string, mute bool, d time.Duration) error {
	if err := gate(OpMuteGroupMember); err != nil {
		return err
	}
	uid, err := parseUserID(userID)
	if err != nil {
		return fmt.Errorf("user id %q: %w", userID, err)
	}
	params := &telego.RestrictChatMemberParams{
		ChatID:      chatID(groupID),
		UserID:      uid,
		Permissions: sendPermissions(!mute),
	}
	if mute {
		if d <= 0 {
			d = DefaultMuteDuration
		}
		params.UntilDate = a.now().Add(d).Unix()
	}
	return a.api.RestrictChatMember(ctx, params)
}

func sendPermissions(allowed bool) telego.ChatPermissions {
	v := func() *bool { b := allowed; return &b }
	return telego.ChatPermissions{
		CanSendMessages:       v(),
		CanSendAudios:         v(),
		CanSendDocuments:      v(),
		CanSendPhotos:         v(),
		CanSendVideos:         v(),
		CanSendVideoNotes:     v(),
		CanSendVoiceNotes:     v(),
		CanSendPolls:          v(),
		CanSendOtherMessages:  v(),
		CanAddWebPagePreviews: v(),
	}
}

func (a *Adapter) GetGroupProfile(ctx context.Context, groupID string) (GroupProfile, error) {
	if err := gate(OpGetGroupProfile); err != nil {
		return GroupProfile{}, err
	}
	chat, err := a.api.GetChat(ctx, &telego.GetChatParams{ChatID: chatID(groupID)})
	if err != nil {
		return GroupProfile{}, err
	}
	count, err := a.api.GetChatMemberCount(ctx, &telego.GetChatMemberCountParams{ChatID: chatID(groupID)})
	if err != nil {
		return GroupProfile{}, err
	}
	p := GroupProfile{Name: chat.Title}
	if count != nil {
		p.MemberCount = *count
	}
	return p, nil
}

// GetUserProfile reads a user's private chat. Age is derived from the birth
// year when the user shares one.
func (a *Adapter) GetUserProfile(ctx context.Context, userID string) (UserProfile, error) {
	if err := gate(OpGetUserProfile); err != nil {
		return UserProfile{}, err
	}
	chat, err := a.api.GetChat(ctx, &telego.GetChatParams{ChatID: chatID(userID)})
	if err != nil {
		return UserProfile{}, err
	}
	p := UserProfile{
		Nickname:  displayName(chat.Username, chat.FirstName, chat.LastName),
		Signature: chat.Bio,
	}
	if chat.Birthdate != nil && chat.Birthdate.Year != 0 {
		age := a.now().Year() - int(chat.Birthdate.Year)
		p.Age = &age
	}
	return p, nil
}

func (a *Adapter) SetBotProfile(ctx context.Context, profile BotProfile) error {
	if err := gate(OpSetBotProfile); err != nil {
		return err
	}
	if profile.Nickname != "" {
		if err := a.api.SetMyName(ctx, &telego.SetMyNameParams{Name: profile.Nickname}); err != nil {
			return err
		}
	}
	if profile.Signature != "" {
		if err := a.api.SetMyDescription(ctx, &telego.SetMyDescriptionParams{Description: profile.Signature}); err != nil {
			return err
		}
	}
	return nil
}

// GetBotProfile returns the cached bot identity.
func (a *Adapter) GetBotProfile(ctx context.Context) (event.User, error) {
	if err := gate(OpGetBotProfile); err != nil {
		return event.User{}, err
	}
	return a.Self(ctx)
}

// GetFileInfo resolves a file id to a download URL. The URL embeds the bot
// token and must not be shared.
func (a *Adapter) GetFileInfo(ctx context.Context, fileID string) (message.FileInfo, error) {
	if err := gate(OpGetFileInfo); err != nil {
		return message.FileInfo{}, err
	}
	f, err := a.api.GetFile(ctx, &telego.GetFileParams{FileID: fileID})
	if err != nil {
		return message.FileInfo{}, err
	}
	info := message.FileInfo{
		ID:   f.FileID,
		Size: int64(f.FileSize),
	}
	if f.FilePath != "" {
		info.Name = path.Base(f.FilePath)
		info.URI = a.apiURL + "/file/bot" + a.token + "/" + f.FilePath
	}
	return info, nil
}

// Operations below have no Bot API equivalent and always fail with an
// *UnsupportedError.

func (a *Adapter) GetMessageDetail(ctx context.Context, id string) (message.Message, error) {
	return message.Message{}, gate(OpGetMessageDetail)
}

func (a *Adapter) MuteGroup(ctx context.Context, groupID string, mute bool) error {
	return gate(OpMuteGroup)
}

func (a *Adapter) ChangeGroupAdmin(ctx context.Context, groupID, userID string, admin bool) error {
	return gate(OpChangeGroupAdmin)
}

func (a *Adapter) SetGroupMemberAlias(ctx context.Context, groupID, userID, alias string) error {
	return gate(OpSetGroupMemberAlias)
}

func (a *Adapter) SetGroupProfile(ctx context.Context, groupID string, profile GroupProfile) error {
	return gate(OpSetGroupProfile)
}

func (a *Adapter) GetGroupFileCount(ctx context.Context, groupID, folderID string) (int, error) {
	return 0, gate(OpGetGroupFileCount)
}

func (a *Adapter) GetGroupFsList(ctx context.Context, groupID, folderID string) ([]message.FileInfo, error) {
	return nil, gate(OpGetGroupFsList)
}

func (a *Adapter) DeleteGroupFile(ctx context.Context, groupID, fileID string) error {
	return gate(OpDeleteGroupFile)
}

func (a *Adapter) DeleteGroupFolder(ctx context.Context, groupID, folderID string) error {
	return gate(OpDeleteGroupFolder)
}

func (a *Adapter) CreateGroupFolder(ctx context.Context, groupID, name, parentID string) error {
	return gate(OpCreateGroupFolder)
}

func (a *Adapter) GetBotFriendList(ctx context.Context) ([]event.User, error) {
	return nil, gate(OpGetBotFriendList)
}

func (a *Adapter) GetBotGroupList(ctx context.Context) ([]event.Group, error) {
	return nil, gate(OpGetBotGroupList)
}

func (a *Adapter) HandleAddFriendRequest(ctx context.Context, requestID string, resp RequestResponse) error {
	return gate(OpHandleAddFriendRequest)
}

func (a *Adapter) HandleAddGroupRequest(ctx context.Context, requestID string, resp RequestResponse) error {
	return gate(OpHandleAddGroupRequest)
}

func (a *Adapter) HandleInviteGroupRequest(ctx context.Context, requestID string, resp RequestResponse) error {
	return gate(OpHandleInviteGroupRequest)
}

// Broadcast would send segs to every chat the bot is in.
func (a *Adapter) Broadcast(ctx context.Context, segs message.Segments) (SendResult, error) {
	return SendResult{}, gate(OpBroadcastAll)
}
