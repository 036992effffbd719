package telegram

import "sort"

// Operation names a canonical bot operation.
type Operation string

const (
	OpSendMessage              Operation = "send_message"
	OpDeleteMessage            Operation = "delete_message"
	OpEditMessage              Operation = "edit_message"
	OpGetMessageDetail         Operation = "get_message_detail"
	OpSetMessageReaction       Operation = "set_message_reaction"
	OpGetGroupMemberList       Operation = "get_group_member_list"
	OpKickGroupMember          Operation = "kick_group_member"
	OpMuteGroup                Operation = "mute_group"
	OpMuteGroupMember          Operation = "mute_group_member"
	OpChangeGroupAdmin         Operation = "change_group_admin"
	OpSetGroupMemberAlias      Operation = "set_group_member_alias"
	OpGetGroupProfile          Operation = "get_group_profile"
	OpSetGroupProfile          Operation = "set_group_profile"
	OpGetGroupFileCount        Operation = "get_group_file_count"
	OpGetGroupFsList           Operation = "get_group_fs_list"
	OpDeleteGroupFile          Operation = "delete_group_file"
	OpDeleteGroupFolder        Operation = "delete_group_folder"
	OpCreateGroupFolder        Operation = "create_group_folder"
	OpGetUserProfile           Operation = "get_user_profile"
	OpSetBotProfile            Operation = "set_bot_profile"
	OpGetBotProfile            Operation = "get_bot_profile"
	OpGetBotFriendList         Operation = "get_bot_friend_list"
	OpGetBotGroupList          Operation = "get_bot_group_list"
	OpHandleAddFriendRequest   Operation = "handle_add_friend_request"
	OpHandleAddGroupRequest    Operation = "handle_add_group_request"
	OpHandleInviteGroupRequest Operation = "handle_invite_group_request"
	OpGetFileInfo              Operation = "get_file_info"
	OpBroadcastAll             Operation = "broadcast_all"
)

// unsupported is the capability table: operations with no Bot API
// equivalent and the fixed reason reported for each.
var unsupported = map[Operation]string{
	OpGetMessageDetail:         "Telegram doesn't support get message by message_id",
	OpMuteGroup:                "Telegram doesn't support mute whole group",
	OpChangeGroupAdmin:         "Telegram doesn't support change group admin",
	OpSetGroupMemberAlias:      "Telegram doesn't support set group member alias",
	OpSetGroupProfile:          "Telegram doesn't support set group profile",
	OpGetGroupFileCount:        "Telegram doesn't support get group file count",
	OpGetGroupFsList:           "Telegram doesn't support get group file system list",
	OpDeleteGroupFile:          "Telegram doesn't support delete group file",
	OpDeleteGroupFolder:        "Telegram doesn't support delete group folder",
	OpCreateGroupFolder:        "Telegram doesn't support create group folder",
	OpGetBotFriendList:         "Telegram doesn't support get bot friend list",
	OpGetBotGroupList:          "Telegram doesn't support get bot group list",
	OpHandleAddFriendRequest:   "Telegram doesn't support handle add friend request",
	OpHandleAddGroupRequest:    "Telegram doesn't support handle add group request",
	OpHandleInviteGroupRequest: "Telegram doesn't support handle invite group request",
	OpBroadcastAll:             "Telegram doesn't support broadcast to all chats",
}

// gate rejects operations listed in the capability table. It must run before
// any argument validation or request construction.
func gate(op Operation) error {
	if reason, ok := unsupported[op]; ok {
		return &UnsupportedError{Operation: op, Reason: reason}
	}
	return nil
}

// Supports reports whether op has a Bot API equivalent.
func Supports(op Operation) bool {
	_, ok := unsupported[op]
	return !ok
}

// UnsupportedOperations lists the capability table in name order.
func UnsupportedOperations() []Operation {
	ops := make([]Operation, 0, len(unsupported))
	for op := range unsupported {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}
