package message

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// IDSeparator joins the chat scope and the message scope of a composite id.
const IDSeparator = "_"

// ErrFormat is returned when a composite id cannot be decoded.
var ErrFormat = errors.New("malformed composite id")

// EncodeID binds a chat scope and a message scope into one opaque id.
// Components are not validated; a component containing IDSeparator will not
// survive DecodeID.
func EncodeID(chatScope, messageScope string) string {
	return chatScope + IDSeparator + messageScope
}

// DecodeID splits a composite id back into its chat and message scopes.
// Ids with fewer or more than two parts are rejected.
func DecodeID(id string) (chatScope, messageScope string, err error) {
	parts := strings.Split(id, IDSeparator)
	switch {
	case len(parts) < 2:
		return "", "", fmt.Errorf("%w: %q has no %q separator", ErrFormat, id, IDSeparator)
	case len(parts) > 2:
		return "", "", fmt.Errorf("%w: %q has %d parts, want 2", ErrFormat, id, len(parts))
	}
	return parts[0], parts[1], nil
}

// EncodeNumericID is EncodeID for platforms with integer chat and message ids.
func EncodeNumericID(chatID int64, messageID int) string {
	return EncodeID(strconv.FormatInt(chatID, 10), strconv.Itoa(messageID))
}

// DecodeNumericID decodes an id produced by EncodeNumericID. The chat scope is
// returned as-is so that @username chat scopes keep working.
func DecodeNumericID(id string) (chatScope string, messageID int, err error) {
	chatScope, scope, err := DecodeID(id)
	if err != nil {
		return "", 0, err
	}
	messageID, err = strconv.Atoi(scope)
	if err != nil {
		return "", 0, fmt.Errorf("%w: message scope %q is not an integer", ErrFormat, scope)
	}
	return chatScope, messageID, nil
}
