package telegram

import (
	"strconv"
	"strings"

	"github.com/mymmrac/telego"

	"github.com/tinyland-inc/telebridge/pkg/event"
	"github.com/tinyland-inc/telebridge/pkg/logger"
	"github.com/tinyland-inc/telebridge/pkg/message"
)

// Platform is the platform name stamped on AnyEvents.
const Platform = "telegram"

func parseUser(u telego.User) event.User {
	return event.User{
		ID:       strconv.FormatInt(u.ID, 10),
		Nickname: displayName(u.Username, u.FirstName, u.LastName),
	}
}

func parseGroup(c telego.Chat) event.Group {
	return event.Group{
		ID:   strconv.FormatInt(c.ID, 10),
		Name: c.Title,
	}
}

// groupOf returns nil for private chats.
func groupOf(c telego.Chat) *event.Group {
	if c.Type == telego.ChatTypePrivate {
		return nil
	}
	g := parseGroup(c)
	return &g
}

// displayName prefers the @username and falls back to "first last".
func displayName(username, first, last string) string {
	if username != "" {
		return username
	}
	return strings.TrimSpace(first + " " + last)
}

// ParseMessage converts a platform message to canonical segments. Content
// kinds with no canonical form are logged and skipped.
func ParseMessage(m *telego.Message) message.Message {
	var segs message.Segments

	if m.Text != "" {
		segs = append(segs, message.Text{Content: m.Text})
	}
	segs = appendEntities(segs, m.Entities)

	if p := largestPhoto(m.Photo); p != nil {
		segs = append(segs, parsePhoto(*p))
	}
	if m.Animation != nil {
		segs = append(segs, parseAnimation(m.Animation))
	}
	if m.Audio != nil {
		segs = append(segs, parseAudio(m.Audio))
	}
	if m.Video != nil {
		segs = append(segs, parseVideo(m.Video))
	}
	// Animations are mirrored into Document by the platform.
	if m.Document != nil && m.Animation == nil {
		segs = append(segs, parseDocument(m.Document))
	}
	if m.PaidMedia != nil {
		skipInbound(m, "paid media")
	}
	if m.Sticker != nil {
		segs = append(segs, parseSticker(m.Sticker))
	}
	if m.Story != nil {
		skipInbound(m, "story")
	}
	if m.VideoNote != nil {
		skipInbound(m, "video note")
	}
	if m.Voice != nil {
		segs = append(segs, parseVoice(m.Voice))
	}

	if m.Caption != "" {
		segs = append(segs, message.Text{Content: m.Caption})
	}
	segs = appendEntities(segs, m.CaptionEntities)

	if m.Contact != nil {
		skipInbound(m, "contact")
	}
	if m.Venue != nil {
		segs = append(segs, parseVenue(m.Venue))
	} else if m.Location != nil {
		segs = append(segs, parseLocation(m.Location))
	}

	return message.Message{
		ID:       message.EncodeNumericID(m.Chat.ID, m.MessageID),
		Segments: segs,
	}
}

func skipInbound(m *telego.Message, kind string) {
	logger.DebugCF("telegram", "Inbound content not supported", map[string]any{
		"kind":       kind,
		"chat_id":    m.Chat.ID,
		"message_id": m.MessageID,
	})
}

func appendEntities(segs message.Segments, entities []telego.MessageEntity) message.Segments {
	for _, e := range entities {
		if seg, ok := ParseEntity(e); ok {
			segs = append(segs, seg)
		}
	}
	return segs
}

// ParseEntity maps the entity kinds that carry information beyond the text
// itself: text mentions become At, text links become their URL.
func ParseEntity(e telego.MessageEntity) (message.Segment, bool) {
	switch e.Type {
	case telego.EntityTypeTextMention:
		if e.User == nil {
			return nil, false
		}
		return message.At{UserID: strconv.FormatInt(e.User.ID, 10)}, true
	case telego.EntityTypeTextLink:
		return message.Text{Content: e.URL}, true
	}
	return nil, false
}

// ParseReaction returns the canonical reaction string: the emoji itself, the
// custom emoji id, or "paid".
func ParseReaction(r telego.ReactionType) string {
	switch rt := r.(type) {
	case *telego.ReactionTypeEmoji:
		return rt.Emoji
	case *telego.ReactionTypeCustomEmoji:
		return rt.CustomEmojiID
	case *telego.ReactionTypePaid:
		return "paid"
	}
	return ""
}

func parseReactions(rs []telego.ReactionType) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, ParseReaction(r))
	}
	return out
}

func largestPhoto(sizes []telego.PhotoSize) *telego.PhotoSize {
	var best *telego.PhotoSize
	for i := range sizes {
		if best == nil || sizes[i].Width*sizes[i].Height > best.Width*best.Height {
			best = &sizes[i]
		}
	}
	return best
}

func parsePhoto(p telego.PhotoSize) message.Segment {
	return message.Image{File: &message.FileInfo{
		ID:   p.FileID,
		Name: p.FileID,
		Size: int64(p.FileSize),
	}}
}

func parseAnimation(a *telego.Animation) message.Segment {
	return message.Video{
		File:   &message.FileInfo{ID: a.FileID, Name: a.FileName, Mime: a.MimeType, Size: int64(a.FileSize)},
		Length: a.Duration,
	}
}

func parseAudio(a *telego.Audio) message.Segment {
	return message.Audio{
		File:   &message.FileInfo{ID: a.FileID, Name: a.FileName, Mime: a.MimeType, Size: int64(a.FileSize)},
		Length: a.Duration,
	}
}

func parseVideo(v *telego.Video) message.Segment {
	return message.Video{
		File:   &message.FileInfo{ID: v.FileID, Name: v.FileName, Mime: v.MimeType, Size: int64(v.FileSize)},
		Length: v.Duration,
	}
}

func parseDocument(d *telego.Document) message.Segment {
	return message.File{File: &message.FileInfo{
		ID:   d.FileID,
		Name: d.FileName,
		Mime: d.MimeType,
		Size: int64(d.FileSize),
	}}
}

// Stickers surface as images named by their emoji.
func parseSticker(s *telego.Sticker) message.Segment {
	name := s.Emoji
	if name == "" {
		name = "sticker"
	}
	return message.Image{File: &message.FileInfo{ID: s.FileID, Name: name, Size: int64(s.FileSize)}}
}

func parseVoice(v *telego.Voice) message.Segment {
	return message.Audio{
		File:   &message.FileInfo{ID: v.FileID, Name: v.FileID, Mime: v.MimeType, Size: int64(v.FileSize)},
		Length: v.Duration,
	}
}

func parseVenue(v *telego.Venue) message.Segment {
	return message.Location{
		Latitude:  v.Location.Latitude,
		Longitude: v.Location.Longitude,
		Title:     v.Title,
		Content:   v.Address,
	}
}

func parseLocation(l *telego.Location) message.Segment {
	return message.Location{Latitude: l.Latitude, Longitude: l.Longitude}
}
