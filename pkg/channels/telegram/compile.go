package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/tinyland-inc/telebridge/pkg/message"
)

// MaxMediaGroup is the largest media group the platform accepts in one
// request.
const MaxMediaGroup = 10

type venue struct {
	latitude  float64
	longitude float64
	title     string
	address   string
}

// partition holds segments split by class, each class keeping input order.
type partition struct {
	texts      []string
	media      []telego.InputMedia
	mediaTypes []message.SegmentType
	reply      string
	mentions   []int64
	venues     []venue
	stickers   []string
	warnings   []Warning
}

func (p *partition) warn(seg message.SegmentType, format string, args ...any) {
	p.warnings = append(p.warnings, Warning{Segment: string(seg), Reason: fmt.Sprintf(format, args...)})
}

func (p *partition) joinedText() string {
	return strings.Join(p.texts, "\n")
}

// mentionText prefixes the joined text with one label per mention, so that
// every text_mention entity covers at least one visible character. Labels
// are ASCII, so byte offsets equal UTF-16 offsets.
func (p *partition) mentionText() (string, []telego.MessageEntity) {
	text := p.joinedText()
	if len(p.mentions) == 0 {
		return text, nil
	}
	var sb strings.Builder
	entities := make([]telego.MessageEntity, 0, len(p.mentions))
	for i, id := range p.mentions {
		if i > 0 {
			sb.WriteByte(' ')
		}
		label := strconv.FormatInt(id, 10)
		entities = append(entities, telego.MessageEntity{
			Type:   telego.EntityTypeTextMention,
			Offset: sb.Len(),
			Length: len(label),
			User:   &telego.User{ID: id},
		})
		sb.WriteString(label)
	}
	if text != "" {
		sb.WriteByte(' ')
		sb.WriteString(text)
	}
	return sb.String(), entities
}

func partitionSegments(segs message.Segments) *partition {
	p := &partition{}
	for _, seg := range segs {
		switch s := seg.(type) {
		case nil:
			continue
		case message.Text:
			p.texts = append(p.texts, s.Content)
		case message.Image:
			p.addMedia(s.Type(), s.File, func(f telego.InputFile) telego.InputMedia { return tu.MediaPhoto(f) })
		case message.Video:
			p.addMedia(s.Type(), s.File, func(f telego.InputFile) telego.InputMedia { return tu.MediaVideo(f) })
		case message.Audio:
			p.addMedia(s.Type(), s.File, func(f telego.InputFile) telego.InputMedia { return tu.MediaAudio(f) })
		case message.File:
			p.addMedia(s.Type(), s.File, func(f telego.InputFile) telego.InputMedia { return tu.MediaDocument(f) })
		case message.Share:
			p.addShare(s)
		case message.Reply:
			if p.reply != "" {
				p.warn(s.Type(), "only the first reply target is used, dropped %q", s.MessageID)
				continue
			}
			p.reply = s.MessageID
		case message.At:
			id, err := parseUserID(s.UserID)
			if err != nil {
				p.warn(s.Type(), "invalid user id %q for mention", s.UserID)
				continue
			}
			p.mentions = append(p.mentions, id)
		case message.Location:
			p.venues = append(p.venues, venue{
				latitude:  s.Latitude,
				longitude: s.Longitude,
				title:     s.Title,
				address:   s.Content,
			})
		case message.Emoji:
			p.stickers = append(p.stickers, s.ID)
		default:
			p.warn(seg.Type(), "not supported in telegram")
		}
	}
	return p
}

func (p *partition) addMedia(seg message.SegmentType, fi *message.FileInfo, build func(telego.InputFile) telego.InputMedia) {
	f, ok := inputFile(fi)
	if !ok {
		p.warn(seg, "no file id or uri")
		return
	}
	p.media = append(p.media, build(f))
	p.mediaTypes = append(p.mediaTypes, seg)
}

// addShare sends a share with an image as a captioned photo and any other
// share as a text fragment.
func (p *partition) addShare(s message.Share) {
	caption := s.Title
	if s.Content != "" {
		caption += "\n" + s.Content
	}
	if s.Image == nil {
		p.texts = append(p.texts, caption+"\n"+s.URL)
		return
	}
	f, ok := inputFile(s.Image)
	if !ok {
		p.warn(s.Type(), "no file id or uri for share image")
		p.texts = append(p.texts, caption+"\n"+s.URL)
		return
	}
	photo := tu.MediaPhoto(f)
	photo.Caption = caption
	p.media = append(p.media, photo)
	p.mediaTypes = append(p.mediaTypes, s.Type())
}

// inputFile prefers an already uploaded file id over a uri.
func inputFile(fi *message.FileInfo) (telego.InputFile, bool) {
	switch {
	case fi == nil:
		return telego.InputFile{}, false
	case fi.ID != "":
		return tu.FileFromID(fi.ID), true
	case fi.URI != "":
		return tu.FileFromURL(fi.URI), true
	}
	return telego.InputFile{}, false
}

func setCaption(m telego.InputMedia, caption string) {
	switch v := m.(type) {
	case *telego.InputMediaPhoto:
		v.Caption = caption
	case *telego.InputMediaVideo:
		v.Caption = caption
	case *telego.InputMediaAudio:
		v.Caption = caption
	case *telego.InputMediaDocument:
		v.Caption = caption
	case *telego.InputMediaAnimation:
		v.Caption = caption
	}
}

// replyTo decodes a reply target. An undecodable target is an error.
func replyTo(id string) (*telego.ReplyParameters, error) {
	if id == "" {
		return nil, nil
	}
	chat, msgID, err := message.DecodeNumericID(id)
	if err != nil {
		return nil, fmt.Errorf("reply target: %w", err)
	}
	return &telego.ReplyParameters{MessageID: msgID, ChatID: chatID(chat)}, nil
}

// outboundCall is one platform request of a compiled send.
type outboundCall interface {
	method() string
	do(ctx context.Context, api BotAPI) ([]telego.Message, error)
}

type textCall struct{ params *telego.SendMessageParams }

func (textCall) method() string { return "sendMessage" }

func (c textCall) do(ctx context.Context, api BotAPI) ([]telego.Message, error) {
	m, err := api.SendMessage(ctx, c.params)
	if err != nil {
		return nil, err
	}
	return []telego.Message{*m}, nil
}

type mediaGroupCall struct{ params *telego.SendMediaGroupParams }

func (mediaGroupCall) method() string { return "sendMediaGroup" }

func (c mediaGroupCall) do(ctx context.Context, api BotAPI) ([]telego.Message, error) {
	return api.SendMediaGroup(ctx, c.params)
}

type venueCall struct{ params *telego.SendVenueParams }

func (venueCall) method() string { return "sendVenue" }

func (c venueCall) do(ctx context.Context, api BotAPI) ([]telego.Message, error) {
	m, err := api.SendVenue(ctx, c.params)
	if err != nil {
		return nil, err
	}
	return []telego.Message{*m}, nil
}

type stickerCall struct{ params *telego.SendStickerParams }

func (stickerCall) method() string { return "sendSticker" }

func (c stickerCall) do(ctx context.Context, api BotAPI) ([]telego.Message, error) {
	m, err := api.SendSticker(ctx, c.params)
	if err != nil {
		return nil, err
	}
	return []telego.Message{*m}, nil
}

// compileSend turns segments into the ordered requests of one logical send:
// the text or media part first, then one request per venue, then one per
// sticker. Every request carries the reply target.
func compileSend(segs message.Segments, chatScope string) ([]outboundCall, []Warning, error) {
	p := partitionSegments(segs)
	reply, err := replyTo(p.reply)
	if err != nil {
		return nil, p.warnings, err
	}
	chat := chatID(chatScope)
	text, entities := p.mentionText()

	var calls []outboundCall
	sendText := func() {
		calls = append(calls, textCall{&telego.SendMessageParams{
			ChatID:          chat,
			Text:            text,
			Entities:        entities,
			ReplyParameters: reply,
		}})
	}

	switch {
	case len(p.media) == 0:
		// Empty text is never sent on its own.
		if text != "" {
			sendText()
		}
	case len(entities) > 0:
		// Grouped media cannot carry entities, so the text goes first and
		// the batch goes out uncaptioned.
		sendText()
		for _, m := range p.media {
			setCaption(m, "")
		}
	default:
		if text != "" {
			setCaption(p.media[len(p.media)-1], text)
		}
	}

	for start := 0; start < len(p.media); start += MaxMediaGroup {
		end := min(start+MaxMediaGroup, len(p.media))
		calls = append(calls, mediaGroupCall{&telego.SendMediaGroupParams{
			ChatID:          chat,
			Media:           p.media[start:end],
			ReplyParameters: reply,
		}})
	}

	for _, v := range p.venues {
		calls = append(calls, venueCall{&telego.SendVenueParams{
			ChatID:          chat,
			Latitude:        v.latitude,
			Longitude:       v.longitude,
			Title:           v.title,
			Address:         v.address,
			ReplyParameters: reply,
		}})
	}

	for _, id := range p.stickers {
		calls = append(calls, stickerCall{&telego.SendStickerParams{
			ChatID:          chat,
			Sticker:         tu.FileFromID(id),
			ReplyParameters: reply,
		}})
	}

	if len(calls) == 0 {
		return nil, p.warnings, ErrEmptyMessage
	}
	return calls, p.warnings, nil
}

// editRequest is either a text edit or a media edit, never both.
type editRequest struct {
	text  *telego.EditMessageTextParams
	media *telego.EditMessageMediaParams
}

// compileEdit builds the single request that replaces a message's content.
// Only one media item can be edited; extra items are dropped with a warning.
func compileEdit(segs message.Segments, chatScope string, msgID int) (editRequest, []Warning) {
	p := partitionSegments(segs)
	chat := chatID(chatScope)

	if p.reply != "" {
		p.warn(message.TypeReply, "reply target cannot be changed by an edit")
	}
	if len(p.venues) > 0 {
		p.warn(message.TypeLocation, "locations cannot be added by an edit")
	}
	if len(p.stickers) > 0 {
		p.warn(message.TypeEmoji, "stickers cannot be added by an edit")
	}

	if len(p.media) == 0 {
		text, entities := p.mentionText()
		return editRequest{text: &telego.EditMessageTextParams{
			ChatID:    chat,
			MessageID: msgID,
			Text:      text,
			Entities:  entities,
		}}, p.warnings
	}

	if len(p.media) > 1 {
		p.warn(p.mediaTypes[1], "only the first of %d media items is edited", len(p.media))
	}
	if len(p.mentions) > 0 {
		p.warn(message.TypeAt, "mentions cannot be attached to an edited media caption")
	}
	text := p.joinedText()
	first := p.media[0]
	if text != "" {
		setCaption(first, text)
	}
	return editRequest{media: &telego.EditMessageMediaParams{
		ChatID:    chat,
		MessageID: msgID,
		Media:     first,
	}}, p.warnings
}
