package telegram

import (
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyland-inc/telebridge/pkg/message"
)

func types(segs message.Segments) []message.SegmentType {
	out := make([]message.SegmentType, 0, len(segs))
	for _, s := range segs {
		out = append(out, s.Type())
	}
	return out
}

func TestParseEntity(t *testing.T) {
	seg, ok := ParseEntity(telego.MessageEntity{Type: telego.EntityTypeTextMention, User: &telego.User{ID: 7}})
	require.True(t, ok)
	assert.Equal(t, message.At{UserID: "7"}, seg)

	seg, ok = ParseEntity(telego.MessageEntity{Type: telego.EntityTypeTextLink, URL: "https://go.dev"})
	require.True(t, ok)
	assert.Equal(t, message.Text{Content: "https://go.dev"}, seg)

	_, ok = ParseEntity(telego.MessageEntity{Type: telego.EntityTypeBold})
	assert.False(t, ok)

	_, ok = ParseEntity(telego.MessageEntity{Type: telego.EntityTypeTextMention})
	assert.False(t, ok, "mention without a user carries nothing")
}

func TestParseReaction(t *testing.T) {
	tests := []struct {
		in   telego.ReactionType
		want string
	}{
		{&telego.ReactionTypeEmoji{Emoji: "👍"}, "👍"},
		{&telego.ReactionTypeCustomEmoji{CustomEmojiID: "42"}, "42"},
		{&telego.ReactionTypePaid{}, "paid"},
	}
	for _, tt := range tests {
		if got := ParseReaction(tt.in); got != tt.want {
			t.Errorf("ParseReaction(%T) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseMessage_TextAndEntities(t *testing.T) {
	m := &telego.Message{
		MessageID: 3,
		Chat:      telego.Chat{ID: 10},
		Text:      "hey @bob see link",
		Entities: []telego.MessageEntity{
			{Type: telego.EntityTypeTextMention, User: &telego.User{ID: 2}},
			{Type: telego.EntityTypeTextLink, URL: "https://example.com"},
		},
	}
	got := ParseMessage(m)
	assert.Equal(t, "10_3", got.ID)
	assert.Equal(t, []message.SegmentType{message.TypeText, message.TypeAt, message.TypeText}, types(got.Segments))
}

func TestParseMessage_LargestPhotoWithCaption(t *testing.T) {
	m := &telego.Message{
		Chat: telego.Chat{ID: 10},
		Photo: []telego.PhotoSize{
			{FileID: "small", Width: 90, Height: 90},
			{FileID: "large", Width: 1280, Height: 720},
			{FileID: "medium", Width: 320, Height: 320},
		},
		Caption: "sunset",
	}
	got := ParseMessage(m)
	require.Equal(t, []message.SegmentType{message.TypeImage, message.TypeText}, types(got.Segments))
	assert.Equal(t, "large", got.Segments[0].(message.Image).File.ID)
	assert.Equal(t, "sunset", got.Segments[1].(message.Text).Content)
}

func TestParseMessage_AnimationHidesDocument(t *testing.T) {
	m := &telego.Message{
		Chat:      telego.Chat{ID: 10},
		Animation: &telego.Animation{FileID: "gif", FileName: "cat.mp4", Duration: 3},
		Document:  &telego.Document{FileID: "gif", FileName: "cat.mp4"},
	}
	got := ParseMessage(m)
	require.Equal(t, []message.SegmentType{message.TypeVideo}, types(got.Segments))
	assert.Equal(t, 3, got.Segments[0].(message.Video).Length)
}

func TestParseMessage_Media(t *testing.T) {
	m := &telego.Message{
		Chat:     telego.Chat{ID: 10},
		Audio:    &telego.Audio{FileID: "a", Duration: 60},
		Video:    &telego.Video{FileID: "v"},
		Document: &telego.Document{FileID: "d", FileName: "report.pdf", MimeType: "application/pdf"},
		Sticker:  &telego.Sticker{FileID: "s", Emoji: "😀"},
		Voice:    &telego.Voice{FileID: "vo", Duration: 4},
	}
	got := ParseMessage(m)
	assert.Equal(t, []message.SegmentType{
		message.TypeAudio, message.TypeVideo, message.TypeFile, message.TypeImage, message.TypeAudio,
	}, types(got.Segments))
	assert.Equal(t, "report.pdf", got.Segments[2].(message.File).File.Name)
	assert.Equal(t, "😀", got.Segments[3].(message.Image).File.Name)
}

func TestParseMessage_VenueHidesLocation(t *testing.T) {
	loc := telego.Location{Latitude: 52.5, Longitude: 13.4}
	m := &telego.Message{
		Chat:     telego.Chat{ID: 10},
		Location: &loc,
		Venue:    &telego.Venue{Location: loc, Title: "Office", Address: "Main St 1"},
	}
	got := ParseMessage(m)
	require.Len(t, got.Segments, 1)
	assert.Equal(t, message.Location{Latitude: 52.5, Longitude: 13.4, Title: "Office", Content: "Main St 1"}, got.Segments[0])

	m.Venue = nil
	got = ParseMessage(m)
	require.Len(t, got.Segments, 1)
	assert.Equal(t, message.Location{Latitude: 52.5, Longitude: 13.4}, got.Segments[0])
}

func TestParseMessage_UnsupportedContentIsSkipped(t *testing.T) {
	m := &telego.Message{
		Chat:      telego.Chat{ID: 10},
		Contact:   &telego.Contact{PhoneNumber: "+1", FirstName: "X"},
		VideoNote: &telego.VideoNote{FileID: "vn"},
	}
	assert.Empty(t, ParseMessage(m).Segments)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "neo", displayName("neo", "Thomas", "Anderson"))
	assert.Equal(t, "Thomas Anderson", displayName("", "Thomas", "Anderson"))
	assert.Equal(t, "Thomas", displayName("", "Thomas", ""))
}
