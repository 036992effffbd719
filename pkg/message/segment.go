// Package message defines the platform independent message model: an
// ordered list of segments addressed by a composite identifier.
package message

import "strings"

// SegmentType names a segment variant. It is also the "type" tag used by the
// JSON codec.
type SegmentType string

const (
	TypeText              SegmentType = "text"
	TypeImage             SegmentType = "image"
	TypeVideo             SegmentType = "video"
	TypeAudio             SegmentType = "audio"
	TypeFile              SegmentType = "file"
	TypeShare             SegmentType = "share"
	TypeReply             SegmentType = "reply"
	TypeAt                SegmentType = "at"
	TypeAtAll             SegmentType = "at_all"
	TypeLocation          SegmentType = "location"
	TypeEmoji             SegmentType = "emoji"
	TypeReference         SegmentType = "reference"
	TypeForwardNode       SegmentType = "forward_node"
	TypeForwardCustomNode SegmentType = "forward_custom_node"
	TypeCustomString      SegmentType = "custom_string"
	TypeCustomValue       SegmentType = "custom_value"
)

// Segment is a closed sum type; only the types in this file implement it.
type Segment interface {
	Type() SegmentType
	isSegment()
}

// FileInfo references a file either by platform file id or by URI.
type FileInfo struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	URI  string `json:"uri,omitempty"`
	Mime string `json:"mime,omitempty"`
	Size int64  `json:"size,omitempty"`
}

type Text struct {
	Content string `json:"content"`
}

type Image struct {
	File *FileInfo `json:"file,omitempty"`
}

type Video struct {
	File   *FileInfo `json:"file,omitempty"`
	Length int       `json:"length,omitempty"` // seconds, 0 when unknown
}

type Audio struct {
	File   *FileInfo `json:"file,omitempty"`
	Length int       `json:"length,omitempty"`
}

type File struct {
	File *FileInfo `json:"file,omitempty"`
}

// Share is a link card. Content and Image are optional.
type Share struct {
	Title   string    `json:"title"`
	Content string    `json:"content,omitempty"`
	URL     string    `json:"url"`
	Image   *FileInfo `json:"image,omitempty"`
}

// Reply marks the message as a reply to MessageID (a composite id).
type Reply struct {
	MessageID string `json:"message_id"`
}

type At struct {
	UserID string `json:"user_id"`
}

type AtAll struct{}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Title     string  `json:"title"`
	Content   string  `json:"content,omitempty"`
}

// Emoji references a sticker or custom emoji by platform id.
type Emoji struct {
	ID string `json:"id"`
}

type Reference struct {
	Payload any `json:"payload,omitempty"`
}

type ForwardNode struct {
	Payload any `json:"payload,omitempty"`
}

type ForwardCustomNode struct {
	Payload any `json:"payload,omitempty"`
}

type CustomString struct {
	Kind string `json:"kind"`
	Data string `json:"data"`
}

type CustomValue struct {
	Kind  string `json:"kind"`
	Value any    `json:"value,omitempty"`
}

func (Text) Type() SegmentType              { return TypeText }
func (Image) Type() SegmentType             { return TypeImage }
func (Video) Type() SegmentType             { return TypeVideo }
func (Audio) Type() SegmentType             { return TypeAudio }
func (File) Type() SegmentType              { return TypeFile }
func (Share) Type() SegmentType             { return TypeShare }
func (Reply) Type() SegmentType             { return TypeReply }
func (At) Type() SegmentType                { return TypeAt }
func (AtAll) Type() SegmentType             { return TypeAtAll }
func (Location) Type() SegmentType          { return TypeLocation }
func (Emoji) Type() SegmentType             { return TypeEmoji }
func (Reference) Type() SegmentType         { return TypeReference }
func (ForwardNode) Type() SegmentType       { return TypeForwardNode }
func (ForwardCustomNode) Type() SegmentType { return TypeForwardCustomNode }
func (CustomString) Type() SegmentType      { return TypeCustomString }
func (CustomValue) Type() SegmentType       { return TypeCustomValue }

func (Text) isSegment()              {}
func (Image) isSegment()             {}
func (Video) isSegment()             {}
func (Audio) isSegment()             {}
func (File) isSegment()              {}
func (Share) isSegment()             {}
func (Reply) isSegment()             {}
func (At) isSegment()                {}
func (AtAll) isSegment()             {}
func (Location) isSegment()          {}
func (Emoji) isSegment()             {}
func (Reference) isSegment()         {}
func (ForwardNode) isSegment()       {}
func (ForwardCustomNode) isSegment() {}
func (CustomString) isSegment()      {}
func (CustomValue) isSegment()       {}

// Warning describes a segment that was degraded rather than sent.
type Warning struct {
	Segment string `json:"segment"`
	Reason  string `json:"reason"`
}

func (w Warning) String() string { return w.Segment + ": " + w.Reason }

// Segments is an ordered segment list; order is significant.
type Segments []Segment

// Message is immutable once constructed.
type Message struct {
	ID       string   `json:"id"`
	Segments Segments `json:"segments"`
}

// PlainText concatenates the Text segments of m.
func (m Message) PlainText() string {
	var sb strings.Builder
	for _, s := range m.Segments {
		if t, ok := s.(Text); ok {
			sb.WriteString(t.Content)
		}
	}
	return sb.String()
}
