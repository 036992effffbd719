package message

import (
	"encoding/json"
	"fmt"
)

// wireSegment is the tagged JSON form of a segment: {"type": ..., "data": {...}}.
type wireSegment struct {
	Type SegmentType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON encodes each segment as a tagged object, preserving order.
func (s Segments) MarshalJSON() ([]byte, error) {
	out := make([]wireSegment, 0, len(s))
	for i, seg := range s {
		if seg == nil {
			return nil, fmt.Errorf("segment %d is nil", i)
		}
		data, err := json.Marshal(seg)
		if err != nil {
			return nil, fmt.Errorf("segment %d (%s): %w", i, seg.Type(), err)
		}
		out = append(out, wireSegment{Type: seg.Type(), Data: data})
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes tagged segment objects. Unknown types are an error.
func (s *Segments) UnmarshalJSON(b []byte) error {
	var raw []wireSegment
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Segments, 0, len(raw))
	for i, w := range raw {
		seg, err := decodeSegment(w)
		if err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
		out = append(out, seg)
	}
	*s = out
	return nil
}

func decodeSegment(w wireSegment) (Segment, error) {
	switch w.Type {
	case TypeText:
		return decodeInto[Text](w.Data)
	case TypeImage:
		return decodeInto[Image](w.Data)
	case TypeVideo:
		return decodeInto[Video](w.Data)
	case TypeAudio:
		return decodeInto[Audio](w.Data)
	case TypeFile:
		return decodeInto[File](w.Data)
	case TypeShare:
		return decodeInto[Share](w.Data)
	case TypeReply:
		return decodeInto[Reply](w.Data)
	case TypeAt:
		return decodeInto[At](w.Data)
	case TypeAtAll:
		return AtAll{}, nil
	case TypeLocation:
		return decodeInto[Location](w.Data)
	case TypeEmoji:
		return decodeInto[Emoji](w.Data)
	case TypeReference:
		return decodeInto[Reference](w.Data)
	case TypeForwardNode:
		return decodeInto[ForwardNode](w.Data)
	case TypeForwardCustomNode:
		return decodeInto[ForwardCustomNode](w.Data)
	case TypeCustomString:
		return decodeInto[CustomString](w.Data)
	case TypeCustomValue:
		return decodeInto[CustomValue](w.Data)
	default:
		return nil, fmt.Errorf("unknown segment type %q", w.Type)
	}
}

func decodeInto[T Segment](data json.RawMessage) (Segment, error) {
	var v T
	if len(data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", v.Type(), err)
	}
	return v, nil
}
