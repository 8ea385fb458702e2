package domain

import (
	"bytes"
	"encoding/json"
)

// ReplyKind tells which shape a numeric model reply had.
type ReplyKind int

const (
	ReplyUnrecognized ReplyKind = iota
	ReplyNumber
	ReplyObject
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyNumber:
		return "number"
	case ReplyObject:
		return "object"
	default:
		return "unrecognized"
	}
}

// ModelReply is a decoded numeric model reply: a bare number, an object
// carrying the value under a named field, or neither.
type ModelReply struct {
	Kind  ReplyKind
	Value float64
}

// Recognized reports whether a value was found.
func (r ModelReply) Recognized() bool {
	return r.Kind != ReplyUnrecognized
}

// DecodeModelReply decodes body as either a JSON number or an object with a
// numeric field. Any other body, including invalid JSON, is ReplyUnrecognized.
func DecodeModelReply(body []byte, field string) ModelReply {
	trimmed := bytes.TrimSpace(body)
	// json.Unmarshal accepts null into a float64 without error.
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ModelReply{}
	}

	switch trimmed[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return ModelReply{}
		}
		raw, ok := obj[field]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return ModelReply{}
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return ModelReply{}
		}
		return ModelReply{Kind: ReplyObject, Value: v}
	case '[':
		// Some inference endpoints wrap scalar outputs in a one-element list.
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil || len(list) != 1 {
			return ModelReply{}
		}
		return DecodeModelReply(list[0], field)
	default:
		var v float64
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return ModelReply{}
		}
		return ModelReply{Kind: ReplyNumber, Value: v}
	}
}
