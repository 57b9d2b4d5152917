package oracle

import (
	"encoding/json"
	"fmt"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	// KindStructured holds a decoded JSON object or list.
	KindStructured ValueKind = iota
	// KindRawText holds unparsed model text.
	KindRawText
	// KindFailure holds the error that prevented a usable result.
	KindFailure
)

func (k ValueKind) String() string {
	switch k {
	case KindStructured:
		return "structured"
	case KindRawText:
		return "raw_text"
	case KindFailure:
		return "failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is the result of one oracle call.
type Value struct {
	kind ValueKind
	raw  json.RawMessage
	text string
	err  error
}

// Structured wraps a JSON document.
func Structured(raw json.RawMessage) Value {
	return Value{kind: KindStructured, raw: raw}
}

// StructuredFrom encodes v as a structured value.
func StructuredFrom(v any) (Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Value{}, err
	}
	return Structured(raw), nil
}

// RawText wraps unparsed text.
func RawText(text string) Value {
	return Value{kind: KindRawText, text: text}
}

// Failure wraps the error for a call that produced nothing usable.
func Failure(err error) Value {
	return Value{kind: KindFailure, err: err}
}

// Kind returns the variant tag.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsFailure reports whether v is a Failure.
func (v Value) IsFailure() bool {
	return v.kind == KindFailure
}

// Err returns the failure cause, or nil.
func (v Value) Err() error {
	return v.err
}

// Text returns the raw text for RawText values and the JSON text otherwise.
func (v Value) Text() string {
	switch v.kind {
	case KindRawText:
		return v.text
	case KindStructured:
		return string(v.raw)
	default:
		if v.err != nil {
			return v.err.Error()
		}
		return ""
	}
}

// JSON returns the value encoded for a channel log. Failures encode as
// {"failed": message}.
func (v Value) JSON() json.RawMessage {
	switch v.kind {
	case KindStructured:
		return v.raw
	case KindRawText:
		data, _ := json.Marshal(v.text)
		return data
	default:
		msg := "unknown error"
		if v.err != nil {
			msg = v.err.Error()
		}
		data, _ := json.Marshal(map[string]string{"failed": msg})
		return data
	}
}

// Decode unmarshals a structured value into dest.
func (v Value) Decode(dest any) error {
	if v.kind != KindStructured {
		return fmt.Errorf("cannot decode %s value", v.kind)
	}
	return json.Unmarshal(v.raw, dest)
}
