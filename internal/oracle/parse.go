package oracle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// StripFences removes a surrounding markdown code fence such as ```json.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 6 {
		return trimmed
	}
	inner := trimmed[3 : len(trimmed)-3]
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		lang := strings.TrimSpace(inner[:nl])
		if lang == "" || isFenceLanguage(lang) {
			inner = inner[nl+1:]
		}
	} else {
		inner = strings.TrimPrefix(inner, "json")
	}
	return strings.TrimSpace(inner)
}

func isFenceLanguage(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// extractJSONSpan returns the text between the first opening bracket and the
// last matching closing bracket, for responses that wrap JSON in prose.
func extractJSONSpan(text string) (string, bool) {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", false
	}
	closing := byte('}')
	if text[start] == '[' {
		closing = ']'
	}
	end := strings.LastIndexByte(text, closing)
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseResponse turns raw model text into a Value of the expected shape.
func ParseResponse(text string, opts CallOptions) (Value, error) {
	if strings.TrimSpace(text) == "" {
		err := newError(ErrEmpty, opts.Step, "", errors.New("model returned no content"))
		return Failure(err), err
	}
	if opts.Expect == ShapeText {
		return RawText(text), nil
	}
	body := StripFences(text)
	raw, err := decodeDocument(body)
	if err != nil {
		if span, ok := extractJSONSpan(body); ok {
			raw, err = decodeDocument(span)
		}
	}
	if err != nil {
		oe := newError(ErrMalformed, opts.Step, text, err)
		return Failure(oe), oe
	}
	if err := checkShape(raw, opts.Expect); err != nil {
		oe := newError(ErrShape, opts.Step, text, err)
		return Failure(oe), oe
	}
	return Structured(raw), nil
}

func decodeDocument(text string) (json.RawMessage, error) {
	var raw json.RawMessage
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse JSON response: %w", err)
	}
	if dec.More() {
		return nil, errors.New("parse JSON response: trailing data")
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return nil, err
	}
	return compact.Bytes(), nil
}

func checkShape(raw json.RawMessage, expect Shape) error {
	first := firstByte(raw)
	switch expect {
	case ShapeObject:
		if first != '{' {
			return fmt.Errorf("expected object, got %s", describe(first))
		}
	case ShapeList:
		if first != '[' {
			return fmt.Errorf("expected list, got %s", describe(first))
		}
	}
	return nil
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func describe(b byte) string {
	switch b {
	case '{':
		return "object"
	case '[':
		return "list"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	case 0:
		return "nothing"
	default:
		return "number"
	}
}
