package checkpoint

import (
	"encoding/json"
)

// FailureMarker is the payload recorded for a step that did not complete.
type FailureMarker struct {
	Failed string `json:"failed"`
	Step   string `json:"step,omitempty"`
}

// MarshalFailure encodes a failure marker payload.
func MarshalFailure(step string, err error) json.RawMessage {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	data, _ := json.Marshal(FailureMarker{Failed: msg, Step: step})
	return data
}

// IsFailure reports whether payload is a failure marker, i.e. a JSON object
// carrying a "failed" key.
func IsFailure(payload json.RawMessage) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(payload, &probe); err != nil {
		return false
	}
	_, ok := probe["failed"]
	return ok
}
