package oracle

import (
	"errors"
	"fmt"
)

// ErrorKind classifies oracle failures.
type ErrorKind string

const (
	ErrTransport ErrorKind = "transport"
	ErrStatus    ErrorKind = "status"
	ErrTimeout   ErrorKind = "timeout"
	ErrEmpty     ErrorKind = "empty_response"
	ErrMalformed ErrorKind = "malformed"
	ErrShape     ErrorKind = "unexpected_shape"
	ErrSchema    ErrorKind = "schema"
	ErrInput     ErrorKind = "input"
)

// Error is an OracleError: a single call that did not yield a usable result.
type Error struct {
	Kind ErrorKind
	Step string
	// Raw is the response text when one was received.
	Raw string
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("oracle %s", e.Kind)
	if e.Step != "" {
		msg += " in " + e.Step
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Raw != "" {
		msg += " Original Text: " + e.Raw
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the ErrorKind of err, or "" when err is not an oracle error.
func KindOf(err error) ErrorKind {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return ""
}

func newError(kind ErrorKind, step, raw string, err error) *Error {
	return &Error{Kind: kind, Step: step, Raw: raw, Err: err}
}
