package tool

import (
	"errors"
	"fmt"
)

// ErrorKind classifies tool subsystem failures.
type ErrorKind string

const (
	// KindValidation covers registration-time failures: bad names,
	// unsupported function shapes, malformed schemas, duplicates.
	KindValidation ErrorKind = "validation"
	// KindNotFound means the requested tool is not registered.
	KindNotFound ErrorKind = "not_found"
	// KindInvalidArguments means the arguments failed schema validation.
	KindInvalidArguments ErrorKind = "invalid_arguments"
	// KindExecutionFailed means the tool body itself returned an error or panicked.
	KindExecutionFailed ErrorKind = "execution_failed"
	// KindSerialization means the tool result could not be normalized to JSON.
	KindSerialization ErrorKind = "serialization"
)

// Error is the typed error for all tool subsystem failures.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// NewError creates a typed tool error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates a typed tool error wrapping an underlying cause.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a tool Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var te *Error
	if !errors.As(err, &te) {
		return false
	}
	return te.Kind == kind
}
