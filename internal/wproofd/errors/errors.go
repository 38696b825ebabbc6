// Package errors defines the error type shared by the wrale-proof server.
//
// A failed operation returns an *Error carrying a machine-readable code and
// the name of the operation. Its chain ends in one of the sentinels below,
// and callers branch on those through the Is helpers rather than on codes.
package errors

import (
	"errors"
	"strings"
)

// Sentinels classifying failures
var (
	// ErrNotFound means the addressed item, group or page does not exist
	ErrNotFound = errors.New("resource not found")
	// ErrConflict means a concurrent write won
	ErrConflict = errors.New("resource already exists")
	// ErrInvalidInput means the caller sent something unusable
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConfig means timing or presentation settings the rotation
	// engine refuses to schedule against
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrUnavailable means a backing store could not be reached
	ErrUnavailable = errors.New("service unavailable")
)

var kinds = []error{ErrNotFound, ErrConflict, ErrInvalidInput, ErrInvalidConfig, ErrUnavailable}

// Error is a failed operation
type Error struct {
	// Code is a machine-readable error code such as NOT_FOUND
	Code string
	// Message is safe to show to API clients
	Message string
	// Op names the failed operation as Type.Method
	Op string
	// Err is the cause, usually a sentinel
	Err error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Message
	}
	var b strings.Builder
	b.Grow(len(e.Op) + 2 + len(e.Message))
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error
func NewError(code, message, op string, err error) *Error {
	return &Error{Code: code, Message: message, Op: op, Err: err}
}

// CodeOf returns the code of the outermost *Error in the chain of err, or ""
// when there is none
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// KindOf returns the sentinel err wraps, or nil
func KindOf(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

func IsNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool      { return errors.Is(err, ErrConflict) }
func IsInvalidInput(err error) bool  { return errors.Is(err, ErrInvalidInput) }
func IsInvalidConfig(err error) bool { return errors.Is(err, ErrInvalidConfig) }
func IsUnavailable(err error) bool   { return errors.Is(err, ErrUnavailable) }
