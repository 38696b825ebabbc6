package http

import (
	"net/http"

	"github.com/wrale/wrale-proof/internal/wproofd/errors"
)

// HTTPError is an error that knows its response status
type HTTPError interface {
	error
	StatusCode() int
	ErrorCode() string
}

type httpError struct {
	msg    string
	code   string
	status int
}

func (e *httpError) Error() string {
	return e.msg
}

func (e *httpError) StatusCode() int {
	return e.status
}

func (e *httpError) ErrorCode() string {
	return e.code
}

// ErrInvalidRequest reports a malformed request
func ErrInvalidRequest(msg string) error {
	return &httpError{msg: msg, code: "INVALID_REQUEST", status: http.StatusBadRequest}
}

// ErrNotFound reports a missing resource
func ErrNotFound(msg string) error {
	return &httpError{msg: msg, code: "NOT_FOUND", status: http.StatusNotFound}
}

// toHTTPError maps domain errors onto response statuses. Messages of
// internal failures are not exposed.
func toHTTPError(err error) HTTPError {
	if he, ok := err.(HTTPError); ok {
		return he
	}

	code := errors.CodeOf(err)
	switch {
	case errors.IsNotFound(err):
		return &httpError{msg: err.Error(), code: orDefault(code, "NOT_FOUND"), status: http.StatusNotFound}
	case errors.IsConflict(err):
		return &httpError{msg: err.Error(), code: orDefault(code, "CONFLICT"), status: http.StatusConflict}
	case errors.IsInvalidInput(err), errors.IsInvalidConfig(err):
		return &httpError{msg: err.Error(), code: orDefault(code, "INVALID_INPUT"), status: http.StatusBadRequest}
	case errors.IsUnavailable(err):
		return &httpError{msg: "backing store unavailable", code: "UNAVAILABLE", status: http.StatusServiceUnavailable}
	default:
		return &httpError{msg: "internal server error", code: "INTERNAL", status: http.StatusInternalServerError}
	}
}

func orDefault(code, def string) string {
	if code == "" {
		return def
	}
	return code
}
