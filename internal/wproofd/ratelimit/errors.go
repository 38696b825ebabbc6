package ratelimit

import "errors"

// Error is a limiter failure with a code matching the API error codes
type Error struct {
	Code    string
	Message string
}

func (e Error) Error() string { return e.Message }

var (
	ErrLimitExceeded = Error{Code: "RATE_LIMITED", Message: "rate limit exceeded"}
	ErrStoreError    = Error{Code: "STORE_ERROR", Message: "rate limit store error"}
	ErrInvalidLimit  = Error{Code: "INVALID_LIMIT", Message: "invalid rate limit configuration"}
	ErrInvalidKey    = Error{Code: "INVALID_KEY", Message: "invalid rate limit key"}
)

// IsLimitExceeded reports whether err means the caller is over its limit
func IsLimitExceeded(err error) bool {
	var e Error
	return errors.As(err, &e) && e.Code == ErrLimitExceeded.Code
}
