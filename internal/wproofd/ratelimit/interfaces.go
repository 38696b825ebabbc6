// Package ratelimit throttles page stream connections with fixed window
// counters.
package ratelimit

import (
	"context"
	"time"
)

// LimitKey names one counter: a limit type applied to a caller on an endpoint
type LimitKey struct {
	Type     string
	RemoteIP string
	Endpoint string
}

// Limit allows Rate operations per Period, plus BurstSize on top
type Limit struct {
	Rate      int
	Period    time.Duration
	BurstSize int
}

// Max returns the highest count allowed within one window
func (l Limit) Max() int {
	return l.Rate + l.BurstSize
}

// LimitStatus is the counter state observed by Allow
type LimitStatus struct {
	Limit     Limit
	Count     int
	Remaining int
	Reset     time.Time
}

// Store persists window counters.
type Store interface {
	// Increment counts one operation for key, returning the count so far in
	// the current window and the time that window closes.
	Increment(ctx context.Context, key LimitKey, limit Limit) (int, time.Time, error)
	Reset(ctx context.Context, key LimitKey) error
}

// Service applies registered limits.
type Service interface {
	// Allow counts an operation. Once the count passes the limit's Max the
	// returned error is ErrLimitExceeded and the status is still set.
	Allow(ctx context.Context, key LimitKey) (*LimitStatus, error)
	RegisterLimit(limitType string, limit Limit) error
	// GetLimit returns the zero Limit for unregistered types
	GetLimit(limitType string) Limit
	Reset(ctx context.Context, key LimitKey) error
}
