package ratelimit

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// WSConnection is the limit type of page stream connections
const WSConnection = "ws_connection"

type limiter struct {
	store  Store
	logger zerolog.Logger

	mu     sync.RWMutex
	limits map[string]Limit
}

// NewService returns a Service counting in store
func NewService(store Store, logger zerolog.Logger) Service {
	return &limiter{
		store:  store,
		logger: logger.With().Str("component", "ratelimit").Logger(),
		limits: map[string]Limit{},
	}
}

func (l *limiter) RegisterLimit(limitType string, limit Limit) error {
	if limitType == "" || limit.Rate < 1 || limit.Period <= 0 || limit.BurstSize < 0 {
		return ErrInvalidLimit
	}
	l.mu.Lock()
	l.limits[limitType] = limit
	l.mu.Unlock()
	return nil
}

func (l *limiter) GetLimit(limitType string) Limit {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.limits[limitType]
}

// Allow lets unregistered types through without counting
func (l *limiter) Allow(ctx context.Context, key LimitKey) (*LimitStatus, error) {
	if key.Type == "" {
		return nil, ErrInvalidKey
	}

	limit := l.GetLimit(key.Type)
	if limit.Rate == 0 {
		l.logger.Warn().Str("type", key.Type).Msg("no rate limit configured for type")
		return &LimitStatus{}, nil
	}

	count, reset, err := l.store.Increment(ctx, key, limit)
	if err != nil {
		l.logger.Error().Err(err).Str("type", key.Type).Str("endpoint", key.Endpoint).Msg("rate limit check failed")
		return nil, err
	}

	status := &LimitStatus{
		Limit:     limit,
		Count:     count,
		Remaining: max(limit.Max()-count, 0),
		Reset:     reset,
	}
	l.logger.Debug().
		Str("type", key.Type).
		Str("remoteIP", key.RemoteIP).
		Int("count", count).
		Int("max", limit.Max()).
		Msg("rate limit check")

	if count > limit.Max() {
		return status, ErrLimitExceeded
	}
	return status, nil
}

func (l *limiter) Reset(ctx context.Context, key LimitKey) error {
	if key.Type == "" {
		return ErrInvalidKey
	}
	if err := l.store.Reset(ctx, key); err != nil {
		l.logger.Error().Err(err).Str("type", key.Type).Msg("failed to reset rate limit")
		return err
	}
	return nil
}
