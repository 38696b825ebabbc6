// Package redis shares rate limit windows between wproofd instances through
// Redis.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wrale/wrale-proof/internal/wproofd/ratelimit"
)

// Store counts fixed windows with INCR, one key per LimitKey
type Store struct {
	client redis.UniversalClient
	now    func() time.Time
}

var _ ratelimit.Store = (*Store)(nil)

func NewStore(client redis.UniversalClient) *Store {
	return &Store{client: client, now: time.Now}
}

// KeyStr returns the Redis key holding the counter of key
func KeyStr(key ratelimit.LimitKey) string {
	return strings.Join([]string{"rate", key.Type, key.RemoteIP, key.Endpoint}, ":")
}

// Increment runs INCR, EXPIRE NX and PTTL in one MULTI. Only the first
// increment of a window sets the expiry, which keeps the window fixed.
func (s *Store) Increment(ctx context.Context, key ratelimit.LimitKey, limit ratelimit.Limit) (int, time.Time, error) {
	k := KeyStr(key)

	var (
		count *redis.IntCmd
		ttl   *redis.DurationCmd
	)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		count = p.Incr(ctx, k)
		p.ExpireNX(ctx, k, limit.Period)
		ttl = p.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return 0, time.Time{}, storeErr(err)
	}

	left := ttl.Val()
	if left <= 0 {
		left = limit.Period
	}
	return int(count.Val()), s.now().Add(left), nil
}

func (s *Store) Reset(ctx context.Context, key ratelimit.LimitKey) error {
	if err := s.client.Del(ctx, KeyStr(key)).Err(); err != nil {
		return storeErr(err)
	}
	return nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ratelimit.ErrStoreError, err)
}
