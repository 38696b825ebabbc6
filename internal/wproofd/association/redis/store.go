// Package redis stores page associations in Redis
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces association keys
const KeyPrefix = "page:group:"

// Store implements association storage using Redis
type Store struct {
	client redis.UniversalClient
}

// NewStore creates a new Redis-backed association store
func NewStore(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

// Key returns the Redis key holding the group of page
func Key(page string) string {
	return KeyPrefix + page
}

// Get returns the stored group of page
func (s *Store) Get(ctx context.Context, page string) (string, bool, error) {
	val, err := s.client.Get(ctx, Key(page)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", Key(page), err)
	}
	return val, true, nil
}

// Set stores group for page without expiry
func (s *Store) Set(ctx context.Context, page, group string) error {
	if err := s.client.Set(ctx, Key(page), group, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", Key(page), err)
	}
	return nil
}

// Delete removes the association of page
func (s *Store) Delete(ctx context.Context, page string) error {
	if err := s.client.Del(ctx, Key(page)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", Key(page), err)
	}
	return nil
}
