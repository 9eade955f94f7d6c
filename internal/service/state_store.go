package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sturmfeder/guild-portal/pkg/database"
)

// OAuthStateStore keeps the one-time CSRF state of in-flight login
// attempts in Redis. Entries expire on their own after the TTL, so an
// abandoned login leaves nothing behind.
type OAuthStateStore struct {
	redis *database.Redis
	ttl   time.Duration
}

// NewOAuthStateStore creates a new OAuth state store
func NewOAuthStateStore(redis *database.Redis, ttl time.Duration) *OAuthStateStore {
	return &OAuthStateStore{redis: redis, ttl: ttl}
}

// Put stores a pending state value with the configured TTL
func (s *OAuthStateStore) Put(ctx context.Context, state string) error {
	key := fmt.Sprintf("oauth:state:%s", state)
	if err := s.redis.Client.Set(ctx, key, "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store oauth state: %w", err)
	}
	return nil
}

// Consume atomically removes a state value and reports whether it was
// present. A state can only ever be consumed once.
func (s *OAuthStateStore) Consume(ctx context.Context, state string) (bool, error) {
	key := fmt.Sprintf("oauth:state:%s", state)
	if _, err := s.redis.Client.GetDel(ctx, key).Result(); err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return true, nil
}
