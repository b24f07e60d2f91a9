package credentials

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// RedisStore keeps the token under "session:{scope}" with a TTL, so expiry
// is enforced by redis itself. The scope identifies one client context.
type RedisStore struct {
	client *redis.Client
	scope  string
}

func NewRedisStore(client *redis.Client, scope string) *RedisStore {
	return &RedisStore{client: client, scope: scope}
}

func (s *RedisStore) key() string {
	return fmt.Sprintf("%s%s", sessionPrefix, s.scope)
}

func (s *RedisStore) SetSession(ctx context.Context, token string, ttl time.Duration) error {
	if err := checkSession(token, ttl); err != nil {
		return err
	}

	err := s.client.Set(ctx, s.key(), token, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

func (s *RedisStore) SessionToken(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key()).Result()
	if err == redis.Nil {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}
	return token, nil
}

func (s *RedisStore) ClearSession(ctx context.Context) error {
	err := s.client.Del(ctx, s.key()).Err()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
