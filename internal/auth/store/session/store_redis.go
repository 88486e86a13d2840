package session

import (
	"context"
	"fmt"
	"time"

	platformredis "chainsync/internal/platform/redis"
)

// RedisStore keeps revocation markers in Redis so a revoked token stays
// revoked across every gateway instance. TTL matches the token's remaining
// lifetime; Redis expiry handles cleanup.
type RedisStore struct {
	client *platformredis.Client
}

// NewRedis constructs a Redis-backed revocation store.
func NewRedis(client *platformredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func revocationKey(jti string) string {
	return "chainsync:revoked:" + jti
}

func (s *RedisStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already expired; nothing to mark.
		return nil
	}
	if err := s.client.Set(ctx, revocationKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session %s: %w", jti, err)
	}
	return nil
}

func (s *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revocationKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check session revocation: %w", err)
	}
	return n > 0, nil
}
