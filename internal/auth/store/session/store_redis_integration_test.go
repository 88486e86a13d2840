//go:build integration

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"chainsync/internal/auth/store/session"
	platformredis "chainsync/internal/platform/redis"
	"chainsync/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *session.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = session.NewRedis(&platformredis.Client{Client: s.redis.Client})
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRevokeAndCheck() {
	ctx := context.Background()
	jti := uuid.NewString()

	revoked, err := s.store.IsRevoked(ctx, jti)
	s.NoError(err)
	s.False(revoked)

	s.Require().NoError(s.store.Revoke(ctx, jti, time.Now().Add(time.Hour)))

	revoked, err = s.store.IsRevoked(ctx, jti)
	s.NoError(err)
	s.True(revoked)
}

// A revocation marker expires with the token it covers; Redis TTL handles
// the cleanup.
func (s *RedisStoreSuite) TestMarkerExpiresWithToken() {
	ctx := context.Background()
	jti := uuid.NewString()

	s.Require().NoError(s.store.Revoke(ctx, jti, time.Now().Add(time.Second)))

	revoked, err := s.store.IsRevoked(ctx, jti)
	s.NoError(err)
	s.True(revoked)

	s.Eventually(func() bool {
		revoked, err := s.store.IsRevoked(ctx, jti)
		return err == nil && !revoked
	}, 5*time.Second, 100*time.Millisecond)
}

func (s *RedisStoreSuite) TestRevokingExpiredTokenIsNoop() {
	ctx := context.Background()
	jti := uuid.NewString()

	s.Require().NoError(s.store.Revoke(ctx, jti, time.Now().Add(-time.Minute)))

	revoked, err := s.store.IsRevoked(ctx, jti)
	s.NoError(err)
	s.False(revoked)
}

func (s *RedisStoreSuite) TestRevocationsAreIndependent() {
	ctx := context.Background()
	first, second := uuid.NewString(), uuid.NewString()

	s.Require().NoError(s.store.Revoke(ctx, first, time.Now().Add(time.Hour)))

	revoked, err := s.store.IsRevoked(ctx, second)
	s.NoError(err)
	s.False(revoked)
}
