//go:build integration

package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"nsg/pkg/platform/sentinel"
	"nsg/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestSetAndGet() {
	ctx := context.Background()
	expires := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.Set(ctx, "TokenSE", Token{AccessToken: "abc", TokenType: "Bearer", ExpiresAt: expires}, time.Minute))

	tok, err := s.store.Get(ctx, "TokenSE")
	s.Require().NoError(err)
	s.Equal("abc", tok.AccessToken)
	s.True(expires.Equal(tok.ExpiresAt))

	ttl, err := s.redis.Client.TTL(ctx, defaultKeyPrefix+"TokenSE").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}

func (s *RedisStoreSuite) TestMissingKey() {
	_, err := s.store.Get(context.Background(), "TokenSE")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestKeyExpires() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "TokenSE", Token{AccessToken: "abc"}, time.Second))

	s.Eventually(func() bool {
		_, err := s.store.Get(ctx, "TokenSE")
		return err != nil
	}, 5*time.Second, 100*time.Millisecond)
}

func (s *RedisStoreSuite) TestZeroTTLDeletes() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "TokenSE", Token{AccessToken: "abc"}, time.Minute))
	s.Require().NoError(s.store.Set(ctx, "TokenSE", Token{AccessToken: "def"}, 0))

	_, err := s.store.Get(ctx, "TokenSE")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestPrefixIsolation() {
	ctx := context.Background()
	other := NewRedisStore(s.redis.Client, WithKeyPrefix("other:"))
	s.Require().NoError(s.store.Set(ctx, "TokenSE", Token{AccessToken: "abc"}, time.Minute))

	_, err := other.Get(ctx, "TokenSE")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
