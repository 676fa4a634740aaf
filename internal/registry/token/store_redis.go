package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"nsg/pkg/platform/sentinel"
)

const defaultKeyPrefix = "nsg:token:"

// RedisStore shares tokens between instances. Redis expires the keys, so a
// token is never served past its TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix overrides the key namespace.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore constructs a Redis-backed token store.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) Get(ctx context.Context, key string) (Token, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Token{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Token{}, fmt.Errorf("redis get token: %w", err)
	}
	var tok Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return Token{}, fmt.Errorf("decode cached token: %w", err)
	}
	return tok, nil
}

// Set uses SET with expiry. A non-positive ttl deletes the key.
func (s *RedisStore) Set(ctx context.Context, key string, tok Token, ttl time.Duration) error {
	if ttl <= 0 {
		return s.client.Del(ctx, s.prefix+key).Err()
	}
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	return s.client.Set(ctx, s.prefix+key, raw, ttl).Err()
}
