package token

import (
	"context"
	"sync"
	"time"

	"nsg/pkg/platform/sentinel"
)

type cachedToken struct {
	token     Token
	expiresAt time.Time
}

// MemoryStore keeps tokens in process with absolute expiry.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]cachedToken
	now    func() time.Time
}

// NewMemoryStore creates an empty in-memory store. A nil now uses time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		tokens: make(map[string]cachedToken),
		now:    now,
	}
}

// Get returns sentinel.ErrNotFound when the key is missing or its TTL has passed.
func (s *MemoryStore) Get(_ context.Context, key string) (Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cached, ok := s.tokens[key]
	if !ok || !s.now().Before(cached.expiresAt) {
		return Token{}, sentinel.ErrNotFound
	}
	return cached.token, nil
}

// Set stores tok for ttl, overwriting any previous token. A non-positive ttl
// removes the entry.
func (s *MemoryStore) Set(_ context.Context, key string, tok Token, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ttl <= 0 {
		delete(s.tokens, key)
		return nil
	}
	s.tokens[key] = cachedToken{token: tok, expiresAt: s.now().Add(ttl)}
	return nil
}
