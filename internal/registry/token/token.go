// Package token acquires and caches OAuth2 client-credentials bearer tokens.
//
// Concurrent cache misses for the same provider may each fetch a token; the
// store keeps whichever was written last. Tokens are interchangeable until they
// expire, so the duplicate fetch costs one extra round trip and nothing else.
package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"nsg/internal/registry/metrics"
	"nsg/internal/registry/providers"
	"nsg/internal/registry/resilience"
	"nsg/pkg/platform/sentinel"
)

// SafetyMargin is subtracted from expires_in before caching.
const SafetyMargin = 5 * time.Second

// Token is a cached bearer token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Scope       string    `json:"scope"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the token is unusable at now.
func (t Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Store is a token cache keyed by provider. Get returns sentinel.ErrNotFound for
// missing or expired entries.
type Store interface {
	Get(ctx context.Context, key string) (Token, error)
	Set(ctx context.Context, key string, tok Token, ttl time.Duration) error
}

// Doer sends token requests. *resilience.Client implements it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*resilience.Response, error)
}

// Credentials configure the client-credentials grant for one provider.
type Credentials struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string
}

type source struct {
	creds Credentials
	doer  Doer
}

// Manager serves tokens from the store and refetches them once expired.
type Manager struct {
	store   Store
	caching bool
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu      sync.RWMutex
	sources map[string]source
}

// Option configures a Manager.
type Option func(*Manager)

// WithCaching toggles the cache. Disabled caching fetches a token on every call.
func WithCaching(enabled bool) Option {
	return func(m *Manager) { m.caching = enabled }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a manager backed by store.
func NewManager(store Store, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("token store is required")
	}
	m := &Manager{
		store:   store,
		caching: true,
		logger:  slog.Default(),
		now:     time.Now,
		sources: make(map[string]source),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// Register adds the credentials and transport for a provider key.
func (m *Manager) Register(key string, creds Credentials, doer Doer) error {
	if doer == nil {
		return fmt.Errorf("token %s: doer is required", key)
	}
	if _, err := url.ParseRequestURI(creds.TokenURL); err != nil {
		return fmt.Errorf("token %s: invalid token url: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[key] = source{creds: creds, doer: doer}
	return nil
}

// Acquire returns a valid token for key, from cache when possible.
func (m *Manager) Acquire(ctx context.Context, key string) (Token, error) {
	m.mu.RLock()
	src, ok := m.sources[key]
	m.mu.RUnlock()
	if !ok {
		return Token{}, providers.ServerError("no token credentials configured", fmt.Errorf("token source %q not registered", key))
	}

	if m.caching {
		tok, err := m.store.Get(ctx, key)
		switch {
		case err == nil && !tok.Expired(m.now()):
			m.metrics.IncrementTokenCache(key, true)
			m.logger.DebugContext(ctx, "using cached token", "provider", key)
			return tok, nil
		case err != nil && !errors.Is(err, sentinel.ErrNotFound):
			m.logger.WarnContext(ctx, "token cache read failed", "provider", key, "error", err)
		}
		m.metrics.IncrementTokenCache(key, false)
	}

	tok, err := m.fetch(ctx, src)
	if err != nil {
		return Token{}, err
	}

	ttl := max(time.Duration(tok.ExpiresIn)*time.Second-SafetyMargin, 0)
	tok.ExpiresAt = m.now().Add(ttl)
	if m.caching && ttl > 0 {
		if err := m.store.Set(ctx, key, tok, ttl); err != nil {
			m.logger.WarnContext(ctx, "token cache write failed", "provider", key, "error", err)
		}
	}
	return tok, nil
}

func (m *Manager) fetch(ctx context.Context, src source) (Token, error) {
	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {src.creds.Scope},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, src.creds.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, providers.ServerError("build token request", err)
	}
	req.SetBasicAuth(src.creds.ClientID, src.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := src.doer.Do(ctx, req)
	if err != nil {
		return Token{}, err
	}
	if !resp.OK() {
		return Token{}, providers.FromUpstream(resp.Status, resp.Body)
	}

	var tok Token
	if err := json.Unmarshal(resp.Body, &tok); err != nil {
		return Token{}, providers.UpstreamPermanent("Could not read token response", err)
	}
	if tok.AccessToken == "" {
		return Token{}, providers.UpstreamPermanent("Token response carried no access token", nil)
	}
	return tok, nil
}
