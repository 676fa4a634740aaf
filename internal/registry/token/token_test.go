package token

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"nsg/internal/registry/metrics"
	"nsg/internal/registry/providers"
	"nsg/internal/registry/resilience"
	"nsg/pkg/platform/sentinel"
)

type ManagerSuite struct {
	suite.Suite
	hits      atomic.Int32
	status    atomic.Int32
	expiresIn atomic.Int32
	lastForm  atomic.Value
	lastAuth  atomic.Value
	server    *httptest.Server
	now       time.Time
	metrics   *metrics.Metrics
	store     *MemoryStore
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.hits.Store(0)
	s.status.Store(http.StatusOK)
	s.expiresIn.Store(3600)
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := s.hits.Add(1)
		_ = r.ParseForm()
		s.lastForm.Store(r.PostForm.Encode())
		user, pass, _ := r.BasicAuth()
		s.lastAuth.Store(user + ":" + pass)

		status := int(s.status.Load())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = io.WriteString(w, `{"error":"invalid_client"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-" + string(rune('0'+n)),
			"token_type":   "Bearer",
			"scope":        "nsg",
			"expires_in":   s.expiresIn.Load(),
		})
	}))
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.store = NewMemoryStore(s.clock)
}

func (s *ManagerSuite) TearDownTest() {
	s.server.Close()
}

func (s *ManagerSuite) clock() time.Time { return s.now }

func (s *ManagerSuite) newManager(opts ...Option) *Manager {
	base := []Option{
		WithClock(s.clock),
		WithMetrics(s.metrics),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	m, err := NewManager(s.store, append(base, opts...)...)
	s.Require().NoError(err)
	client := resilience.New("sweden-token", resilience.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(m.Register("TokenSE", Credentials{
		TokenURL:     s.server.URL + "/oauth2/token",
		ClientID:     "client",
		ClientSecret: "secret",
		Scope:        "nsg",
	}, client))
	return m
}

func (s *ManagerSuite) TestFirstAcquireFetchesWithClientCredentials() {
	m := s.newManager()

	tok, err := m.Acquire(context.Background(), "TokenSE")

	s.Require().NoError(err)
	s.Equal("token-1", tok.AccessToken)
	s.Equal(s.now.Add(3595*time.Second), tok.ExpiresAt)
	s.Equal("grant_type=client_credentials&scope=nsg", s.lastForm.Load())
	s.Equal("client:secret", s.lastAuth.Load())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.TokenCache.WithLabelValues("TokenSE", "miss")))
}

func (s *ManagerSuite) TestCachedTokenIsReusedUntilExpiry() {
	m := s.newManager()
	ctx := context.Background()

	first, err := m.Acquire(ctx, "TokenSE")
	s.Require().NoError(err)

	s.now = s.now.Add(time.Hour - 6*time.Second)
	second, err := m.Acquire(ctx, "TokenSE")
	s.Require().NoError(err)
	s.Equal(first.AccessToken, second.AccessToken)
	s.Equal(int32(1), s.hits.Load())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.TokenCache.WithLabelValues("TokenSE", "hit")))

	s.now = s.now.Add(time.Second)
	third, err := m.Acquire(ctx, "TokenSE")
	s.Require().NoError(err)
	s.Equal("token-2", third.AccessToken)
	s.Equal(int32(2), s.hits.Load())
}

func (s *ManagerSuite) TestShortLivedTokenIsNotCached() {
	s.expiresIn.Store(5)
	m := s.newManager()
	ctx := context.Background()

	_, err := m.Acquire(ctx, "TokenSE")
	s.Require().NoError(err)
	_, err = m.Acquire(ctx, "TokenSE")
	s.Require().NoError(err)

	s.Equal(int32(2), s.hits.Load())
	_, err = s.store.Get(ctx, "TokenSE")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ManagerSuite) TestCachingDisabledFetchesEveryTime() {
	m := s.newManager(WithCaching(false))
	ctx := context.Background()

	for range 3 {
		_, err := m.Acquire(ctx, "TokenSE")
		s.Require().NoError(err)
	}

	s.Equal(int32(3), s.hits.Load())
	_, err := s.store.Get(ctx, "TokenSE")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ManagerSuite) TestRejectedCredentialsSurfaceUpstreamError() {
	s.status.Store(http.StatusUnauthorized)
	m := s.newManager()

	_, err := m.Acquire(context.Background(), "TokenSE")

	var pe *providers.Error
	s.Require().ErrorAs(err, &pe)
	s.Equal(providers.CategoryUpstreamPermanent, pe.Category)
	s.Equal(http.StatusUnauthorized, pe.Status)
}

func (s *ManagerSuite) TestUnknownProviderKey() {
	m := s.newManager()

	_, err := m.Acquire(context.Background(), "TokenXX")

	s.Equal(providers.CategoryServerError, providers.GetCategory(err))
	s.Equal(int32(0), s.hits.Load())
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (Token, error) {
	return Token{}, errors.New("connection refused")
}

func (failingStore) Set(context.Context, string, Token, time.Duration) error {
	return errors.New("connection refused")
}

func TestStoreFailureFallsBackToFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"access_token":"abc","expires_in":60}`)
	}))
	defer srv.Close()

	m, err := NewManager(failingStore{}, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	require.NoError(t, m.Register("TokenSE", Credentials{TokenURL: srv.URL}, resilience.New("sweden-token")))

	tok, err := m.Acquire(context.Background(), "TokenSE")

	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
}

func TestEmptyAccessTokenIsPermanentError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"expires_in":60}`)
	}))
	defer srv.Close()

	m, err := NewManager(NewMemoryStore(nil))
	require.NoError(t, err)
	require.NoError(t, m.Register("TokenSE", Credentials{TokenURL: srv.URL}, resilience.New("sweden-token")))

	_, err = m.Acquire(context.Background(), "TokenSE")

	assert.Equal(t, providers.CategoryUpstreamPermanent, providers.GetCategory(err))
}

func TestRegisterValidation(t *testing.T) {
	m, err := NewManager(NewMemoryStore(nil))
	require.NoError(t, err)

	assert.Error(t, m.Register("TokenSE", Credentials{TokenURL: "https://auth.example/token"}, nil))
	assert.Error(t, m.Register("TokenSE", Credentials{TokenURL: "not a url"}, resilience.New("x")))

	_, err = NewManager(nil)
	assert.Error(t, err)
}

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", Token{AccessToken: "a"}, time.Minute))
	tok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "a", tok.AccessToken)

	now = now.Add(time.Minute)
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, store.Set(ctx, "k", Token{AccessToken: "b"}, time.Minute))
	require.NoError(t, store.Set(ctx, "k", Token{AccessToken: "c"}, 0))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestTokenExpired(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tok := Token{ExpiresAt: at}

	assert.False(t, tok.Expired(at.Add(-time.Nanosecond)))
	assert.True(t, tok.Expired(at))
}
