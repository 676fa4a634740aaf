package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func noFile(string) ([]byte, error) { return nil, os.ErrNotExist }

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(env(nil), noFile)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 4, cfg.Upstream.FailureThreshold)
	assert.Zero(t, cfg.Upstream.OpenDuration)
	assert.True(t, cfg.Token.Caching)
	assert.Equal(t, TokenStoreMemory, cfg.Token.Store)
	assert.True(t, cfg.Norway.SubunitFallback)
	assert.Empty(t, cfg.Sweden.URL, "sweden is off unless configured")
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	cfg, err := load(env(map[string]string{
		"BREAKER_OPEN_CIRCUIT_TIME": "30",
		"TOKEN_CACHING":             "false",
		"TOKEN_STORE":               "redis",
		"REDIS_URL":                 "redis://localhost:6379/0",
		"SWEDEN_URL":                "https://api.bolagsverket.se/lookup",
		"SWEDEN_TOKEN_URL":          "https://auth.bolagsverket.se/token",
		"SWEDEN_CLIENT_ID":          "client",
		"SWEDEN_CLIENT_SECRET":      "secret",
		"LOG_FORMAT":                "text",
	}), noFile)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Upstream.OpenDuration)
	assert.False(t, cfg.Token.Caching)
	assert.Equal(t, TokenStoreRedis, cfg.Token.Store)
	assert.Equal(t, "client", cfg.Sweden.ClientID)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadFileThenEnvironment(t *testing.T) {
	file := []byte(`
server:
  addr: ":9090"
upstream:
  timeout: 10s
  openDuration: 1m
finland:
  gatewayUrl: https://nsg.example.com/fi
  proxyUrl: https://proxy.example.com/{0}
iceland:
  url: https://api.skatturinn.is/company/{0}
  subscriptionKey: key
`)
	read := func(path string) ([]byte, error) {
		assert.Equal(t, "/etc/nsg.yaml", path)
		return file, nil
	}

	cfg, err := load(env(map[string]string{
		"NSG_CONFIG_FILE": "/etc/nsg.yaml",
		"NSG_ADDR":        ":7070",
	}), read)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr, "environment wins over the file")
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, time.Minute, cfg.Upstream.OpenDuration)
	assert.Equal(t, "https://nsg.example.com/fi", cfg.Finland.GatewayURL)
	assert.Equal(t, "key", cfg.Iceland.SubscriptionKey)
	assert.Equal(t, 4, cfg.Upstream.FailureThreshold, "unset file keys keep defaults")
}

func TestLoadErrors(t *testing.T) {
	t.Run("unreadable file", func(t *testing.T) {
		_, err := load(env(map[string]string{"NSG_CONFIG_FILE": "missing.yaml"}), noFile)
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("malformed file", func(t *testing.T) {
		read := func(string) ([]byte, error) { return []byte("server: [unclosed"), nil }
		_, err := load(env(map[string]string{"NSG_CONFIG_FILE": "bad.yaml"}), read)
		assert.ErrorContains(t, err, "parse config file")
	})

	t.Run("bad numbers are reported", func(t *testing.T) {
		_, err := load(env(map[string]string{
			"BREAKER_OPEN_CIRCUIT_TIME": "soon",
			"TOKEN_CACHING":             "maybe",
		}), noFile)
		assert.ErrorContains(t, err, "BREAKER_OPEN_CIRCUIT_TIME")
		assert.ErrorContains(t, err, "TOKEN_CACHING")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"redis store without url", func(c *Config) { c.Token.Store = TokenStoreRedis }, "redis url is required"},
		{"unknown store", func(c *Config) { c.Token.Store = "memcached" }, "must be memory or redis"},
		{"zero threshold", func(c *Config) { c.Upstream.FailureThreshold = 0 }, "at least 1"},
		{"zero timeout", func(c *Config) { c.Upstream.Timeout = 0 }, "timeout must be positive"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "json or text"},
		{"sweden without credentials", func(c *Config) { c.Sweden.URL = "https://se.example.com" }, "sweden requires"},
		{"iceland without key", func(c *Config) { c.Iceland.URL = "https://is.example.com/{0}" }, "subscription key"},
		{"relative norway url", func(c *Config) { c.Norway.BaseURL = "brreg" }, "norway url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}

	assert.NoError(t, Default().Validate())
}
