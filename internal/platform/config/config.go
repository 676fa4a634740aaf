// Package config loads the gateway configuration. Values come from built-in
// defaults, then an optional YAML file named by NSG_CONFIG_FILE, then
// environment variables. The result is validated once and treated as immutable.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Token store backends.
const (
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"
)

// Config is the full gateway configuration.
type Config struct {
	Server   Server         `yaml:"server"`
	Log      Log            `yaml:"log"`
	Upstream Upstream       `yaml:"upstream"`
	Token    Token          `yaml:"token"`
	Redis    RedisConfig    `yaml:"redis"`
	Norway   NorwayConfig   `yaml:"norway"`
	Finland  FinlandConfig  `yaml:"finland"`
	Sweden   SwedenConfig   `yaml:"sweden"`
	Iceland  IcelandConfig  `yaml:"iceland"`
	Denmark  DenmarkConfig  `yaml:"denmark"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr string `yaml:"addr"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Upstream holds the resilience settings shared by every outbound client.
type Upstream struct {
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold int           `yaml:"failureThreshold"`
	OpenDuration     time.Duration `yaml:"openDuration"`
}

// Token configures bearer token caching.
type Token struct {
	Caching bool   `yaml:"caching"`
	Store   string `yaml:"store"`
}

// RedisConfig holds connection settings for the shared token store.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"poolSize"`
	MinIdleConns int           `yaml:"minIdleConns"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	KeyPrefix    string        `yaml:"keyPrefix"`
}

type NorwayConfig struct {
	BaseURL         string `yaml:"baseUrl"`
	SubunitFallback bool   `yaml:"subunitFallback"`
}

// FinlandConfig configures both Finnish routes. The gateway route is used for
// country lookups when GatewayURL is set; BIS always serves ICD 0212.
type FinlandConfig struct {
	BISURL     string `yaml:"bisUrl"`
	GatewayURL string `yaml:"gatewayUrl"`
	ProxyURL   string `yaml:"proxyUrl"`
}

type SwedenConfig struct {
	URL          string `yaml:"url"`
	TokenURL     string `yaml:"tokenUrl"`
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	Scope        string `yaml:"scope"`
}

type IcelandConfig struct {
	URL             string `yaml:"url"`
	SubscriptionKey string `yaml:"subscriptionKey"`
}

// DenmarkConfig toggles the placeholder adapter.
type DenmarkConfig struct {
	Enabled bool `yaml:"enabled"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type ShutdownConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: Server{Addr: ":8080"},
		Log:    Log{Level: "info", Format: "json"},
		Upstream: Upstream{
			Timeout:          30 * time.Second,
			FailureThreshold: 4,
		},
		Token: Token{Caching: true, Store: TokenStoreMemory},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			KeyPrefix:    "nsg:token:",
		},
		Norway: NorwayConfig{
			BaseURL:         "https://data.brreg.no/enhetsregisteret/api",
			SubunitFallback: true,
		},
		Finland:  FinlandConfig{BISURL: "https://avoindata.prh.fi/bis/v1"},
		Denmark:  DenmarkConfig{Enabled: true},
		Metrics:  MetricsConfig{Enabled: true, Path: "/metrics"},
		Shutdown: ShutdownConfig{Timeout: 10 * time.Second},
	}
}

// Load builds the configuration from defaults, the optional file and the
// process environment.
func Load() (Config, error) {
	return load(os.Getenv, os.ReadFile)
}

func load(getenv func(string) string, readFile func(string) ([]byte, error)) (Config, error) {
	cfg := Default()
	if path := getenv("NSG_CONFIG_FILE"); path != "" {
		raw, err := readFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	var errs []error
	boolean := func(key string, dst *bool) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	seconds := func(key string, dst *time.Duration) {
		n := -1
		integer(key, &n)
		if n >= 0 {
			*dst = time.Duration(n) * time.Second
		}
	}

	str("NSG_ADDR", &cfg.Server.Addr)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)

	seconds("UPSTREAM_TIMEOUT", &cfg.Upstream.Timeout)
	integer("BREAKER_FAILURE_THRESHOLD", &cfg.Upstream.FailureThreshold)
	seconds("BREAKER_OPEN_CIRCUIT_TIME", &cfg.Upstream.OpenDuration)

	boolean("TOKEN_CACHING", &cfg.Token.Caching)
	str("TOKEN_STORE", &cfg.Token.Store)
	str("REDIS_URL", &cfg.Redis.URL)
	str("REDIS_KEY_PREFIX", &cfg.Redis.KeyPrefix)

	str("NORWAY_URL", &cfg.Norway.BaseURL)
	boolean("NORWAY_SUBUNIT_FALLBACK", &cfg.Norway.SubunitFallback)
	str("FINLAND_BIS_URL", &cfg.Finland.BISURL)
	str("FINLAND_GATEWAY_URL", &cfg.Finland.GatewayURL)
	str("FINLAND_PROXY_URL", &cfg.Finland.ProxyURL)
	str("SWEDEN_URL", &cfg.Sweden.URL)
	str("SWEDEN_TOKEN_URL", &cfg.Sweden.TokenURL)
	str("SWEDEN_CLIENT_ID", &cfg.Sweden.ClientID)
	str("SWEDEN_CLIENT_SECRET", &cfg.Sweden.ClientSecret)
	str("SWEDEN_SCOPE", &cfg.Sweden.Scope)
	str("ICELAND_URL", &cfg.Iceland.URL)
	str("ICELAND_SUBSCRIPTION_KEY", &cfg.Iceland.SubscriptionKey)
	boolean("DENMARK_ENABLED", &cfg.Denmark.Enabled)

	boolean("METRICS_ENABLED", &cfg.Metrics.Enabled)
	seconds("SHUTDOWN_TIMEOUT", &cfg.Shutdown.Timeout)

	return errors.Join(errs...)
}

// Validate reports every inconsistent setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server address is required"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log format %q must be json or text", c.Log.Format))
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, errors.New("upstream timeout must be positive"))
	}
	if c.Upstream.FailureThreshold < 1 {
		errs = append(errs, errors.New("breaker failure threshold must be at least 1"))
	}
	if c.Upstream.OpenDuration < 0 {
		errs = append(errs, errors.New("breaker open duration must not be negative"))
	}
	switch c.Token.Store {
	case TokenStoreMemory:
	case TokenStoreRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("redis url is required for the redis token store"))
		}
	default:
		errs = append(errs, fmt.Errorf("token store %q must be memory or redis", c.Token.Store))
	}

	for name, raw := range map[string]string{
		"norway url":          c.Norway.BaseURL,
		"finland bis url":     c.Finland.BISURL,
		"finland gateway url": c.Finland.GatewayURL,
		"finland proxy url":   c.Finland.ProxyURL,
		"sweden url":          c.Sweden.URL,
		"sweden token url":    c.Sweden.TokenURL,
	} {
		if raw == "" {
			continue
		}
		if _, err := url.ParseRequestURI(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if c.Sweden.URL != "" && (c.Sweden.TokenURL == "" || c.Sweden.ClientID == "" || c.Sweden.ClientSecret == "") {
		errs = append(errs, errors.New("sweden requires token url, client id and client secret"))
	}
	if c.Iceland.URL != "" && c.Iceland.SubscriptionKey == "" {
		errs = append(errs, errors.New("iceland requires a subscription key"))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics path %q must start with /", c.Metrics.Path))
	}
	return errors.Join(errs...)
}
