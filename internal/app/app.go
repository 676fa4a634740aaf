// Package app assembles the gateway from configuration: one resilience client
// per upstream, the jurisdiction adapters, the dispatcher and the HTTP router.
// The server binary and the CLI share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nsg/internal/platform/config"
	httpmetrics "nsg/internal/platform/metrics"
	"nsg/internal/platform/middleware"
	platformredis "nsg/internal/platform/redis"
	"nsg/internal/registry/dispatcher"
	"nsg/internal/registry/handler"
	"nsg/internal/registry/metrics"
	"nsg/internal/registry/providers"
	"nsg/internal/registry/providers/denmark"
	"nsg/internal/registry/providers/finland"
	"nsg/internal/registry/providers/iceland"
	"nsg/internal/registry/providers/norway"
	"nsg/internal/registry/providers/sweden"
	"nsg/internal/registry/resilience"
	"nsg/internal/registry/token"
	"nsg/pkg/platform/middleware/metadata"
	"nsg/pkg/platform/middleware/requestid"
	"nsg/pkg/platform/middleware/requesttime"
)

// Upstream client names. They label breakers, logs and metrics.
const (
	ClientNorway         = "norway"
	ClientFinland        = "finland"
	ClientFinlandGateway = "finland-gateway"
	ClientSweden         = "sweden"
	ClientSwedenToken    = "sweden-token"
	ClientIceland        = "iceland"
)

// App is a fully wired gateway.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	Registry   *prometheus.Registry
	Dispatcher *dispatcher.Dispatcher
	Tokens     *token.Manager
	Router     http.Handler

	clients map[string]*resilience.Client
	redis   *platformredis.Client
}

// Build wires the gateway. ctx bounds start-up work such as the Redis ping.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		clients:  make(map[string]*resilience.Client),
	}
	m := metrics.New(reg)

	tokens, err := a.buildTokens(ctx, m)
	if err != nil {
		return nil, err
	}
	a.Tokens = tokens

	registry, schemes, err := a.buildProviders(m)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	opts := []dispatcher.Option{dispatcher.WithLogger(logger), dispatcher.WithMetrics(m)}
	for icd, p := range schemes {
		opts = append(opts, dispatcher.WithScheme(icd, p))
	}
	d, err := dispatcher.New(registry, opts...)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("build dispatcher: %w", err)
	}
	a.Dispatcher = d
	a.Router = a.router(httpmetrics.New(reg))
	return a, nil
}

func (a *App) client(name string, opts ...resilience.Option) *resilience.Client {
	cfg := a.Config.Upstream
	base := []resilience.Option{
		resilience.WithTimeout(cfg.Timeout),
		resilience.WithBreakerSettings(cfg.FailureThreshold, cfg.OpenDuration),
		resilience.WithLogger(a.Logger),
	}
	c := resilience.New(name, append(base, opts...)...)
	a.clients[name] = c
	return c
}

func (a *App) buildTokens(ctx context.Context, m *metrics.Metrics) (*token.Manager, error) {
	var store token.Store
	switch a.Config.Token.Store {
	case config.TokenStoreRedis:
		rc, err := platformredis.New(ctx, a.Config.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect token store: %w", err)
		}
		if rc == nil {
			return nil, errors.New("redis token store selected without a redis url")
		}
		a.redis = rc
		store = token.NewRedisStore(rc.Client, token.WithKeyPrefix(a.Config.Redis.KeyPrefix))
	default:
		store = token.NewMemoryStore(nil)
	}
	return token.NewManager(store,
		token.WithCaching(a.Config.Token.Caching),
		token.WithLogger(a.Logger),
		token.WithMetrics(m),
	)
}

// buildProviders registers the country route adapters and returns the ICD
// scheme table next to them.
func (a *App) buildProviders(m *metrics.Metrics) (*providers.Registry, map[string]providers.Provider, error) {
	cfg := a.Config
	registry := providers.NewRegistry()
	schemes := make(map[string]providers.Provider)

	no := norway.New(a.client(ClientNorway, resilience.WithMetrics(m)),
		norway.WithBaseURL(cfg.Norway.BaseURL),
		norway.WithSubunitFallback(cfg.Norway.SubunitFallback),
		norway.WithLogger(a.Logger),
	)
	schemes[dispatcher.ICDNorway] = no
	toRegister := []providers.Provider{no}

	bis := finland.NewBIS(a.client(ClientFinland, resilience.WithMetrics(m)),
		finland.WithBISURL(cfg.Finland.BISURL),
		finland.WithBISLogger(a.Logger),
	)
	schemes[dispatcher.ICDFinland] = bis
	if cfg.Finland.GatewayURL != "" {
		target := cfg.Finland.GatewayURL
		if cfg.Finland.ProxyURL != "" {
			target = finland.ProxyTarget(cfg.Finland.ProxyURL, cfg.Finland.GatewayURL)
		}
		gw := a.client(ClientFinlandGateway,
			resilience.WithMetrics(m),
			resilience.WithHTTPClient(finland.GatewayHTTPClient()),
		)
		toRegister = append(toRegister, finland.NewGateway(gw, target, a.Logger))
	} else {
		toRegister = append(toRegister, bis)
	}

	if cfg.Sweden.URL != "" {
		err := a.Tokens.Register(sweden.TokenKey, token.Credentials{
			TokenURL:     cfg.Sweden.TokenURL,
			ClientID:     cfg.Sweden.ClientID,
			ClientSecret: cfg.Sweden.ClientSecret,
			Scope:        cfg.Sweden.Scope,
		}, a.client(ClientSwedenToken, resilience.WithMetrics(m)))
		if err != nil {
			return nil, nil, err
		}
		toRegister = append(toRegister, sweden.New(a.client(ClientSweden, resilience.WithMetrics(m)), a.Tokens, cfg.Sweden.URL, a.Logger))
	}

	if cfg.Iceland.URL != "" {
		toRegister = append(toRegister, iceland.New(a.client(ClientIceland, resilience.WithMetrics(m)), cfg.Iceland.URL, cfg.Iceland.SubscriptionKey, a.Logger))
	}

	if cfg.Denmark.Enabled {
		toRegister = append(toRegister, denmark.New())
	}

	for _, p := range toRegister {
		if err := registry.Register(p); err != nil {
			return nil, nil, fmt.Errorf("register provider: %w", err)
		}
	}
	for _, p := range registry.All() {
		a.Logger.Info("registry adapter enabled", "jurisdiction", p.Jurisdiction().String())
	}
	return registry, schemes, nil
}

func (a *App) router(m *httpmetrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Recovery(a.Logger))
	r.Use(middleware.Logger(a.Logger))
	r.Use(middleware.Instrument(m))

	handler.New(a.Dispatcher, a.Logger).Register(r)
	if a.Config.Metrics.Enabled {
		r.Handle(a.Config.Metrics.Path, promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))
	}
	return r
}

// Client returns the named upstream client, for probes and tests.
func (a *App) Client(name string) (*resilience.Client, bool) {
	c, ok := a.clients[name]
	return c, ok
}

// Close releases connections opened by Build.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
