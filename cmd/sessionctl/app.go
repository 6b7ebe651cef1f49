package main

import (
	"context"
	"io"

	"github.com/kbukum/restkit/httpclient"
	"github.com/kbukum/restkit/httpclient/rest"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/observability"
	"github.com/kbukum/restkit/session"
	"github.com/kbukum/restkit/storage"

	_ "github.com/kbukum/restkit/storage/encrypted"
	_ "github.com/kbukum/restkit/storage/local"
	_ "github.com/kbukum/restkit/storage/memory"
	_ "github.com/kbukum/restkit/storage/redis"
)

// User is the session user as the API returns it. sessionctl does not
// assume a shape.
type User = map[string]any

// app holds everything a command needs.
type app struct {
	cfg      *Config
	log      *logger.Logger
	tel      *observability.Telemetry
	medium   storage.Medium
	store    *storage.Store
	http     *httpclient.Client
	sessions *session.Service[User]
}

func newApp(ctx context.Context, cfg *Config, log *logger.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	tel, err := observability.Setup(ctx, cfg.Observability, observability.Resource{
		Service:     cfg.Name,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	}, log)
	if err != nil {
		return nil, err
	}
	a.tel = tel

	mws, err := middleware(cfg, log, tel)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	a.http, err = httpclient.New(cfg.HTTP, httpclient.WithLogger(log), httpclient.WithMiddleware(mws...))
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	a.medium, err = storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	a.store = storage.New(ctx, a.medium, storage.WithKey(cfg.Storage.Key), storage.WithLogger(log))

	a.sessions = session.New[User](rest.New(a.http), a.store,
		session.WithPath(cfg.Session.Path),
		session.WithUserKey(cfg.Session.UserKey),
		session.WithLogger(log),
	)
	return a, nil
}

// middleware builds the client chain. The first entry is outermost.
func middleware(cfg *Config, log *logger.Logger, tel *observability.Telemetry) ([]httpclient.Middleware, error) {
	metrics, err := httpclient.Metrics(tel.MeterProvider())
	if err != nil {
		return nil, err
	}
	mws := []httpclient.Middleware{
		httpclient.RequestID(),
		httpclient.Tracing(tel.TracerProvider()),
		metrics,
		httpclient.Logging(log),
	}

	r := cfg.Resilience
	if r.RetryAttempts > 1 {
		rc := httpclient.DefaultRetryConfig()
		rc.MaxAttempts = r.RetryAttempts
		mws = append(mws, httpclient.Retry(rc))
	}
	if r.BreakerFailures > 0 {
		bc := httpclient.DefaultBreakerConfig(cfg.HTTP.Name)
		bc.MaxFailures = r.BreakerFailures
		bc.Cooldown = r.BreakerCooldown
		mws = append(mws, httpclient.CircuitBreaker(bc))
	}
	if r.RateLimit > 0 {
		mws = append(mws, httpclient.RateLimit(r.RateLimit, r.RateBurst))
	}
	if r.MaxConcurrent > 0 {
		mws = append(mws, httpclient.ConcurrencyLimit(r.MaxConcurrent))
	}
	if cfg.Token != "" {
		mws = append(mws, httpclient.Auth(httpclient.BearerAuth(cfg.Token)))
	}
	return mws, nil
}

func (a *app) close(ctx context.Context) {
	if c, ok := a.medium.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.log.Warn("failed to close storage", map[string]interface{}{logger.FieldError: err})
		}
	}
	if a.tel != nil {
		if err := a.tel.Shutdown(ctx); err != nil {
			a.log.Warn("failed to flush telemetry", map[string]interface{}{logger.FieldError: err})
		}
	}
}
