package httpclient

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/kbukum/restkit/errors"
)

// RetryConfig configures the opt-in Retry middleware.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts uint
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration
	// Multiplier grows the delay after each retry.
	Multiplier float64
	// Jitter randomizes each delay by up to this fraction (0.0 to 1.0).
	Jitter float64
	// RetryIf decides whether an error is worth another attempt.
	// Defaults to errors.IsRetryable.
	RetryIf func(error) bool
	// OnRetry is called before each retry.
	OnRetry func(err error, wait time.Duration)
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Multiplier:     2.0,
		Jitter:         0.1,
		RetryIf:        errors.IsRetryable,
	}
}

// Retry returns middleware that re-sends a request through the rest of the
// chain while it fails with a retryable error. Nothing installs it by
// default; callers opt in with Use.
func Retry(cfg RetryConfig) Middleware {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryIf == nil {
		cfg.RetryIf = errors.IsRetryable
	}

	return func(ctx context.Context, req Request, next Handler) (*Response, error) {
		b := backoff.NewExponentialBackOff()
		if cfg.InitialBackoff > 0 {
			b.InitialInterval = cfg.InitialBackoff
		}
		if cfg.MaxBackoff > 0 {
			b.MaxInterval = cfg.MaxBackoff
		}
		if cfg.Multiplier > 0 {
			b.Multiplier = cfg.Multiplier
		}
		b.RandomizationFactor = cfg.Jitter

		opts := []backoff.RetryOption{
			backoff.WithBackOff(b),
			backoff.WithMaxTries(cfg.MaxAttempts),
		}
		if cfg.OnRetry != nil {
			opts = append(opts, backoff.WithNotify(cfg.OnRetry))
		}

		return backoff.Retry(ctx, func() (*Response, error) {
			res, err := next(ctx, req)
			if err != nil && !cfg.RetryIf(err) {
				return nil, backoff.Permanent(err)
			}
			return res, err
		}, opts...)
	}
}
