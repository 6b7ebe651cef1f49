package httpclient

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// RateLimit returns middleware that waits for a token from a bucket
// refilled at r tokens per second with the given burst. A cancelled context
// aborts the wait with the context's error.
func RateLimit(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(ctx context.Context, req Request, next Handler) (*Response, error) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

// ConcurrencyLimit returns middleware that allows at most n requests in
// flight through the rest of the chain.
func ConcurrencyLimit(n int64) Middleware {
	sem := semaphore.NewWeighted(n)
	return func(ctx context.Context, req Request, next Handler) (*Response, error) {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer sem.Release(1)
		return next(ctx, req)
	}
}
