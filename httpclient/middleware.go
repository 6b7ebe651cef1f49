package httpclient

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/restkit/logger"
)

// HeaderRequestID is the header set by the RequestID middleware.
const HeaderRequestID = "X-Request-ID"

// Logging returns middleware that logs each exchange with its method, URL,
// status and duration. Failed exchanges are logged at error level.
func Logging(log *logger.Logger) Middleware {
	log = logger.OrNop(log)
	return func(ctx context.Context, req Request, next Handler) (*Response, error) {
		start := time.Now()
		res, err := next(ctx, req)

		fields := logger.MergeWithDuration(map[string]interface{}{
			logger.FieldMethod: req.Method,
			logger.FieldURL:    req.URL,
		}, time.Since(start))

		l := log.WithContext(ctx)
		if err != nil {
			fields[logger.FieldError] = err
			l.Error("http request failed", fields)
			return res, err
		}
		fields[logger.FieldStatus] = res.StatusCode
		l.Debug("http request completed", fields)
		return res, nil
	}
}

// DefaultHeaders returns middleware that adds each header the request does
// not already carry.
func DefaultHeaders(headers map[string]string) Middleware {
	return func(ctx context.Context, req Request, next Handler) (*Response, error) {
		for k, v := range headers {
			if _, ok := req.Header(k); !ok {
				req = req.WithHeader(k, v)
			}
		}
		return next(ctx, req)
	}
}

// RequestID returns middleware that tags each request with an X-Request-ID
// header (a new UUID unless the request already has one) and stores the ID
// in the context for logging.
func RequestID() Middleware {
	return func(ctx context.Context, req Request, next Handler) (*Response, error) {
		id, ok := req.Header(HeaderRequestID)
		if !ok || id == "" {
			id = uuid.NewString()
			req = req.WithHeader(HeaderRequestID, id)
		}
		return next(logger.ContextWithRequestID(ctx, id), req)
	}
}

// Timeout returns middleware that bounds the rest of the chain by d.
func Timeout(d time.Duration) Middleware {
	return func(ctx context.Context, req Request, next Handler) (*Response, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return next(ctx, req)
	}
}

// Responder produces a canned response or error for a request. Returning
// nil for both lets the request continue down the chain.
type Responder func(req Request) (*Response, error)

// Mock returns middleware that answers matching requests itself without
// calling the rest of the chain. The caller gets a copy of the responder's
// response with req as its Request and URL when those are unset, so a canned
// response can be shared between requests.
func Mock(responder Responder) Middleware {
	return func(ctx context.Context, req Request, next Handler) (*Response, error) {
		res, err := responder(req)
		if res == nil && err == nil {
			return next(ctx, req)
		}
		if res == nil {
			return nil, err
		}
		out := *res
		if out.Request.Method == "" {
			out.Request = req
		}
		if out.URL == "" {
			out.URL = req.URL
		}
		if out.Headers == nil {
			out.Headers = map[string]string{}
		}
		return &out, err
	}
}

// JSONResponse builds a response with a JSON content type, for use with Mock.
func JSONResponse(status int, body string) *Response {
	return &Response{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json; charset=utf-8"},
		Body:       []byte(body),
	}
}
