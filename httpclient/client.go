package httpclient

import (
	"context"
	"net/http"
	"slices"
	"sync"

	"github.com/kbukum/restkit/logger"
)

// Client sends requests through a chain of middleware that ends in a
// single transport exchange.
//
// Middleware registered with Use wraps everything registered after it: the
// first registered middleware sees the request first and the response last.
// Registration is expected to finish before requests are issued, but Use is
// safe to call concurrently with Send.
type Client struct {
	config   Config
	log      *logger.Logger
	doer     Doer
	terminal Handler

	mu         sync.RWMutex
	middleware []Middleware
	pipeline   Handler
}

// Option configures a Client.
type Option func(*Client)

// WithDoer replaces the default *http.Client built from Config.
func WithDoer(d Doer) Option {
	return func(c *Client) { c.doer = d }
}

// WithLogger sets the logger used by the client.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMiddleware registers middleware at construction, in order.
func WithMiddleware(m ...Middleware) Option {
	return func(c *Client) { c.middleware = append(c.middleware, m...) }
}

// New creates a Client with the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{config: cfg}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logger.OrNop(c.log).WithComponent("httpclient")

	if c.doer == nil {
		hc, err := NewDoer(cfg)
		if err != nil {
			return nil, err
		}
		c.doer = hc
	}

	c.terminal = NewTransport(cfg, c.doer).Handle
	c.pipeline = Compose(c.terminal, c.middleware...)

	c.log.Debug("http client created", map[string]interface{}{
		"name":       cfg.Name,
		"base_url":   cfg.BaseURL,
		"middleware": len(c.middleware),
	})
	return c, nil
}

// Use registers one middleware and rebuilds the pipeline. It returns the
// client so calls can be chained.
func (c *Client) Use(m Middleware) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware = append(c.middleware, m)
	c.pipeline = Compose(c.terminal, c.middleware...)
	return c
}

// Chain returns a copy of the registered middleware in registration order.
func (c *Client) Chain() []Middleware {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.middleware)
}

// Config returns the client's configuration.
func (c *Client) Config() Config {
	return c.config
}

// Send runs req through the full pipeline.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	c.mu.RLock()
	pipeline := c.pipeline
	c.mu.RUnlock()
	return pipeline(ctx, req)
}

// Get sends a GET request with params appended to the query string.
func (c *Client) Get(ctx context.Context, url string, params Params) (*Response, error) {
	return c.Send(ctx, newRequest(http.MethodGet, url, params, nil))
}

// Delete sends a DELETE request with params appended to the query string.
func (c *Client) Delete(ctx context.Context, url string, params Params) (*Response, error) {
	return c.Send(ctx, newRequest(http.MethodDelete, url, params, nil))
}

// Post sends a POST request carrying content.
func (c *Client) Post(ctx context.Context, url string, content *Content, params Params) (*Response, error) {
	return c.Send(ctx, newRequest(http.MethodPost, url, params, content))
}

// Put sends a PUT request carrying content.
func (c *Client) Put(ctx context.Context, url string, content *Content, params Params) (*Response, error) {
	return c.Send(ctx, newRequest(http.MethodPut, url, params, content))
}

// Patch sends a PATCH request carrying content.
func (c *Client) Patch(ctx context.Context, url string, content *Content, params Params) (*Response, error) {
	return c.Send(ctx, newRequest(http.MethodPatch, url, params, content))
}

func newRequest(method, url string, params Params, content *Content) Request {
	req := Request{
		Method: method,
		URL:    AppendQuery(url, params),
	}
	if content != nil {
		req.Headers = map[string]string{"Content-Type": content.ContentType}
		req.Body = content.Body
	}
	return req
}
