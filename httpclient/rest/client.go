package rest

import (
	"context"
	"net/http"
	"strings"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/httpclient"
)

// Client is a JSON envelope client that sends through a base HTTP client.
// Every request carries Accept: application/json. Middleware registered on
// the base client runs for REST calls too.
type Client struct {
	http *httpclient.Client
}

// New creates a REST client on top of hc.
func New(hc *httpclient.Client) *Client {
	return &Client{http: hc}
}

// HTTP returns the underlying HTTP client.
func (c *Client) HTTP() *httpclient.Client {
	return c.http
}

// RequestOption configures a single REST request.
type RequestOption func(*httpclient.Request)

// WithHeaders adds headers to the request. They override the JSON headers
// regardless of the case they are given in.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *httpclient.Request) {
		for k, v := range headers {
			for existing := range r.Headers {
				if strings.EqualFold(existing, k) {
					delete(r.Headers, existing)
				}
			}
			r.Headers[k] = v
		}
	}
}

// Get performs a GET request and decodes the envelope into Envelope[T].
func Get[T any](ctx context.Context, c *Client, url string, params httpclient.Params, opts ...RequestOption) (*Envelope[T], error) {
	return do[T](ctx, c, http.MethodGet, url, params, nil, false, opts)
}

// Delete performs a DELETE request and decodes the envelope into Envelope[T].
func Delete[T any](ctx context.Context, c *Client, url string, params httpclient.Params, opts ...RequestOption) (*Envelope[T], error) {
	return do[T](ctx, c, http.MethodDelete, url, params, nil, false, opts)
}

// Post performs a POST request with a JSON body. A nil body sends no payload.
func Post[T any](ctx context.Context, c *Client, url string, body any, params httpclient.Params, opts ...RequestOption) (*Envelope[T], error) {
	return do[T](ctx, c, http.MethodPost, url, params, body, true, opts)
}

// Put performs a PUT request with a JSON body. A nil body sends no payload.
func Put[T any](ctx context.Context, c *Client, url string, body any, params httpclient.Params, opts ...RequestOption) (*Envelope[T], error) {
	return do[T](ctx, c, http.MethodPut, url, params, body, true, opts)
}

// Patch performs a PATCH request with a JSON body. A nil body sends no payload.
func Patch[T any](ctx context.Context, c *Client, url string, body any, params httpclient.Params, opts ...RequestOption) (*Envelope[T], error) {
	return do[T](ctx, c, http.MethodPatch, url, params, body, true, opts)
}

// do sends one request and interprets the envelope in the response.
func do[T any](ctx context.Context, c *Client, method, url string, params httpclient.Params, body any, hasBody bool, opts []RequestOption) (*Envelope[T], error) {
	req := httpclient.Request{
		Method:  method,
		URL:     httpclient.AppendQuery(url, params),
		Headers: map[string]string{"Accept": MediaTypeJSON},
	}

	if hasBody {
		content, err := httpclient.JSONContent(body)
		if err != nil {
			return nil, errors.InvalidRequest("encode request body", err)
		}
		req.Headers["Content-Type"] = content.ContentType
		req.Body = content.Body
	}

	for _, opt := range opts {
		opt(&req)
	}

	res, err := c.http.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return Decode[T](res)
}
