package httpclient

import (
	"context"
	"encoding/json"
	"maps"
	"strings"
)

// Request describes an outbound HTTP request.
//
// A Request handed to a Handler is treated as immutable: middleware that
// needs a different request builds one with Clone, WithHeader or WithURL and
// passes the copy to the next handler.
type Request struct {
	// Method is the HTTP method (GET, POST, PUT, PATCH, DELETE, etc).
	Method string
	// URL is absolute, or relative to the client's BaseURL.
	URL string
	// Headers are request-specific headers (merged over client defaults).
	Headers map[string]string
	// Body is the raw request payload. Nil means no body.
	Body []byte
}

// Clone returns a copy of r with its own headers map and body slice.
func (r Request) Clone() Request {
	c := r
	if r.Headers != nil {
		c.Headers = maps.Clone(r.Headers)
	}
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	return c
}

// WithHeader returns a copy of r with the header set.
func (r Request) WithHeader(key, value string) Request {
	c := r.Clone()
	if c.Headers == nil {
		c.Headers = make(map[string]string, 1)
	}
	c.Headers[key] = value
	return c
}

// WithURL returns a copy of r targeting url.
func (r Request) WithURL(url string) Request {
	c := r.Clone()
	c.URL = url
	return c
}

// Header returns the value of the named header, matching case-insensitively.
func (r Request) Header(name string) (string, bool) {
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// Response is the result of an HTTP exchange.
type Response struct {
	// Request is the request that produced this response, as seen by the
	// transport (after every middleware ran).
	Request Request
	// StatusCode is the HTTP status code.
	StatusCode int
	// URL is the final URL after redirects.
	URL string
	// Headers are the response headers, keyed by lower-cased name.
	Headers map[string]string
	// Body is the raw response body.
	Body []byte
}

// Header returns the named response header. Names are matched lower-cased.
func (r *Response) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

// ContentType returns the content-type response header.
func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

// IsJSON reports whether the declared content type contains "json".
func (r *Response) IsJSON() bool {
	return strings.Contains(strings.ToLower(r.ContentType()), "json")
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Value returns the body read according to its declared content type: the
// parsed JSON value when the content type contains "json", otherwise the text.
func (r *Response) Value() (any, error) {
	if !r.IsJSON() {
		return r.Text(), nil
	}
	if len(r.Body) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Handler performs a request and returns its response.
type Handler func(ctx context.Context, req Request) (*Response, error)

// Middleware wraps a Handler. It must either call next exactly once or
// return a response or error of its own without calling it.
type Middleware func(ctx context.Context, req Request, next Handler) (*Response, error)
