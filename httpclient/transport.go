package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/kbukum/restkit/errors"
)

// Doer performs a single HTTP exchange. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewDoer builds the default *http.Client for cfg: a cloned default
// transport with cfg.TLS applied, cfg.Timeout, and a cookie jar unless
// cfg.DisableCookies is set.
func NewDoer(cfg Config) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	}

	hc := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}

	if !cfg.DisableCookies {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("httpclient: create cookie jar: %w", err)
		}
		hc.Jar = jar
	}

	return hc, nil
}

// Transport is the terminal handler of a Client pipeline. It performs
// exactly one exchange per call and never retries.
type Transport struct {
	doer Doer
	cfg  Config
}

// NewTransport creates a terminal handler that sends requests through doer.
func NewTransport(cfg Config, doer Doer) *Transport {
	return &Transport{doer: doer, cfg: cfg}
}

// Handle implements Handler.
func (t *Transport) Handle(ctx context.Context, req Request) (*Response, error) {
	req.URL = t.resolveURL(req.URL)

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, errors.InvalidRequest(fmt.Sprintf("create %s request for %s", req.Method, req.URL), err)
	}

	for k, v := range t.cfg.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if t.cfg.UserAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", t.cfg.UserAgent)
	}

	resp, err := t.doer.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Timeout(req.Method, req.URL, err)
		}
		return nil, errors.Transport(req.Method, req.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Timeout(req.Method, req.URL, err)
		}
		return nil, errors.Transport(req.Method, req.URL, fmt.Errorf("read response body: %w", err))
	}

	finalURL := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Response{
		Request:    req,
		StatusCode: resp.StatusCode,
		URL:        finalURL,
		Headers:    lowerHeaders(resp.Header),
		Body:       data,
	}, nil
}

// resolveURL joins relative URLs onto the configured base URL.
func (t *Transport) resolveURL(u string) string {
	if t.cfg.BaseURL == "" || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return strings.TrimRight(t.cfg.BaseURL, "/") + "/" + strings.TrimLeft(u, "/")
}

// lowerHeaders flattens headers into a map keyed by lower-cased name.
// Repeated values are joined with ", ".
func lowerHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[strings.ToLower(k)] = strings.Join(v, ", ")
		}
	}
	return result
}
