// Package httpclient provides a composable HTTP client: every request runs
// through an onion of middleware that ends in a single transport exchange.
//
// The first middleware registered is the outermost layer. It sees the
// request first and the response last. Middleware may rewrite the request
// (by passing a modified copy to next), post-process the response, or answer
// without calling next at all.
//
// The transport never retries and never interprets status codes: 4xx and 5xx
// responses are returned as ordinary responses. Retry, circuit breaking,
// rate limiting, auth, tracing and logging are opt-in middleware.
//
// Subpackages provide protocol-specific layers:
//
//   - rest: JSON envelope client with generic typed verbs
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.example.com",
//	    Timeout: 30 * time.Second,
//	})
//	client.Use(httpclient.RequestID()).
//	    Use(httpclient.Auth(httpclient.BearerAuth("my-token")))
//
//	res, err := client.Get(ctx, "/users", httpclient.Params{"page": 2})
//
// # With Resilience
//
//	client.Use(httpclient.Retry(httpclient.DefaultRetryConfig())).
//	    Use(httpclient.CircuitBreaker(httpclient.DefaultBreakerConfig("my-api")))
package httpclient
