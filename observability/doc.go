// Package observability sets up OpenTelemetry tracing and metrics export
// for restkit applications and reports component health.
//
//	tel, err := observability.Setup(ctx, cfg, observability.Resource{Service: "sessionctl"}, log)
//	defer tel.Shutdown(ctx)
//
//	hc, _ := httpclient.New(httpCfg, httpclient.WithMiddleware(
//	    httpclient.Tracing(tel.TracerProvider()),
//	))
//
// With exporting disabled, Setup returns no-op providers, so callers wire the
// same middleware either way.
package observability
