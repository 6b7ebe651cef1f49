package httpclient

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kbukum/restkit/httpclient"

// Tracing returns middleware that wraps each exchange in a client span and
// injects the trace context into the outgoing headers. A nil provider uses
// the global one.
func Tracing(tp trace.TracerProvider) Middleware {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(tracerName)

	return func(ctx context.Context, req Request, next Handler) (*Response, error) {
		ctx, span := tracer.Start(ctx, "HTTP "+req.Method,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("http.request.method", req.Method),
				attribute.String("url.full", req.URL),
			),
		)
		defer span.End()

		carrier := propagation.MapCarrier{}
		otel.GetTextMapPropagator().Inject(ctx, carrier)
		if len(carrier) > 0 {
			req = req.Clone()
			if req.Headers == nil {
				req.Headers = make(map[string]string, len(carrier))
			}
			for k, v := range carrier {
				req.Headers[k] = v
			}
		}

		res, err := next(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return res, err
		}

		span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))
		if res.StatusCode >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", res.StatusCode))
		}
		return res, nil
	}
}
