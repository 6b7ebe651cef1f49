package httpclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/restkit/errors"
)

const meterName = "github.com/kbukum/restkit/httpclient"

// Metric instrument names.
const (
	MetricRequestTotal    = "http.client.request.total"
	MetricRequestDuration = "http.client.request.duration"
	MetricRequestActive   = "http.client.request.active"
)

// Metrics returns middleware that records request counts, durations and
// in-flight requests. A nil provider uses the global one. Failed exchanges
// are counted with their error code as the status.
func Metrics(mp metric.MeterProvider) (Middleware, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	total, err := meter.Int64Counter(MetricRequestTotal,
		metric.WithDescription("Total number of HTTP client requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRequestTotal, err)
	}
	duration, err := meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("Duration of HTTP client requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricRequestDuration, err)
	}
	active, err := meter.Int64UpDownCounter(MetricRequestActive,
		metric.WithDescription("Number of HTTP client requests in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRequestActive, err)
	}

	return func(ctx context.Context, req Request, next Handler) (*Response, error) {
		method := attribute.String("method", req.Method)
		active.Add(ctx, 1, metric.WithAttributes(method))
		start := time.Now()

		res, err := next(ctx, req)

		active.Add(ctx, -1, metric.WithAttributes(method))
		status := "error"
		switch {
		case err != nil:
			if ae, ok := errors.As(err); ok {
				status = string(ae.Code)
			}
		case res != nil:
			status = strconv.Itoa(res.StatusCode)
		}
		total.Add(ctx, 1, metric.WithAttributes(method, attribute.String("status", status)))
		duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(method))
		return res, err
	}, nil
}
