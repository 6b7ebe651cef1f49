package observability

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/kbukum/restkit/logger"
)

// Telemetry holds the providers created by Setup.
type Telemetry struct {
	tracer    trace.TracerProvider
	meter     metric.MeterProvider
	shutdowns []func(context.Context) error
}

// Setup initializes tracing and metrics export from cfg. With cfg.Enabled
// false it returns no-op providers and installs nothing globally.
func Setup(ctx context.Context, cfg Config, res Resource, log *logger.Logger) (*Telemetry, error) {
	log = logger.OrNop(log).WithComponent("observability")
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !cfg.Enabled {
		log.Debug("telemetry export disabled")
		return &Telemetry{
			tracer: tracenoop.NewTracerProvider(),
			meter:  metricnoop.NewMeterProvider(),
		}, nil
	}

	tp, err := InitTracer(ctx, cfg, res)
	if err != nil {
		return nil, err
	}
	mp, err := InitMeter(ctx, cfg, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	log.Info("telemetry initialized", map[string]interface{}{
		"service":     res.Service,
		"endpoint":    cfg.Endpoint,
		"sample_rate": cfg.SampleRate,
	})
	return &Telemetry{
		tracer:    tp,
		meter:     mp,
		shutdowns: []func(context.Context) error{tp.Shutdown, mp.Shutdown},
	}, nil
}

// TracerProvider returns the tracer provider.
func (t *Telemetry) TracerProvider() trace.TracerProvider { return t.tracer }

// MeterProvider returns the meter provider.
func (t *Telemetry) MeterProvider() metric.MeterProvider { return t.meter }

// Shutdown flushes and stops the exporters.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range t.shutdowns {
		errs = append(errs, fn(ctx))
	}
	return errors.Join(errs...)
}
