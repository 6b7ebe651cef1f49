package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v", cfg.SampleRate)
	}
	if cfg.MetricInterval != 15*time.Second {
		t.Errorf("MetricInterval = %v", cfg.MetricInterval)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{Enabled: true, Endpoint: "collector:4318", SampleRate: 0.5}, ""},
		{"rate too high", Config{SampleRate: 2}, "sample_rate"},
		{"negative rate", Config{SampleRate: -0.1}, "sample_rate"},
		{"enabled without endpoint", Config{Enabled: true, SampleRate: 1}, "endpoint is required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestSetupDisabled(t *testing.T) {
	ctx := context.Background()
	tel, err := Setup(ctx, Config{}, Resource{Service: "test"}, nil)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if _, ok := tel.TracerProvider().(tracenoop.TracerProvider); !ok {
		t.Errorf("tracer provider = %T, want no-op", tel.TracerProvider())
	}
	if _, ok := tel.MeterProvider().(metricnoop.MeterProvider); !ok {
		t.Errorf("meter provider = %T, want no-op", tel.MeterProvider())
	}
	if err := tel.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestSetupInvalid(t *testing.T) {
	if _, err := Setup(context.Background(), Config{SampleRate: 3}, Resource{}, nil); err == nil {
		t.Error("expected validation error")
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, "ParentBased{root:AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.25, "ParentBased{root:TraceIDRatioBased{0.25}"},
	}
	for _, tc := range tests {
		got := sampler(tc.rate).Description()
		if !strings.HasPrefix(got, tc.want) {
			t.Errorf("sampler(%v) = %q, want prefix %q", tc.rate, got, tc.want)
		}
	}
}

func TestNewResource(t *testing.T) {
	r, err := newResource(Resource{Service: "sessionctl", Version: "1.2.3", Environment: "staging"})
	if err != nil {
		t.Fatalf("newResource: %v", err)
	}
	got := map[string]string{}
	for _, kv := range r.Attributes() {
		got[string(kv.Key)] = kv.Value.Emit()
	}
	if got["service.name"] != "sessionctl" || got["service.version"] != "1.2.3" {
		t.Errorf("attributes = %v", got)
	}
	if got["deployment.environment.name"] != "staging" {
		t.Errorf("deployment.environment.name = %q", got["deployment.environment.name"])
	}
	if got["telemetry.sdk.name"] == "" {
		t.Error("default SDK attributes missing")
	}
}

func TestSetup_Enabled(t *testing.T) {
	cfg := Config{Enabled: true, Insecure: true}
	cfg.ApplyDefaults()
	tel, err := Setup(context.Background(), cfg, Resource{Service: "sessionctl", Environment: "test"}, nil)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = tel.Shutdown(ctx)
}

func TestCheck(t *testing.T) {
	up := CheckerFunc(func(context.Context) Health { return FromError("storage", nil) })
	degraded := CheckerFunc(func(context.Context) Health {
		return Health{Name: "cache", Status: HealthStatusDegraded}
	})
	down := CheckerFunc(func(context.Context) Health { return FromError("api", errors.New("refused")) })

	tests := []struct {
		name     string
		checkers []Checker
		want     HealthStatus
	}{
		{"all up", []Checker{up}, HealthStatusUp},
		{"degraded", []Checker{up, degraded}, HealthStatusDegraded},
		{"down wins", []Checker{down, degraded}, HealthStatusDown},
		{"none", nil, HealthStatusUp},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := Check(context.Background(), "svc", "1.0.0", tc.checkers...)
			if r.Status != tc.want {
				t.Errorf("status = %s, want %s", r.Status, tc.want)
			}
			if len(r.Components) != len(tc.checkers) {
				t.Errorf("components = %d", len(r.Components))
			}
		})
	}

	if h := FromError("api", errors.New("refused")); h.Message != "refused" {
		t.Errorf("message = %q", h.Message)
	}
}
