package observability

import "context"

// HealthStatus is the health of a component or of the whole application.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes one component.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Report aggregates component health.
type Report struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// Checker reports the health of one component.
type Checker interface {
	CheckHealth(ctx context.Context) Health
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) Health

// CheckHealth calls f.
func (f CheckerFunc) CheckHealth(ctx context.Context) Health { return f(ctx) }

// Check runs every checker and aggregates the results. A down component
// makes the report down; a degraded one makes it degraded unless something
// is already down.
func Check(ctx context.Context, service, version string, checkers ...Checker) *Report {
	r := &Report{Service: service, Status: HealthStatusUp, Version: version}
	for _, c := range checkers {
		r.Add(c.CheckHealth(ctx))
	}
	return r
}

// Add records a component result and degrades the overall status.
func (r *Report) Add(h Health) {
	r.Components = append(r.Components, h)
	switch h.Status {
	case HealthStatusDown:
		r.Status = HealthStatusDown
	case HealthStatusDegraded:
		if r.Status != HealthStatusDown {
			r.Status = HealthStatusDegraded
		}
	}
}

// FromError returns an up Health for a nil err and a down one otherwise.
func FromError(name string, err error) Health {
	if err != nil {
		return Health{Name: name, Status: HealthStatusDown, Message: err.Error()}
	}
	return Health{Name: name, Status: HealthStatusUp}
}
