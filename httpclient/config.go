package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/restkit/validation"
)

const (
	defaultTimeout = 30 * time.Second
)

// Config configures the HTTP client and its default transport.
type Config struct {
	// Name identifies the client in logs.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is prepended to relative request URLs.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`

	// Timeout bounds a whole exchange on the default transport. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// Headers are default headers applied to every request. Request headers win.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// UserAgent is sent when the request carries no User-Agent header.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// DisableCookies turns off the cookie jar of the default transport.
	// The jar keeps server-side session cookies between calls.
	DisableCookies bool `yaml:"disable_cookies" mapstructure:"disable_cookies"`

	// TLS configures TLS for the default transport.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "http"
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("httpclient: invalid config: %w", err)
	}
	return c.TLS.Validate()
}
