package main

import (
	"fmt"
	"time"

	"github.com/kbukum/restkit/config"
	"github.com/kbukum/restkit/httpclient"
	"github.com/kbukum/restkit/observability"
	"github.com/kbukum/restkit/session"
	"github.com/kbukum/restkit/storage"
)

// Config is the sessionctl configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	HTTP          httpclient.Config    `yaml:"http" mapstructure:"http"`
	Token         string               `yaml:"token" mapstructure:"token"`
	Resilience    ResilienceConfig     `yaml:"resilience" mapstructure:"resilience"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Session       SessionConfig        `yaml:"session" mapstructure:"session"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ResilienceConfig selects the opt-in guard middleware. Zero disables each.
type ResilienceConfig struct {
	RetryAttempts   uint          `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	BreakerFailures int           `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown" mapstructure:"breaker_cooldown"`
	RateLimit       float64       `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst       int           `yaml:"rate_burst" mapstructure:"rate_burst"`
	MaxConcurrent   int64         `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// SessionConfig locates the session resource and the cached user.
type SessionConfig struct {
	Path    string `yaml:"path" mapstructure:"path"`
	UserKey string `yaml:"user_key" mapstructure:"user_key"`
}

// ApplyDefaults fills in every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = appName
	}
	c.ServiceConfig.ApplyDefaults()
	c.HTTP.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Observability.ApplyDefaults()
	if c.Session.Path == "" {
		c.Session.Path = session.DefaultPath
	}
	if c.Session.UserKey == "" {
		c.Session.UserKey = session.DefaultUserKey
	}
	if c.Resilience.BreakerFailures > 0 && c.Resilience.BreakerCooldown <= 0 {
		c.Resilience.BreakerCooldown = 30 * time.Second
	}
	if c.Resilience.RateLimit > 0 && c.Resilience.RateBurst <= 0 {
		c.Resilience.RateBurst = 1
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if c.HTTP.BaseURL == "" {
		return fmt.Errorf("config.http.base_url is required")
	}
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	return c.Observability.Validate()
}
