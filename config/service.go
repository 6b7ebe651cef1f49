package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/restkit/logger"
)

// Environments accepted by ServiceConfig.
var Environments = []string{"development", "staging", "production"}

// ServiceConfig holds the fields every restkit application carries. Embed
// it with mapstructure:",squash" to extend it.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig returns the embedded ServiceConfig. It is promoted to
// embedding structs.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults fills in the environment and logging defaults. Embedding
// structs that override it call it first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the base fields.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	if !slices.Contains(Environments, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", Environments, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// Configurable is a configuration struct that can default and check itself.
type Configurable interface {
	ApplyDefaults()
	Validate() error
}

// Load reads the configuration for serviceName into a new T, applies its
// defaults and validates it.
func Load[T any, PT interface {
	*T
	Configurable
}](serviceName string, opts ...LoaderOption) (*T, error) {
	cfg := new(T)
	if err := LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	PT(cfg).ApplyDefaults()
	if err := PT(cfg).Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
