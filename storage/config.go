package storage

import (
	"fmt"

	"github.com/kbukum/restkit/validation"
)

// Backend names for the registered mediums.
const (
	BackendMemory = "memory"
	BackendLocal  = "local"
	BackendRedis  = "redis"
)

// DefaultBackend is used when Config.Backend is empty.
const DefaultBackend = BackendLocal

// Config selects and configures the persistence medium.
type Config struct {
	// Backend selects the medium: "memory", "local" or "redis".
	Backend string `yaml:"backend" mapstructure:"backend" validate:"oneof=memory local redis"`

	// Key is the medium key the store is persisted under.
	Key string `yaml:"key" mapstructure:"key" validate:"required"`

	// Local configures the local filesystem medium.
	Local LocalConfig `yaml:"local" mapstructure:"local"`

	// Redis configures the redis medium.
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`

	// EncryptionKey, when set, encrypts every stored value. Requires the
	// storage/encrypted package to be imported.
	EncryptionKey string `yaml:"encryption_key" mapstructure:"encryption_key"`
}

// LocalConfig configures the one-file-per-key medium.
type LocalConfig struct {
	// BasePath is the directory holding one file per key.
	BasePath string `yaml:"base_path" mapstructure:"base_path"`
}

// RedisConfig configures the redis medium.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string `yaml:"addr" mapstructure:"addr"`
	// Password is the Redis server password.
	Password string `yaml:"password" mapstructure:"password"`
	// DB is the Redis database number.
	DB int `yaml:"db" mapstructure:"db" validate:"gte=0"`
	// Prefix namespaces every key the medium writes.
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
	// OpTimeout bounds each medium call (e.g. "2s").
	OpTimeout string `yaml:"op_timeout" mapstructure:"op_timeout"`
	// PoolSize is the maximum number of socket connections.
	PoolSize int `yaml:"pool_size" mapstructure:"pool_size" validate:"gte=0"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = DefaultBackend
	}
	if c.Key == "" {
		c.Key = DefaultKey
	}
	if c.Local.BasePath == "" {
		c.Local.BasePath = "/tmp/restkit"
	}
	if c.Redis.OpTimeout == "" {
		c.Redis.OpTimeout = "2s"
	}
	if c.Redis.PoolSize <= 0 {
		c.Redis.PoolSize = 10
	}
}

// Validate checks that the configuration is valid for the selected backend.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("storage: invalid config: %w", err)
	}
	switch c.Backend {
	case BackendLocal:
		if c.Local.BasePath == "" {
			return fmt.Errorf("storage: local.base_path is required for local backend")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("storage: redis.addr is required for redis backend")
		}
	}
	return nil
}
