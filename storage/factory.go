package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/restkit/logger"
)

// MediumFactory creates a Medium from the storage configuration.
type MediumFactory func(ctx context.Context, cfg Config, log *logger.Logger) (Medium, error)

// Encrypter wraps a Medium so values are encrypted with key.
type Encrypter func(m Medium, key string) (Medium, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]MediumFactory)
	encrypter  Encrypter
)

// RegisterFactory registers a medium factory for the given backend name.
// Medium packages call this in an init function, so a backend is available
// once its package is imported (e.g. _ "github.com/kbukum/restkit/storage/redis").
func RegisterFactory(name string, f MediumFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = f
}

// RegisterEncrypter installs the wrapper used when Config.EncryptionKey is set.
func RegisterEncrypter(e Encrypter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	encrypter = e
}

// Open creates the Medium selected by cfg, encrypted when cfg.EncryptionKey
// is set.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (Medium, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := logger.OrNop(log).WithComponent("storage")

	registryMu.RLock()
	f, ok := factories[cfg.Backend]
	enc := encrypter
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported backend %q (not registered)", cfg.Backend)
	}

	l.Info("initializing storage", map[string]interface{}{
		logger.FieldBackend: cfg.Backend,
		"encrypted":         cfg.EncryptionKey != "",
	})

	m, err := f(ctx, cfg, l)
	if err != nil {
		return nil, err
	}

	if cfg.EncryptionKey == "" {
		return m, nil
	}
	if enc == nil {
		return nil, fmt.Errorf("storage: encryption_key set but no encrypter registered (import storage/encrypted)")
	}
	return enc(m, cfg.EncryptionKey)
}
