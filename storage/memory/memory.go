// Package memory provides an in-process storage medium. It is the default
// for tests and for hosts without a persistent medium.
package memory

import (
	"context"
	"sync"

	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/storage"
)

func init() {
	storage.RegisterFactory(storage.BackendMemory, func(_ context.Context, _ storage.Config, _ *logger.Logger) (storage.Medium, error) {
		return New(), nil
	})
}

// Medium is a map guarded by a mutex. The zero value is not usable; call New.
type Medium struct {
	mu    sync.RWMutex
	items map[string]string
	err   error
}

// New creates an empty medium.
func New() *Medium {
	return &Medium{items: make(map[string]string)}
}

// Fail makes every subsequent call return err. A nil err restores normal
// operation.
func (m *Medium) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetItem implements storage.Medium.
func (m *Medium) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.items[key]
	return v, ok, nil
}

// SetItem implements storage.Medium.
func (m *Medium) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.items[key] = value
	return nil
}

// RemoveItem implements storage.Medium.
func (m *Medium) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.items, key)
	return nil
}

// Keys implements storage.Medium.
func (m *Medium) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ storage.Medium = (*Medium)(nil)
