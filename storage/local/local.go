// Package local provides a storage medium that keeps one file per key under
// a base directory.
package local

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/storage"
)

const fileExt = ".json"

func init() {
	storage.RegisterFactory(storage.BackendLocal, func(_ context.Context, cfg storage.Config, log *logger.Logger) (storage.Medium, error) {
		m, err := New(cfg.Local.BasePath)
		if err != nil {
			return nil, err
		}
		log.Debug("local medium ready", map[string]interface{}{"base_path": m.basePath})
		return m, nil
	})
}

// Medium implements storage.Medium on the local filesystem.
type Medium struct {
	basePath string
}

// New creates the base directory if needed and returns a medium rooted there.
func New(basePath string) (*Medium, error) {
	if basePath == "" {
		return nil, errors.New("local: base path is required")
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("local: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("local: create base directory: %w", err)
	}
	return &Medium{basePath: abs}, nil
}

// path maps a key to a file name. Keys are path-escaped so any key stays
// inside the base directory.
func (m *Medium) path(key string) string {
	return filepath.Join(m.basePath, url.PathEscape(key)+fileExt)
}

// GetItem implements storage.Medium.
func (m *Medium) GetItem(_ context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(m.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("local: read %q: %w", key, err)
	}
	return string(data), true, nil
}

// SetItem implements storage.Medium. The value is written to a temporary
// file and renamed into place.
func (m *Medium) SetItem(_ context.Context, key, value string) error {
	f, err := os.CreateTemp(m.basePath, ".tmp-*")
	if err != nil {
		return fmt.Errorf("local: create file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.WriteString(value); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("local: write %q: %w", key, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("local: write %q: %w", key, err)
	}
	if err := os.Rename(tmp, m.path(key)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("local: write %q: %w", key, err)
	}
	return nil
}

// RemoveItem implements storage.Medium. Returns nil if the key does not exist.
func (m *Medium) RemoveItem(_ context.Context, key string) error {
	if err := os.Remove(m.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("local: delete %q: %w", key, err)
	}
	return nil
}

// Keys implements storage.Medium.
func (m *Medium) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(m.basePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("local: list keys: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) || strings.HasPrefix(name, ".tmp-") {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// compile-time check
var _ storage.Medium = (*Medium)(nil)
