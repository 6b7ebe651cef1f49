// Package encrypted provides a storage medium decorator that encrypts every
// value with ChaCha20-Poly1305 before handing it to the wrapped medium.
// Keys are stored in the clear so the wrapped medium can enumerate them.
//
// Importing the package registers it with storage.Open, which then honors
// Config.EncryptionKey.
package encrypted

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/kbukum/restkit/storage"
)

func init() {
	storage.RegisterEncrypter(func(m storage.Medium, key string) (storage.Medium, error) {
		return New(m, key)
	})
}

type aead interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
}

// Medium wraps another storage.Medium.
type Medium struct {
	inner storage.Medium
	aead  aead
}

// New wraps inner. The passphrase is hashed with SHA-256 to produce the
// 32-byte cipher key.
func New(inner storage.Medium, passphrase string) (*Medium, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("encrypted: empty key")
	}
	sum := sha256.Sum256([]byte(passphrase))
	a, err := chacha20poly1305.New(sum[:])
	if err != nil {
		return nil, fmt.Errorf("encrypted: create chacha20: %w", err)
	}
	return &Medium{inner: inner, aead: a}, nil
}

// GetItem implements storage.Medium. A value that fails to decrypt (written
// in the clear or under another key) is an error.
func (m *Medium) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := m.inner.GetItem(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	plain, err := m.decrypt(v)
	if err != nil {
		return "", false, fmt.Errorf("encrypted: %q: %w", key, err)
	}
	return plain, true, nil
}

// SetItem implements storage.Medium.
func (m *Medium) SetItem(ctx context.Context, key, value string) error {
	sealed, err := m.encrypt(value)
	if err != nil {
		return fmt.Errorf("encrypted: %q: %w", key, err)
	}
	return m.inner.SetItem(ctx, key, sealed)
}

// RemoveItem implements storage.Medium.
func (m *Medium) RemoveItem(ctx context.Context, key string) error {
	return m.inner.RemoveItem(ctx, key)
}

// Keys implements storage.Medium.
func (m *Medium) Keys(ctx context.Context) ([]string, error) {
	return m.inner.Keys(ctx)
}

func (m *Medium) encrypt(plaintext string) (string, error) {
	nonce := make([]byte, m.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := m.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (m *Medium) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	n := m.aead.NonceSize()
	if len(data) < n {
		return "", fmt.Errorf("ciphertext too short")
	}
	plain, err := m.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plain), nil
}

var _ storage.Medium = (*Medium)(nil)
