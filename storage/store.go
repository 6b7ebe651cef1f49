package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/kbukum/restkit/logger"
)

// DefaultKey is the medium key the whole store is persisted under.
const DefaultKey = "app-storage"

// Store is a JSON key-value store kept in memory and mirrored to a Medium.
//
// Memory is the source of truth for reads. Every mutation rewrites the
// whole map as one JSON object under the store key. Persistence is
// best-effort: when the medium failed its probe at construction the store
// never touches it again, and write failures after a successful probe are
// logged and absorbed.
type Store struct {
	medium Medium
	key    string
	log    *logger.Logger
	probe  ProbeResult

	mu    sync.Mutex
	state map[string]json.RawMessage
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the medium key the store persists under.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger used for persistence warnings.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New probes medium once and loads any previously persisted state.
func New(ctx context.Context, medium Medium, opts ...Option) *Store {
	s := &Store{medium: medium, key: DefaultKey}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.OrNop(s.log).WithComponent("storage")

	s.probe = Probe(ctx, medium)
	if !s.probe.Available {
		s.log.Warn("persistent storage unavailable, keeping state in memory", map[string]interface{}{
			logger.FieldKey:   s.key,
			logger.FieldError: s.probe.Reason,
		})
	}

	s.Reload(ctx)
	return s
}

// Probe returns the availability determined at construction.
func (s *Store) Probe() ProbeResult {
	return s.probe
}

// Set stores value under key and persists the store. It fails only when
// value cannot be encoded as JSON.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[key] = data
	s.save(ctx)
	return nil
}

// Raw returns the JSON stored under key.
func (s *Store) Raw(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.state[key]
	return v, ok
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	_, ok := s.Raw(key)
	return ok
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.state))
}

// Unset removes key and returns its previous value. The store is persisted
// only when the key existed.
func (s *Store) Unset(ctx context.Context, key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.state[key]
	if !ok {
		return nil, false
	}
	delete(s.state, key)
	s.save(ctx)
	return old, true
}

// Clear removes every key and persists the empty store.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = make(map[string]json.RawMessage)
	s.save(ctx)
}

// Reload replaces the in-memory state with what the medium holds. Missing,
// unreadable or non-object payloads load as an empty store.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.load(ctx)
}

func (s *Store) load(ctx context.Context) map[string]json.RawMessage {
	state := make(map[string]json.RawMessage)
	if !s.probe.Available {
		return state
	}

	raw, ok, err := s.medium.GetItem(ctx, s.key)
	if err != nil {
		s.log.Warn("failed to read persisted state", map[string]interface{}{
			logger.FieldKey:   s.key,
			logger.FieldError: err,
		})
		return state
	}
	if !ok || raw == "" {
		return state
	}

	var loaded map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil || loaded == nil {
		s.log.Warn("ignoring unreadable persisted state", map[string]interface{}{
			logger.FieldKey:   s.key,
			logger.FieldError: err,
		})
		return state
	}
	return loaded
}

// save writes the whole state to the medium. Callers hold mu.
func (s *Store) save(ctx context.Context) {
	if !s.probe.Available {
		return
	}
	data, err := json.Marshal(s.state)
	if err != nil {
		s.log.Error("failed to encode state", map[string]interface{}{logger.FieldError: err})
		return
	}
	if err := s.medium.SetItem(ctx, s.key, string(data)); err != nil {
		s.log.Warn("failed to persist state", map[string]interface{}{
			logger.FieldKey:   s.key,
			logger.FieldError: err,
		})
	}
}

// Get decodes the value stored under key into T. ok is false when the key is
// missing or its value does not decode into T.
func Get[T any](s *Store, key string) (T, bool) {
	var v T
	raw, ok := s.Raw(key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		s.log.Debug("stored value does not match requested type", map[string]interface{}{
			logger.FieldKey:   key,
			logger.FieldError: err,
		})
		return v, false
	}
	return v, true
}

// GetOr is Get with a fallback for missing or mismatched values.
func GetOr[T any](s *Store, key string, def T) T {
	if v, ok := Get[T](s, key); ok {
		return v
	}
	return def
}
