// Package redis provides a storage medium backed by Redis through go-redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/storage"
)

const scanBatch = 100

func init() {
	storage.RegisterFactory(storage.BackendRedis, func(ctx context.Context, cfg storage.Config, log *logger.Logger) (storage.Medium, error) {
		opTimeout, err := time.ParseDuration(cfg.Redis.OpTimeout)
		if err != nil {
			return nil, fmt.Errorf("redis: invalid op_timeout %q: %w", cfg.Redis.OpTimeout, err)
		}
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		log.Info("Redis medium created", map[string]interface{}{
			"addr":   cfg.Redis.Addr,
			"db":     cfg.Redis.DB,
			"prefix": cfg.Redis.Prefix,
		})
		return New(rdb, Options{Prefix: cfg.Redis.Prefix, OpTimeout: opTimeout, Log: log}), nil
	})
}

// Options configures a Medium.
type Options struct {
	// Prefix is prepended to every key. Keys lists only prefixed keys.
	Prefix string
	// OpTimeout bounds each call. Zero means the caller's context only.
	OpTimeout time.Duration
	// Log receives connection lifecycle messages.
	Log *logger.Logger
}

// Medium implements storage.Medium on a go-redis client.
type Medium struct {
	rdb  goredis.UniversalClient
	opts Options
	log  *logger.Logger

	mu     sync.Mutex
	closed bool
}

// New wraps rdb. The medium owns the client and closes it on Close.
func New(rdb goredis.UniversalClient, opts Options) *Medium {
	return &Medium{rdb: rdb, opts: opts, log: logger.OrNop(opts.Log)}
}

func (m *Medium) key(k string) string {
	return m.opts.Prefix + k
}

func (m *Medium) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.opts.OpTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.opts.OpTimeout)
}

// Ping verifies the Redis connection is alive.
func (m *Medium) Ping(ctx context.Context) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()
	if err := m.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// GetItem implements storage.Medium.
func (m *Medium) GetItem(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	v, err := m.rdb.Get(ctx, m.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis: get %q: %w", key, err)
	}
	return v, true, nil
}

// SetItem implements storage.Medium. Values never expire.
func (m *Medium) SetItem(ctx context.Context, key, value string) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	if err := m.rdb.Set(ctx, m.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %q: %w", key, err)
	}
	return nil
}

// RemoveItem implements storage.Medium.
func (m *Medium) RemoveItem(ctx context.Context, key string) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	if err := m.rdb.Del(ctx, m.key(key)).Err(); err != nil {
		return fmt.Errorf("redis: delete %q: %w", key, err)
	}
	return nil
}

// Keys implements storage.Medium using SCAN over the prefix.
func (m *Medium) Keys(ctx context.Context) ([]string, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	var keys []string
	iter := m.rdb.Scan(ctx, 0, m.opts.Prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), m.opts.Prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis: scan keys: %w", err)
	}
	return keys, nil
}

// Close closes the Redis connection. Safe to call multiple times.
func (m *Medium) Close() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.log.Info("Closing Redis connection")
	m.closed = true
	return m.rdb.Close()
}

// compile-time check
var _ storage.Medium = (*Medium)(nil)
