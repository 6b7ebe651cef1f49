package storage

import (
	"context"
	"fmt"

	"github.com/kbukum/restkit/errors"
)

// ProbeKey is written and removed by Probe to test a medium.
const ProbeKey = "__storage_test"

// Medium is a raw string key-value persistence medium. Any method may fail
// to signal that the medium is unavailable.
type Medium interface {
	// GetItem returns the value stored under key. ok is false when the key
	// does not exist.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error

	// Keys lists every key currently stored, in no particular order.
	Keys(ctx context.Context) ([]string, error)
}

// ProbeResult reports whether a medium accepted a test write.
type ProbeResult struct {
	Available bool
	// Reason is a STORAGE_UNAVAILABLE error when Available is false.
	Reason error
}

// Probe checks that m can store and remove a value. Mediums that exist but
// reject writes (full, read-only, disconnected) are reported unavailable.
func Probe(ctx context.Context, m Medium) ProbeResult {
	if m == nil {
		return ProbeResult{Reason: errors.StorageUnavailable(fmt.Errorf("no medium configured"))}
	}
	if err := m.SetItem(ctx, ProbeKey, ProbeKey); err != nil {
		return ProbeResult{Reason: errors.StorageUnavailable(err)}
	}
	if err := m.RemoveItem(ctx, ProbeKey); err != nil {
		return ProbeResult{Reason: errors.StorageUnavailable(err)}
	}
	return ProbeResult{Available: true}
}
