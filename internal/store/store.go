// Package store provides the key-value persistence used for history, theme
// and preferences. Several backends implement KV; Open picks one by driver
// name and falls back to memory when the backend cannot be opened, so the
// application keeps working without persistence.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverPebble = "pebble"
)

var (
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store: closed")

	// ErrEmptyKey is returned when a key is empty.
	ErrEmptyKey = errors.New("store: empty key")

	// ErrUnknownDriver is returned by OpenDriver for an unrecognised driver.
	ErrUnknownDriver = errors.New("store: unknown driver")
)

// KV is a byte-valued key-value store. Implementations are safe for
// concurrent use.
type KV interface {
	// Save stores value under key, replacing any previous value.
	Save(ctx context.Context, key string, value []byte) error

	// Load returns the value under key. ok is false when the key is absent.
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)

	// RemoveAll deletes the given keys. Missing keys are ignored.
	RemoveAll(ctx context.Context, keys ...string) error

	// Keys lists every stored key in ascending order.
	Keys(ctx context.Context) ([]string, error)

	// Close releases the backend.
	Close() error
}

// OpenDriver opens the named backend at path.
func OpenDriver(driver, path string, logger *zap.Logger) (KV, error) {
	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		return OpenFile(path, logger)
	case DriverSQLite:
		return OpenSQLite(path)
	case DriverPebble:
		return OpenPebble(path, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// Open opens the named backend, degrading to an in-memory store with a
// warning when that fails. The returned store is never nil.
func Open(driver, path string, logger *zap.Logger) KV {
	if logger == nil {
		logger = zap.NewNop()
	}
	kv, err := OpenDriver(driver, path, logger)
	if err != nil {
		logger.Warn("Persistent store unavailable, using memory",
			zap.String("driver", driver),
			zap.String("path", path),
			zap.Error(err))
		return NewMemory()
	}
	logger.Debug("Opened store", zap.String("driver", driver), zap.String("path", path))
	return kv
}

func checkKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}
