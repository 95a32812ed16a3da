package store

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const fileExt = ".json"

// File stores each key as a separate file in a directory. Values are
// written to a temporary file and renamed into place, so a crash never
// leaves a half-written value behind.
type File struct {
	dir    string
	logger *zap.Logger
	mu     sync.Mutex
	closed bool
}

// OpenFile opens a file store rooted at dir. The directory is created if it
// does not exist.
func OpenFile(dir string, logger *zap.Logger) (*File, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("store: file directory is empty")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &File{dir: dir, logger: logger}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+fileExt)
}

func (f *File) Save(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

func (f *File) Load(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, false, ErrClosed
	}
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (f *File) RemoveAll(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	var errs error
	for _, k := range keys {
		if err := os.Remove(f.path(k)); err != nil && !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("Failed to remove stored value", zap.String("key", k), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Keys lists stored keys. Entries whose names do not decode are skipped.
func (f *File) Keys(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrClosed
	}
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != fileExt {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(entry.Name(), fileExt))
		if err != nil {
			f.logger.Warn("Skipping unreadable store file", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
