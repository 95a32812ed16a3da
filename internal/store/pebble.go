package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"
)

// Pebble stores values in an embedded Pebble LSM database.
type Pebble struct {
	db     *pebble.DB
	path   string
	closed atomic.Bool // pebble panics on use after Close
}

// pebbleLogger routes Pebble's internal logging through zap.
type pebbleLogger struct {
	s *zap.SugaredLogger
}

func (l pebbleLogger) Infof(format string, args ...interface{})  { l.s.Debugf(format, args...) }
func (l pebbleLogger) Errorf(format string, args ...interface{}) { l.s.Errorf(format, args...) }
func (l pebbleLogger) Fatalf(format string, args ...interface{}) { l.s.Fatalf(format, args...) }

// OpenPebble opens (or creates) the database directory at path.
func OpenPebble(path string, logger *zap.Logger) (*Pebble, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store: pebble path is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := pebble.Open(path, &pebble.Options{
		Logger: pebbleLogger{s: logger.Named("pebble").Sugar()},
	})
	if err != nil {
		return nil, fmt.Errorf("store: pebble open: %w", err)
	}
	return &Pebble{db: db, path: path}, nil
}

func (p *Pebble) Save(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if p.closed.Load() {
		return ErrClosed
	}
	return p.db.Set([]byte(key), value, pebble.Sync)
}

func (p *Pebble) Load(_ context.Context, key string) ([]byte, bool, error) {
	if p.closed.Load() {
		return nil, false, ErrClosed
	}
	value, closer, err := p.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer closer.Close()
	// The returned slice is only valid until closer.Close.
	return slices.Clone(value), true, nil
}

func (p *Pebble) RemoveAll(_ context.Context, keys ...string) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if len(keys) == 0 {
		return nil
	}
	batch := p.db.NewBatch()
	defer batch.Close()
	for _, k := range keys {
		if err := batch.Delete([]byte(k), nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

func (p *Pebble) Keys(context.Context) ([]string, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	iter, err := p.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var keys []string
	for iter.First(); iter.Valid(); iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	return keys, iter.Error()
}

func (p *Pebble) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.db.Close()
}
