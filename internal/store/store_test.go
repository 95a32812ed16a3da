package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]func(t *testing.T) KV {
	return map[string]func(t *testing.T) KV{
		DriverMemory: func(t *testing.T) KV { return NewMemory() },
		DriverFile: func(t *testing.T) KV {
			kv, err := OpenFile(filepath.Join(t.TempDir(), "kv"), nil)
			require.NoError(t, err)
			return kv
		},
		DriverSQLite: func(t *testing.T) KV {
			kv, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
			require.NoError(t, err)
			return kv
		},
		DriverPebble: func(t *testing.T) KV {
			kv, err := OpenPebble(filepath.Join(t.TempDir(), "kv"), nil)
			require.NoError(t, err)
			return kv
		},
	}
}

func TestKV(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			kv := open(t)
			defer kv.Close()

			_, ok, err := kv.Load(ctx, "theme")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Save(ctx, "theme", []byte(`"dark"`)))
			require.NoError(t, kv.Save(ctx, "device_info_history", []byte(`[]`)))
			require.NoError(t, kv.Save(ctx, "path/with spaces", []byte("x")))
			require.NoError(t, kv.Save(ctx, "theme", []byte(`"light"`)))

			v, ok, err := kv.Load(ctx, "theme")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `"light"`, string(v))

			keys, err := kv.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"device_info_history", "path/with spaces", "theme"}, keys)

			require.NoError(t, kv.RemoveAll(ctx, "theme", "missing", "path/with spaces"))
			keys, err = kv.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"device_info_history"}, keys)

			assert.ErrorIs(t, kv.Save(ctx, "", []byte("x")), ErrEmptyKey)
			require.NoError(t, kv.RemoveAll(ctx))
		})
	}
}

func TestKV_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			kv := open(t)
			defer kv.Close()

			in := []byte("abc")
			require.NoError(t, kv.Save(ctx, "k", in))
			in[0] = 'z'

			v, _, err := kv.Load(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "abc", string(v))
			v[1] = 'z'

			again, _, err := kv.Load(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "abc", string(again))
		})
	}
}

func TestKV_Closed(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			kv := open(t)
			require.NoError(t, kv.Close())

			assert.ErrorIs(t, kv.Save(ctx, "k", []byte("v")), ErrClosed)
			_, _, err := kv.Load(ctx, "k")
			assert.ErrorIs(t, err, ErrClosed)
			_, err = kv.Keys(ctx)
			assert.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, driver := range []string{DriverFile, DriverSQLite, DriverPebble} {
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(dir, driver)
			kv, err := OpenDriver(driver, path, nil)
			require.NoError(t, err)
			require.NoError(t, kv.Save(ctx, "theme", []byte("dark")))
			require.NoError(t, kv.Close())

			kv, err = OpenDriver(driver, path, nil)
			require.NoError(t, err)
			defer kv.Close()
			v, ok, err := kv.Load(ctx, "theme")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "dark", string(v))
		})
	}
}

func TestOpen_DegradesToMemory(t *testing.T) {
	// A regular file where a directory is needed makes the file backend fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	kv := Open(DriverFile, filepath.Join(blocker, "kv"), nil)
	defer kv.Close()
	assert.IsType(t, &Memory{}, kv)

	kv2 := Open("redis", "", nil)
	assert.IsType(t, &Memory{}, kv2)

	_, err := OpenDriver("redis", "", nil)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestFile_SkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	kv, err := OpenFile(dir, nil)
	require.NoError(t, err)
	require.NoError(t, kv.Save(context.Background(), "a", []byte("1")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0700))

	keys, err := kv.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, keys)
}
