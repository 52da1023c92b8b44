package badger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_PathIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := OpenBackend(file, false)
	assert.Error(t, err)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestWithTx(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	t.Run("committed write is visible", func(t *testing.T) {
		err := backend.WithTx(func(tx *badger.Txn) error {
			if err := tx.Set([]byte("k"), []byte("v")); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
		require.NoError(t, err)

		err = backend.WithTx(func(tx *badger.Txn) error {
			item, err := tx.Get([]byte("k"))
			if err != nil {
				return err
			}
			val, err := item.ValueCopy(nil)
			assert.Equal(t, []byte("v"), val)
			return err
		}, false)
		require.NoError(t, err)
	})

	t.Run("failed transaction is discarded", func(t *testing.T) {
		err := backend.WithTx(func(tx *badger.Txn) error {
			if err := tx.Set([]byte("gone"), []byte("v")); err != nil {
				return err
			}
			return assert.AnError
		}, true)
		assert.Equal(t, assert.AnError, err)

		err = backend.WithTx(func(tx *badger.Txn) error {
			_, err := tx.Get([]byte("gone"))
			return err
		}, false)
		assert.ErrorIs(t, err, badger.ErrKeyNotFound)
	})
}

func TestGetSequence(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	seq, err := backend.GetSequence("test_sequence")
	require.NoError(t, err)
	require.NotNil(t, seq)
	defer seq.Release()

	id1, err := seq.Next()
	require.NoError(t, err)

	id2, err := seq.Next()
	require.NoError(t, err)

	assert.Greater(t, id2, id1)
}

func TestKeysSortByID(t *testing.T) {
	a := makeRunKey(1)
	b := makeRunKey(256)
	assert.Less(t, string(a), string(b))
	assert.Less(t, string(b), string(runUpperBound()))
	assert.NotEqual(t, makeRunKey(5), makeEmbeddingKey(5))
}
