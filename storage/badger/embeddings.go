package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/storyweave/core"
	"github.com/poiesic/storyweave/storage"
)

// EmbeddingCache implements storage.EmbeddingCache for BadgerDB.
type EmbeddingCache struct {
	backend *Backend
}

var _ storage.EmbeddingCache = (*EmbeddingCache)(nil)

// NewEmbeddingCache creates a new EmbeddingCache.
func NewEmbeddingCache(backend *Backend) (*EmbeddingCache, error) {
	return &EmbeddingCache{backend: backend}, nil
}

// Close releases resources. EmbeddingCache has no resources to release.
func (c *EmbeddingCache) Close() error {
	return nil
}

// GetEmbeddings returns the cached vectors for keys. Missing keys are absent
// from the result.
func (c *EmbeddingCache) GetEmbeddings(ctx context.Context, keys ...core.ID) (map[core.ID][]float32, error) {
	found := make(map[core.ID][]float32, len(keys))
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			item, err := tx.Get(makeEmbeddingKey(key))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			err = item.Value(func(val []byte) error {
				vec, err := storage.UnmarshalVector(val)
				if err != nil {
					return err
				}
				found[key] = vec
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return found, nil
}

// PutEmbeddings stores vectors, replacing existing entries.
func (c *EmbeddingCache) PutEmbeddings(ctx context.Context, vectors map[core.ID][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	return c.backend.WithTx(func(tx *badger.Txn) error {
		for key, vec := range vectors {
			if err := tx.Set(makeEmbeddingKey(key), storage.MarshalVector(vec)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}
