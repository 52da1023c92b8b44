package badger

import (
	"errors"

	"github.com/poiesic/storyweave/storage"
)

// Store bundles the run repository and embedding cache over one backend.
type Store struct {
	backend    *Backend
	runs       *RunRepository
	embeddings *EmbeddingCache
}

var _ storage.Store = (*Store)(nil)

// NewStore opens (or creates) a database directory at path.
func NewStore(path string) (*Store, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newStore(backend)
}

// NewMemoryStore creates a store that lives only in memory.
func NewMemoryStore() (*Store, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	return newStore(backend)
}

func newStore(backend *Backend) (*Store, error) {
	runs, err := NewRunRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	embeddings, err := NewEmbeddingCache(backend)
	if err != nil {
		runs.Close()
		backend.Close()
		return nil, err
	}
	return &Store{backend: backend, runs: runs, embeddings: embeddings}, nil
}

// Runs returns the run repository.
func (s *Store) Runs() storage.RunRepository {
	return s.runs
}

// Embeddings returns the embedding cache.
func (s *Store) Embeddings() storage.EmbeddingCache {
	return s.embeddings
}

// Close releases the repositories and closes the database.
func (s *Store) Close() error {
	return errors.Join(
		s.embeddings.Close(),
		s.runs.Close(),
		s.backend.Close(),
	)
}
