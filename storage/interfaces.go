package storage

import (
	"context"

	"github.com/poiesic/storyweave/core"
)

// RunRepository persists completed pipeline runs.
type RunRepository interface {
	// SaveRun stores a run. A run with Id 0 is assigned the next sequence value.
	// Sets CreatedAt if not already set.
	// Returns the run with its Id and CreatedAt populated.
	SaveRun(ctx context.Context, run *core.Run) (*core.Run, error)

	// GetRun retrieves a run by ID.
	// Returns ErrNotFound if the run doesn't exist.
	GetRun(ctx context.Context, id core.ID) (*core.Run, error)

	// ListRuns returns up to limit runs, most recent first.
	// A limit <= 0 returns every stored run.
	ListRuns(ctx context.Context, limit int) ([]*core.Run, error)

	// DeleteRun removes a run.
	// Returns ErrNotFound if the run doesn't exist.
	DeleteRun(ctx context.Context, id core.ID) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// EmbeddingCache stores embedding vectors keyed by a content-derived ID.
type EmbeddingCache interface {
	// GetEmbeddings returns the vectors that exist for the given keys.
	// Missing keys are simply absent from the result.
	GetEmbeddings(ctx context.Context, keys ...core.ID) (map[core.ID][]float32, error)

	// PutEmbeddings stores vectors, overwriting existing entries.
	PutEmbeddings(ctx context.Context, vectors map[core.ID][]float32) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// Store bundles the repositories backed by a single database.
type Store interface {
	Runs() RunRepository
	Embeddings() EmbeddingCache
	Close() error
}
