package similarity

import "errors"

var (
	// ErrEmbedding indicates the embedding service failed. It is fatal for a run.
	ErrEmbedding = errors.New("embedding failed")

	// ErrVectorCount indicates the embedding service returned the wrong number of vectors.
	ErrVectorCount = errors.New("embedding count does not match input count")

	// ErrDimensionMismatch indicates vectors of different lengths in one batch.
	ErrDimensionMismatch = errors.New("embedding dimensions differ")

	// ErrShapeMismatch indicates matrices or domain lists of different sizes.
	ErrShapeMismatch = errors.New("matrix shapes do not match")
)
