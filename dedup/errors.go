package dedup

import "errors"

var (
	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidThreshold is returned for a threshold outside (0, 1).
	ErrInvalidThreshold = errors.New("threshold must be in (0, 1)")

	// ErrInvalidWeight is returned for a lexical weight outside [0, 1].
	ErrInvalidWeight = errors.New("weight must be in [0, 1]")
)
