package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces free-form text from a system instruction and a user prompt.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate sends one request to the generative service and returns the
	// raw text of the first choice. An empty string is a valid return; callers
	// decide whether it is acceptable.
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Generator instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Generator returns the text generation service.
	Generator() Generator

	// EmbeddingModel names the model behind Embedder, used to scope caches.
	EmbeddingModel() string

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
