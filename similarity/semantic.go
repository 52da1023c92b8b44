package similarity

import (
	"context"
	"fmt"

	"github.com/poiesic/storyweave/ai"
)

// DefaultMaxEmbedChars is the per-text truncation applied before embedding.
const DefaultMaxEmbedChars = 8000

// Semantic embeds all texts with one batched request and returns the cosine
// similarity of the resulting vectors. Each text is truncated to maxChars
// runes first. Any failure is returned wrapped in ErrEmbedding; there is no
// retry and no fallback.
func Semantic(ctx context.Context, embedder ai.Embedder, texts []string, maxChars int) (Matrix, error) {
	if len(texts) == 0 {
		return Matrix{}, nil
	}

	truncated := make([]string, len(texts))
	for i, text := range texts {
		truncated[i] = Truncate(text, maxChars)
	}

	vectors, err := embedder.EmbedTexts(ctx, truncated)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: %w (got %d, want %d)", ErrEmbedding, ErrVectorCount, len(vectors), len(texts))
	}
	for i := 1; i < len(vectors); i++ {
		if len(vectors[i]) != len(vectors[0]) {
			return nil, fmt.Errorf("%w: %w (%d vs %d)", ErrEmbedding, ErrDimensionMismatch, len(vectors[i]), len(vectors[0]))
		}
	}

	return symmetricFrom(len(vectors), func(i, j int) float64 {
		return CosineSimilarity(vectors[i], vectors[j])
	}), nil
}
