package metrics

import (
	"context"

	"github.com/poiesic/storyweave/ai"
)

// InstrumentEmbedder wraps e so every call is counted. It returns e
// unchanged when m is nil.
func InstrumentEmbedder(e ai.Embedder, m *Metrics) ai.Embedder {
	if m == nil || e == nil {
		return e
	}
	return &instrumentedEmbedder{inner: e, metrics: m}
}

type instrumentedEmbedder struct {
	inner   ai.Embedder
	metrics *Metrics
}

func (e *instrumentedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.inner.EmbedText(ctx, text)
	e.metrics.ObserveEmbedding(1, err)
	return vec, err
}

func (e *instrumentedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := e.inner.EmbedTexts(ctx, texts)
	e.metrics.ObserveEmbedding(len(texts), err)
	return vecs, err
}
