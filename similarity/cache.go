package similarity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/storyweave/ai"
	"github.com/poiesic/storyweave/core"
	"github.com/poiesic/storyweave/metrics"
	"github.com/poiesic/storyweave/storage"
)

// CachedEmbedder is an ai.Embedder that serves repeated texts from an
// EmbeddingCache. Misses are embedded with a single call to the wrapped
// embedder and written back. Cache errors are logged and bypassed.
type CachedEmbedder struct {
	inner   ai.Embedder
	cache   storage.EmbeddingCache
	model   string
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewCachedEmbedder wraps inner with cache. model scopes the cache keys so
// vectors from different embedding models never mix. m may be nil.
func NewCachedEmbedder(inner ai.Embedder, cache storage.EmbeddingCache, model string, m *metrics.Metrics) *CachedEmbedder {
	return &CachedEmbedder{
		inner:   inner,
		cache:   cache,
		model:   model,
		metrics: m,
		logger:  slog.Default().With("component", "embedding-cache"),
	}
}

// CacheKey returns the cache key for text under model.
func CacheKey(model, text string) core.ID {
	return core.IDFromContent(model + "\x00" + text)
}

// EmbedText embeds a single text through the cache.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts returns one vector per text, calling the wrapped embedder at
// most once with the distinct texts that were not cached.
func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	keys := make([]core.ID, len(texts))
	for i, text := range texts {
		keys[i] = CacheKey(c.model, text)
	}

	cached, err := c.cache.GetEmbeddings(ctx, keys...)
	if err != nil {
		c.logger.Warn("embedding cache read failed", "err", err)
		cached = nil
	}

	var missTexts []string
	missIndex := make(map[core.ID]int)
	for i, key := range keys {
		if _, ok := cached[key]; ok {
			continue
		}
		if _, ok := missIndex[key]; ok {
			continue
		}
		missIndex[key] = len(missTexts)
		missTexts = append(missTexts, texts[i])
	}
	c.metrics.ObserveCache(len(texts)-len(missTexts), len(missTexts))

	var fresh [][]float32
	if len(missTexts) > 0 {
		fresh, err = c.inner.EmbedTexts(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		if len(fresh) != len(missTexts) {
			return nil, fmt.Errorf("%w (got %d, want %d)", ErrVectorCount, len(fresh), len(missTexts))
		}

		toStore := make(map[core.ID][]float32, len(missIndex))
		for key, idx := range missIndex {
			toStore[key] = fresh[idx]
		}
		if err := c.cache.PutEmbeddings(ctx, toStore); err != nil {
			c.logger.Warn("embedding cache write failed", "err", err)
		}
	}

	c.logger.Debug("embedded texts", "total", len(texts), "cached", len(texts)-len(missTexts))

	out := make([][]float32, len(texts))
	for i, key := range keys {
		if v, ok := cached[key]; ok {
			out[i] = v
			continue
		}
		out[i] = fresh[missIndex[key]]
	}
	return out, nil
}
