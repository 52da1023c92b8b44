package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/storyweave/ai"
	"github.com/poiesic/storyweave/cluster"
	"github.com/poiesic/storyweave/core"
	"github.com/poiesic/storyweave/metrics"
	"github.com/poiesic/storyweave/similarity"
)

// DefaultThreshold is the hybrid similarity needed for two documents to be
// considered the same event.
const DefaultThreshold = 0.75

// Deduplicator partitions documents into same-event groups.
type Deduplicator struct {
	embedder      ai.Embedder
	threshold     float64
	weights       similarity.WeightConfig
	lexical       similarity.LexicalConfig
	maxEmbedChars int
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// Option configures a Deduplicator.
type Option func(*Deduplicator) error

// WithThreshold sets the similarity threshold τ. Default is 0.75.
func WithThreshold(threshold float64) Option {
	return func(d *Deduplicator) error {
		if threshold <= 0 || threshold >= 1 {
			return fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
		}
		d.threshold = threshold
		return nil
	}
}

// WithBaseWeight sets the lexical weight for ordinary pairs. Default is 0.30.
func WithBaseWeight(w float64) Option {
	return func(d *Deduplicator) error {
		if w < 0 || w > 1 {
			return fmt.Errorf("%w: base %v", ErrInvalidWeight, w)
		}
		d.weights.Base = w
		return nil
	}
}

// WithAmbiguousWeight sets the lexical weight for same-domain pairs from an
// ambiguous domain. Default is 0.60.
func WithAmbiguousWeight(w float64) Option {
	return func(d *Deduplicator) error {
		if w < 0 || w > 1 {
			return fmt.Errorf("%w: ambiguous %v", ErrInvalidWeight, w)
		}
		d.weights.Ambiguous = w
		return nil
	}
}

// WithAmbiguousDomains replaces the set of ambiguous domains.
func WithAmbiguousDomains(domains ...string) Option {
	return func(d *Deduplicator) error {
		d.weights.AmbiguousDomains = similarity.NewDomainSet(domains...)
		return nil
	}
}

// WithMaxFeatures sets the TF-IDF vocabulary cap. Default is 500.
func WithMaxFeatures(n int) Option {
	return func(d *Deduplicator) error {
		if n > 0 {
			d.lexical.MaxFeatures = n
		}
		return nil
	}
}

// WithMaxDocFreq sets the TF-IDF document-frequency ceiling. Default is 0.8.
func WithMaxDocFreq(f float64) Option {
	return func(d *Deduplicator) error {
		if f > 0 && f <= 1 {
			d.lexical.MaxDocFreq = f
		}
		return nil
	}
}

// WithMaxEmbedChars sets the per-text truncation before embedding. Default is 8000.
func WithMaxEmbedChars(n int) Option {
	return func(d *Deduplicator) error {
		if n > 0 {
			d.maxEmbedChars = n
		}
		return nil
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Deduplicator) error {
		d.metrics = m
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Deduplicator) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// New creates a Deduplicator that embeds texts with embedder.
func New(embedder ai.Embedder, opts ...Option) (*Deduplicator, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	d := &Deduplicator{
		embedder:      embedder,
		threshold:     DefaultThreshold,
		weights:       similarity.DefaultWeightConfig(),
		lexical:       similarity.DefaultLexicalConfig(),
		maxEmbedChars: similarity.DefaultMaxEmbedChars,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	d.logger = d.logger.With("component", "deduplicator")

	return d, nil
}

// Threshold returns the configured similarity threshold.
func (d *Deduplicator) Threshold() float64 {
	return d.threshold
}

// Analysis is the full result of a grouping pass.
// The matrices are indexed like IDs and cover only documents with text.
type Analysis struct {
	IDs      []string
	Lexical  similarity.Matrix
	Semantic similarity.Matrix
	Hybrid   similarity.Matrix
	Groups   []core.Group
}

// Group partitions docs into same-event groups.
func (d *Deduplicator) Group(ctx context.Context, docs []core.Document) ([]core.Group, error) {
	analysis, err := d.Analyze(ctx, docs)
	if err != nil {
		return nil, err
	}
	return analysis.Groups, nil
}

// Analyze partitions docs and keeps the intermediate similarity matrices.
// Duplicate ids keep their first occurrence. An embedding failure aborts the
// whole call with an error wrapping similarity.ErrEmbedding.
func (d *Deduplicator) Analyze(ctx context.Context, docs []core.Document) (*Analysis, error) {
	withText, empty, err := d.prepare(docs)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{}
	switch len(withText) {
	case 0:
	case 1:
		analysis.IDs = []string{withText[0].ID}
		analysis.Groups = []core.Group{{Members: []string{withText[0].ID}}}
	default:
		if err := d.cluster(ctx, withText, analysis); err != nil {
			return nil, err
		}
	}

	for _, doc := range empty {
		analysis.Groups = append(analysis.Groups, core.Group{Members: []string{doc.ID}})
		d.metrics.ObserveGroup(metrics.GroupEmpty)
	}

	d.logSummary(len(withText)+len(empty), analysis)
	return analysis, nil
}

// prepare validates documents, drops repeated ids and splits out documents
// without text. Input order is preserved.
func (d *Deduplicator) prepare(docs []core.Document) (withText, empty []core.Document, err error) {
	seen := make(map[string]struct{}, len(docs))
	for i := range docs {
		doc := docs[i]
		if err := core.ValidateDocument(&doc); err != nil {
			return nil, nil, fmt.Errorf("document %d: %w", i, err)
		}
		if _, dup := seen[doc.ID]; dup {
			d.logger.Warn("duplicate document id, keeping first occurrence", "id", doc.ID)
			continue
		}
		seen[doc.ID] = struct{}{}

		if doc.HasText() {
			withText = append(withText, doc)
		} else {
			d.logger.Debug("document has no text, grouping alone", "id", doc.ID)
			empty = append(empty, doc)
		}
	}
	return withText, empty, nil
}

func (d *Deduplicator) cluster(ctx context.Context, docs []core.Document, analysis *Analysis) error {
	ids := make([]string, len(docs))
	texts := make([]string, len(docs))
	domains := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
		texts[i] = doc.Text
		domains[i] = doc.SourceDomain
		if domains[i] == "" {
			domains[i] = core.DomainFromURL(doc.ID)
		}
	}
	analysis.IDs = ids

	start := time.Now()
	d.logger.Info("requesting embeddings", "count", len(texts))
	sem, err := similarity.Semantic(ctx, d.embedder, texts, d.maxEmbedChars)
	if err != nil {
		d.logger.Error("embedding failed", "err", err)
		return err
	}
	d.metrics.ObserveStage("semantic", time.Since(start))

	start = time.Now()
	lex := similarity.Lexical(texts,
		similarity.WithMaxFeatures(d.lexical.MaxFeatures),
		similarity.WithMaxDocFreq(d.lexical.MaxDocFreq))
	d.metrics.ObserveStage("lexical", time.Since(start))

	hybrid, err := similarity.Combine(lex, sem, domains, d.weights)
	if err != nil {
		return err
	}

	start = time.Now()
	d.logger.Debug("clustering", "threshold", d.threshold, "cut", 1-d.threshold)
	clusters := cluster.Partition(hybrid, d.threshold)
	d.metrics.ObserveStage("cluster", time.Since(start))

	analysis.Lexical = lex
	analysis.Semantic = sem
	analysis.Hybrid = hybrid
	for _, members := range clusters {
		group := core.Group{Members: make([]string, len(members))}
		for k, idx := range members {
			group.Members[k] = ids[idx]
		}
		analysis.Groups = append(analysis.Groups, group)
		if group.IsSingle() {
			d.metrics.ObserveGroup(metrics.GroupSingle)
		} else {
			d.metrics.ObserveGroup(metrics.GroupMerge)
		}
	}
	return nil
}

func (d *Deduplicator) logSummary(total int, analysis *Analysis) {
	stats := Statistics(analysis.Groups)
	d.logger.Info("grouped documents",
		"documents", total,
		"groups", stats.TotalGroups,
		"multi_document_groups", stats.DuplicatedGroups,
		"single_documents", stats.SingleDocuments)

	if !d.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	shown := 0
	for _, g := range analysis.Groups {
		if g.IsSingle() {
			continue
		}
		for _, p := range analysis.PairScores(g) {
			d.logger.Debug("pair score",
				"a", p.A, "b", p.B,
				"semantic", fmt.Sprintf("%.3f", p.Semantic),
				"lexical", fmt.Sprintf("%.3f", p.Lexical),
				"hybrid", fmt.Sprintf("%.3f", p.Hybrid))
		}
		if shown++; shown == 3 {
			break
		}
	}
}
