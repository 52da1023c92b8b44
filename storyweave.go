// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storyweave groups news documents that report the same event and
// writes one article per group.
package storyweave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/storyweave/ai"
	"github.com/poiesic/storyweave/ai/openai"
	"github.com/poiesic/storyweave/core"
	"github.com/poiesic/storyweave/dedup"
	"github.com/poiesic/storyweave/metrics"
	"github.com/poiesic/storyweave/similarity"
	"github.com/poiesic/storyweave/storage"
	"github.com/poiesic/storyweave/storage/badger"
	"github.com/poiesic/storyweave/synthesis"
)

// Engine wires the AI provider, optional storage, the deduplicator and the
// synthesis orchestrator into a single pipeline.
type Engine struct {
	provider ai.AIProvider
	store    storage.Store
	dedup    *dedup.Deduplicator
	synth    *synthesis.Orchestrator
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions) error

type engineOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	settings *Settings
	dbPath   string
	inMemory bool
	metrics  *metrics.Metrics
	detector synthesis.LanguageDetector
	logger   *slog.Logger
}

// WithAIConfig sets the configuration used to build the OpenAI-compatible
// provider. Ignored when WithProvider is used.
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) error {
		o.aiConfig = cfg
		return nil
	}
}

// WithProvider uses an existing provider. The engine closes it on Close.
func WithProvider(p ai.AIProvider) EngineOption {
	return func(o *engineOptions) error {
		o.provider = p
		return nil
	}
}

// WithSettings replaces DefaultSettings.
func WithSettings(s *Settings) EngineOption {
	return func(o *engineOptions) error {
		if s == nil {
			return nil
		}
		if err := s.Validate(); err != nil {
			return err
		}
		o.settings = s
		return nil
	}
}

// WithDatabase enables the run store and embedding cache in the BadgerDB
// directory at path.
func WithDatabase(path string) EngineOption {
	return func(o *engineOptions) error {
		o.dbPath = path
		return nil
	}
}

// WithMemoryDatabase enables an in-memory run store and embedding cache.
func WithMemoryDatabase() EngineOption {
	return func(o *engineOptions) error {
		o.inMemory = true
		return nil
	}
}

// WithMetrics records pipeline metrics into m.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(o *engineOptions) error {
		o.metrics = m
		return nil
	}
}

// WithLanguageDetector asks the generator to write in the sources' language.
func WithLanguageDetector(d synthesis.LanguageDetector) EngineOption {
	return func(o *engineOptions) error {
		o.detector = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) error {
		o.logger = logger
		return nil
	}
}

// NewEngine creates an Engine. Call Close when done.
func NewEngine(opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		settings: DefaultSettings(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	provider := options.provider
	if provider == nil {
		cfg := options.aiConfig
		if cfg == nil {
			cfg = options.settings.AIConfig("")
		}
		var err error
		provider, err = openai.NewProvider(cfg)
		if err != nil {
			return nil, err
		}
	}

	var store storage.Store
	switch {
	case options.dbPath != "":
		s, err := badger.NewStore(options.dbPath)
		if err != nil {
			provider.Close()
			return nil, err
		}
		store = s
	case options.inMemory:
		s, err := badger.NewMemoryStore()
		if err != nil {
			provider.Close()
			return nil, err
		}
		store = s
	}

	closeAll := func() {
		if store != nil {
			store.Close()
		}
		provider.Close()
	}

	embedder := metrics.InstrumentEmbedder(provider.Embedder(), options.metrics)
	if store != nil {
		embedder = similarity.NewCachedEmbedder(embedder, store.Embeddings(), provider.EmbeddingModel(), options.metrics)
	}

	dedupOpts := append(options.settings.dedupOptions(),
		dedup.WithMetrics(options.metrics),
		dedup.WithLogger(options.logger),
	)
	deduplicator, err := dedup.New(embedder, dedupOpts...)
	if err != nil {
		closeAll()
		return nil, err
	}

	synthOpts := append(options.settings.synthesisOptions(),
		synthesis.WithMetrics(options.metrics),
		synthesis.WithLogger(options.logger),
	)
	if options.detector != nil {
		synthOpts = append(synthOpts, synthesis.WithLanguageDetector(options.detector))
	}
	orchestrator, err := synthesis.New(provider.Generator(), synthOpts...)
	if err != nil {
		closeAll()
		return nil, err
	}

	return &Engine{
		provider: provider,
		store:    store,
		dedup:    deduplicator,
		synth:    orchestrator,
		metrics:  options.metrics,
		logger:   options.logger.With("component", "engine"),
	}, nil
}

// Threshold returns the similarity threshold used for grouping.
func (e *Engine) Threshold() float64 {
	return e.dedup.Threshold()
}

// Runs returns the run repository, or nil when no database is configured.
func (e *Engine) Runs() storage.RunRepository {
	if e.store == nil {
		return nil
	}
	return e.store.Runs()
}

// Analyze groups docs without synthesizing and returns the similarity
// matrices behind the grouping.
func (e *Engine) Analyze(ctx context.Context, docs []core.Document) (*dedup.Analysis, error) {
	return e.dedup.Analyze(ctx, docs)
}

// Run groups docs, writes one article per group and returns the run. The run
// is persisted when a database is configured. progress may be nil.
func (e *Engine) Run(ctx context.Context, docs []core.Document, progress synthesis.ProgressFunc) (*core.Run, error) {
	analysis, err := e.dedup.Analyze(ctx, docs)
	if err != nil {
		return nil, err
	}
	return e.Synthesize(ctx, analysis, docs, progress)
}

// Synthesize writes one article per group of a previous Analyze call over
// docs and returns the run. Callers that need the group count before
// generation starts use Analyze followed by Synthesize instead of Run.
func (e *Engine) Synthesize(ctx context.Context, analysis *dedup.Analysis, docs []core.Document, progress synthesis.ProgressFunc) (*core.Run, error) {
	start := time.Now()

	byID := make(map[string]core.Document, len(docs))
	for _, doc := range docs {
		if _, seen := byID[doc.ID]; !seen {
			byID[doc.ID] = doc
		}
	}

	articles := e.synth.Synthesize(ctx, analysis.Groups, byID, progress)
	e.metrics.ObserveStage("synthesis", time.Since(start))

	run := &core.Run{
		CreatedAt: time.Now().UTC(),
		Threshold: e.dedup.Threshold(),
		Articles:  articles,
		Stats:     dedup.Statistics(analysis.Groups),
	}

	if e.store != nil {
		if _, err := e.store.Runs().SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
	}

	failed := 0
	for _, a := range articles {
		if a.Status == core.StatusFailed {
			failed++
		}
	}
	e.logger.Info("run complete",
		"documents", run.Stats.TotalDocuments,
		"groups", run.Stats.TotalGroups,
		"duplicated", run.Stats.DuplicatedGroups,
		"failed", failed,
		"elapsed", time.Since(start))

	return run, nil
}

// Close releases the worker pool, the provider and the database.
func (e *Engine) Close() error {
	e.synth.Release()

	var errs []error
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Error("error closing storage", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
