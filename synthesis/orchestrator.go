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

package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/storyweave/ai"
	"github.com/poiesic/storyweave/core"
	"github.com/poiesic/storyweave/metrics"
)

const (
	DefaultMaxConcurrent = 10
	DefaultMaxRetries    = 3
	DefaultRetryDelay    = 3 * time.Second

	// languageSampleRunes bounds the text handed to the language detector.
	languageSampleRunes = 1000

	unavailableSource = "(text unavailable)"
)

// LanguageDetector guesses the natural language of a text.
type LanguageDetector interface {
	Detect(text string) (string, bool)
}

// Orchestrator turns groups of documents into one article per group.
// Merge groups are generated concurrently on a bounded worker pool.
type Orchestrator struct {
	generator     ai.Generator
	pool          *ants.Pool
	maxConcurrent int
	maxRetries    int
	retryDelay    time.Duration
	detector      LanguageDetector
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithMaxConcurrent bounds the number of generation calls in flight.
// Default is DefaultMaxConcurrent.
func WithMaxConcurrent(n int) Option {
	return func(o *Orchestrator) error {
		if n < 1 {
			n = 1
		}
		o.maxConcurrent = n
		return nil
	}
}

// WithMaxRetries sets the number of generation attempts per group.
// Default is DefaultMaxRetries.
func WithMaxRetries(n int) Option {
	return func(o *Orchestrator) error {
		if n < 1 {
			return fmt.Errorf("%w: got %d", ErrInvalidMaxAttempts, n)
		}
		o.maxRetries = n
		return nil
	}
}

// WithRetryDelay sets the fixed pause between generation attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Orchestrator) error {
		if d < 0 {
			d = 0
		}
		o.retryDelay = d
		return nil
	}
}

// WithLanguageDetector enables a language instruction in merge prompts.
func WithLanguageDetector(d LanguageDetector) Option {
	return func(o *Orchestrator) error {
		o.detector = d
		return nil
	}
}

// WithMetrics records generation outcomes and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) error {
		o.metrics = m
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// New creates an Orchestrator backed by generator.
// Call Release when finished to free the worker pool.
func New(generator ai.Generator, opts ...Option) (*Orchestrator, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	o := &Orchestrator{
		generator:     generator,
		maxConcurrent: DefaultMaxConcurrent,
		maxRetries:    DefaultMaxRetries,
		retryDelay:    DefaultRetryDelay,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	o.logger = o.logger.With("component", "synthesis")

	pool, err := ants.NewPool(o.maxConcurrent)
	if err != nil {
		return nil, err
	}
	o.pool = pool
	return o, nil
}

// MaxConcurrent returns the worker pool size.
func (o *Orchestrator) MaxConcurrent() int {
	return o.maxConcurrent
}

// Release frees the worker pool.
func (o *Orchestrator) Release() {
	if o.pool != nil {
		o.pool.Release()
	}
}

// Synthesize produces exactly one article per group, in group order.
// docs maps document ids to documents. Single-member groups are handled
// inline without a generation call. A failure in one group never affects
// another; it yields an article with StatusFailed. progress may be nil.
func (o *Orchestrator) Synthesize(ctx context.Context, groups []core.Group, docs map[string]core.Document, progress ProgressFunc) []core.SynthesizedArticle {
	results := make([]core.SynthesizedArticle, len(groups))
	if len(groups) == 0 {
		return results
	}

	total := len(groups)
	completed := 0
	var progressMu sync.Mutex
	done := func() {
		progressMu.Lock()
		defer progressMu.Unlock()
		completed++
		if progress != nil {
			progress(float64(completed) / float64(total))
		}
	}

	var merges []int
	for i, group := range groups {
		switch {
		case group.Size() == 0:
			results[i] = failedArticle(group, core.ErrEmptyGroup)
			done()
		case group.IsSingle():
			results[i] = singleFromGroup(group, docs)
			done()
		default:
			merges = append(merges, i)
		}
	}

	var wg sync.WaitGroup
	for _, i := range merges {
		group := groups[i]

		wg.Add(1)
		err := o.pool.Submit(func() {
			defer wg.Done()
			results[i] = o.merge(ctx, group, docs)
			done()
		})
		if err != nil {
			wg.Done()
			o.logger.Error("failed to submit synthesis task", "group", i, "error", err)
			results[i] = failedArticle(group, err)
			done()
		}
	}
	wg.Wait()

	o.logger.Info("synthesis finished", "groups", total, "merged", len(merges))
	return results
}

func singleFromGroup(group core.Group, docs map[string]core.Document) core.SynthesizedArticle {
	title, content, summary := singleArticle(docs[group.Members[0]].Text)
	return core.SynthesizedArticle{
		Title:     title,
		Content:   content,
		Summary:   summary,
		GroupSize: 1,
		SourceIDs: []string{group.Members[0]},
		Status:    core.StatusDone,
	}
}

func (o *Orchestrator) merge(ctx context.Context, group core.Group, docs map[string]core.Document) core.SynthesizedArticle {
	start := time.Now()

	sources := make([]string, len(group.Members))
	var withText []string
	for i, id := range group.Members {
		doc, ok := docs[id]
		if !ok || !doc.HasText() {
			sources[i] = unavailableSource
			continue
		}
		sources[i] = doc.Text
		withText = append(withText, doc.Text)
	}
	if len(withText) == 0 {
		o.metrics.ObserveGeneration(metrics.OutcomeFailure)
		return failedArticle(group, ErrNoContent)
	}

	req := ai.GenerationRequest{
		System: buildSystemPrompt(o.language(withText)),
		Prompt: buildPrompt(sources),
	}

	var response string
	err := RetryWithDelay(ctx, func(attempt int) error {
		out, err := o.generator.Generate(ctx, req)
		if err == nil && strings.TrimSpace(out) == "" {
			err = ErrEmptyResponse
		}
		if err != nil {
			o.metrics.ObserveGeneration(metrics.OutcomeRetry)
			o.logger.Warn("generation attempt failed", "members", group.Size(), "attempt", attempt, "error", err)
			return err
		}
		response = out
		return nil
	}, o.maxRetries, o.retryDelay)
	o.metrics.ObserveSynthesis(time.Since(start))

	if err != nil {
		o.metrics.ObserveGeneration(metrics.OutcomeFailure)
		o.logger.Error("group synthesis failed", "members", group.Size(), "error", err)
		return failedArticle(group, err)
	}
	o.metrics.ObserveGeneration(metrics.OutcomeSuccess)

	title, content, summary := parseArticle(response)
	return core.SynthesizedArticle{
		Title:     title,
		Content:   content,
		Summary:   summary,
		GroupSize: group.Size(),
		SourceIDs: append([]string(nil), group.Members...),
		Status:    core.StatusDone,
	}
}

func (o *Orchestrator) language(texts []string) string {
	if o.detector == nil {
		return ""
	}
	sample := truncateRunes(strings.Join(texts, "\n"), languageSampleRunes)
	lang, ok := o.detector.Detect(sample)
	if !ok {
		return ""
	}
	return lang
}

func failedArticle(group core.Group, err error) core.SynthesizedArticle {
	return core.SynthesizedArticle{
		Title:     failedTitle,
		Content:   fmt.Sprintf("The article could not be generated: %v", err),
		Summary:   "",
		GroupSize: group.Size(),
		SourceIDs: append([]string(nil), group.Members...),
		Status:    core.StatusFailed,
	}
}
