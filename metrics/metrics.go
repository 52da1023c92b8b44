// Package metrics exposes Prometheus collectors for the pipeline stages.
//
// A nil *Metrics is valid and records nothing, so components can take an
// optional metrics handle without branching at every call site.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeRetry   = "retry"
	OutcomeFailure = "failure"
)

// Group kinds.
const (
	GroupSingle = "single"
	GroupMerge  = "merge"
	GroupEmpty  = "empty"
)

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	EmbeddingRequests  prometheus.Counter
	EmbeddingTexts     prometheus.Counter
	EmbeddingFailures  prometheus.Counter
	CacheLookups       *prometheus.CounterVec
	Generations        *prometheus.CounterVec
	Groups             *prometheus.CounterVec
	SynthesisDuration  prometheus.Histogram
	StageDuration      *prometheus.HistogramVec
	ExtractionFailures prometheus.Counter
}

// New creates a Metrics instance with every collector registered under namespace.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "storyweave"
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())

	m := &Metrics{
		registry: registry,
		EmbeddingRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_requests_total",
			Help:      "Batch embedding requests sent to the embedding service.",
		}),
		EmbeddingTexts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_texts_total",
			Help:      "Texts sent for embedding.",
		}),
		EmbeddingFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_failures_total",
			Help:      "Embedding requests that returned an error.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_lookups_total",
			Help:      "Embedding cache lookups by result.",
		}, []string{"result"}),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_attempts_total",
			Help:      "Article generation attempts by outcome.",
		}, []string{"outcome"}),
		Groups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_total",
			Help:      "Groups produced by deduplication, by kind.",
		}, []string{"kind"}),
		SynthesisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "group_synthesis_seconds",
			Help:      "Time to synthesize one merged group, retries included.",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 40, 80},
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_seconds",
			Help:      "Wall time of each pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		ExtractionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_failures_total",
			Help:      "URLs whose content could not be extracted.",
		}),
	}

	registry.MustRegister(
		m.EmbeddingRequests,
		m.EmbeddingTexts,
		m.EmbeddingFailures,
		m.CacheLookups,
		m.Generations,
		m.Groups,
		m.SynthesisDuration,
		m.StageDuration,
		m.ExtractionFailures,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveEmbedding records one batch request of n texts.
func (m *Metrics) ObserveEmbedding(n int, err error) {
	if m == nil {
		return
	}
	m.EmbeddingRequests.Inc()
	m.EmbeddingTexts.Add(float64(n))
	if err != nil {
		m.EmbeddingFailures.Inc()
	}
}

// ObserveCache records cache hits and misses for one lookup batch.
func (m *Metrics) ObserveCache(hits, misses int) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues("hit").Add(float64(hits))
	m.CacheLookups.WithLabelValues("miss").Add(float64(misses))
}

// ObserveGeneration records a generation attempt outcome.
func (m *Metrics) ObserveGeneration(outcome string) {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues(outcome).Inc()
}

// ObserveGroup records one group of the given kind.
func (m *Metrics) ObserveGroup(kind string) {
	if m == nil {
		return
	}
	m.Groups.WithLabelValues(kind).Inc()
}

// ObserveSynthesis records the time spent on one merged group.
func (m *Metrics) ObserveSynthesis(d time.Duration) {
	if m == nil {
		return
	}
	m.SynthesisDuration.Observe(d.Seconds())
}

// ObserveStage records the duration of a named stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveExtractionFailure counts one failed extraction.
func (m *Metrics) ObserveExtractionFailure() {
	if m == nil {
		return
	}
	m.ExtractionFailures.Inc()
}
