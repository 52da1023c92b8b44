package dedup

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/poiesic/storyweave/ai/mock"
	"github.com/poiesic/storyweave/core"
	"github.com/poiesic/storyweave/similarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	textA = "Fire destroys a warehouse in the Alcorcón industrial park on Tuesday night. Firefighters worked for hours."
	textB = "A fire destroys a warehouse in the Alcorcón industrial park. Firefighters worked for hours on Tuesday."
	textC = "The city council approved the new library budget after a long debate."
	textD = "Boadilla council opens new sports centre in the town, the mayor announced on Monday."
	textE = "Boadilla council approves new parking rules in the town centre, the mayor announced on Friday."
)

// vectorsByText returns an embedding function that looks vectors up by text.
func vectorsByText(vectors map[string][]float32) func(context.Context, []string) ([][]float32, error) {
	return func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			v, ok := vectors[text]
			if !ok {
				return nil, fmt.Errorf("no vector for %q", text)
			}
			out[i] = v
		}
		return out, nil
	}
}

func newTestDeduplicator(t *testing.T, embedder *mock.MockEmbedder, opts ...Option) *Deduplicator {
	t.Helper()
	d, err := New(embedder, opts...)
	require.NoError(t, err)
	return d
}

func members(groups []core.Group) [][]string {
	out := make([][]string, len(groups))
	for i, g := range groups {
		out[i] = g.Members
	}
	return out
}

func TestNew(t *testing.T) {
	embedder := mock.NewMockEmbedder()

	t.Run("defaults", func(t *testing.T) {
		d, err := New(embedder)
		require.NoError(t, err)
		assert.Equal(t, 0.75, d.Threshold())
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	tests := []struct {
		name    string
		opt     Option
		wantErr error
	}{
		{name: "zero threshold", opt: WithThreshold(0), wantErr: ErrInvalidThreshold},
		{name: "threshold of one", opt: WithThreshold(1), wantErr: ErrInvalidThreshold},
		{name: "negative base weight", opt: WithBaseWeight(-0.1), wantErr: ErrInvalidWeight},
		{name: "ambiguous weight above one", opt: WithAmbiguousWeight(1.5), wantErr: ErrInvalidWeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(embedder, tt.opt)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGroup_Empty(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	d := newTestDeduplicator(t, embedder)

	groups, err := d.Group(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, groups)
	assert.Equal(t, 0, embedder.CallCount())
}

func TestGroup_SingleDocumentSkipsEmbedding(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	d := newTestDeduplicator(t, embedder)

	groups, err := d.Group(context.Background(), []core.Document{
		core.NewDocument("https://a.example/1", textA),
	})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"https://a.example/1"}}, members(groups))
	assert.Equal(t, 0, embedder.CallCount())
}

func TestGroup_EmptyTextBecomesSingleton(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	d := newTestDeduplicator(t, embedder)

	docs := []core.Document{
		core.NewDocument("https://a.example/empty", ""),
		core.NewDocument("https://a.example/1", textA),
		core.NewDocument("https://a.example/blank", "   \n"),
	}

	groups, err := d.Group(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"https://a.example/1"},
		{"https://a.example/empty"},
		{"https://a.example/blank"},
	}, members(groups))
	assert.Equal(t, 0, embedder.CallCount(), "one text document needs no embedding")
}

func TestGroup_AllEmpty(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	d := newTestDeduplicator(t, embedder)

	groups, err := d.Group(context.Background(), []core.Document{
		{ID: "x"}, {ID: "y"},
	})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"x"}, {"y"}}, members(groups))
	assert.Equal(t, 0, embedder.CallCount())
}

func TestGroup_SameEventScenario(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = vectorsByText(map[string][]float32{
		textA: {1, 0, 0},
		textB: {0.9, float32(math.Sqrt(1 - 0.81)), 0},
		textC: {0, 0, 1},
	})
	d := newTestDeduplicator(t, embedder)

	docs := []core.Document{
		core.NewDocument("https://www.soydemadrid.com/a", textA),
		core.NewDocument("https://www.soydemadrid.com/b", textB),
		core.NewDocument("https://other.es/c", textC),
	}

	groups, err := d.Group(context.Background(), docs)
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"https://www.soydemadrid.com/a", "https://www.soydemadrid.com/b"},
		{"https://other.es/c"},
	}, members(groups))
	assert.Equal(t, 1, embedder.CallCount())
	assert.Equal(t, [][]string{{textA, textB, textC}}, embedder.Batches())
	require.NoError(t, core.ValidatePartition([]string{docs[0].ID, docs[1].ID, docs[2].ID}, groups))
}

func TestGroup_AmbiguousDomainRaisesLexicalWeight(t *testing.T) {
	vectors := map[string][]float32{
		textD: {1, 0, 0},
		textE: {0.95, float32(math.Sqrt(1 - 0.95*0.95)), 0},
		textC: {0, 0, 1},
	}

	run := func(t *testing.T, idD, idE string, opts ...Option) [][]string {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = vectorsByText(vectors)
		d := newTestDeduplicator(t, embedder, opts...)

		groups, err := d.Group(context.Background(), []core.Document{
			core.NewDocument(idD, textD),
			core.NewDocument(idE, textE),
			core.NewDocument("https://other.es/c", textC),
		})
		require.NoError(t, err)
		return members(groups)
	}

	t.Run("same ambiguous domain stays apart", func(t *testing.T) {
		got := run(t, "https://boadilladigital.es/d", "https://boadilladigital.es/e")
		assert.Len(t, got, 3)
	})

	t.Run("different domains merge", func(t *testing.T) {
		got := run(t, "https://boadilladigital.es/d", "https://elpais.com/e")
		assert.Equal(t, []string{"https://boadilladigital.es/d", "https://elpais.com/e"}, got[0])
	})

	t.Run("domain not flagged merges", func(t *testing.T) {
		got := run(t, "https://boadilladigital.es/d", "https://boadilladigital.es/e", WithAmbiguousDomains())
		assert.Len(t, got, 2)
	})
}

func TestGroup_ThresholdControlsMerging(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = vectorsByText(map[string][]float32{
		textA: {1, 0, 0},
		textB: {0.9, float32(math.Sqrt(1 - 0.81)), 0},
		textC: {0, 0, 1},
	})
	docs := []core.Document{
		core.NewDocument("https://a.es/a", textA),
		core.NewDocument("https://b.es/b", textB),
		core.NewDocument("https://c.es/c", textC),
	}

	loose := newTestDeduplicator(t, embedder, WithThreshold(0.5))
	groups, err := loose.Group(context.Background(), docs)
	require.NoError(t, err)
	assert.Len(t, groups, 2)

	strict := newTestDeduplicator(t, embedder, WithThreshold(0.95))
	groups, err = strict.Group(context.Background(), docs)
	require.NoError(t, err)
	assert.Len(t, groups, 3)
}

func TestGroup_DuplicateIDsKeepFirst(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	d := newTestDeduplicator(t, embedder)

	groups, err := d.Group(context.Background(), []core.Document{
		core.NewDocument("https://a.example/1", textA),
		core.NewDocument("https://a.example/1", textC),
	})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"https://a.example/1"}}, members(groups))
	assert.Equal(t, 0, embedder.CallCount())
}

func TestGroup_BlankIDRejected(t *testing.T) {
	d := newTestDeduplicator(t, mock.NewMockEmbedder())

	_, err := d.Group(context.Background(), []core.Document{{ID: " ", Text: textA}})
	assert.ErrorIs(t, err, core.ErrEmptyID)
}

func TestGroup_EmbeddingFailureIsFatal(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("quota exceeded")
	}
	d := newTestDeduplicator(t, embedder)

	groups, err := d.Group(context.Background(), []core.Document{
		core.NewDocument("https://a.es/a", textA),
		core.NewDocument("https://b.es/b", textB),
	})
	assert.Nil(t, groups)
	assert.ErrorIs(t, err, similarity.ErrEmbedding)
	assert.Equal(t, 1, embedder.CallCount())
}

func TestGroup_PartitionInvariant(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	d := newTestDeduplicator(t, embedder, WithThreshold(0.6))

	words := []string{"fire", "council", "budget", "traffic", "school", "hospital", "festival", "market"}
	var docs []core.Document
	var ids []string
	for i := 0; i < 30; i++ {
		text := strings.Repeat(words[i%len(words)]+" ", 3) + words[(i*3)%len(words)]
		if i%7 == 0 {
			text = ""
		}
		id := fmt.Sprintf("https://outlet%d.es/story/%d", i%4, i)
		docs = append(docs, core.NewDocument(id, text))
		ids = append(ids, id)
	}

	groups, err := d.Group(context.Background(), docs)
	require.NoError(t, err)
	require.NoError(t, core.ValidatePartition(ids, groups))
	assert.Equal(t, 1, embedder.CallCount())
}

func TestAnalyze_PairScores(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = vectorsByText(map[string][]float32{
		textA: {1, 0, 0},
		textB: {0.9, float32(math.Sqrt(1 - 0.81)), 0},
		textC: {0, 0, 1},
	})
	d := newTestDeduplicator(t, embedder)

	analysis, err := d.Analyze(context.Background(), []core.Document{
		core.NewDocument("https://a.es/a", textA),
		core.NewDocument("https://b.es/b", textB),
		core.NewDocument("https://c.es/c", textC),
	})
	require.NoError(t, err)
	require.Equal(t, 3, analysis.Hybrid.Size())
	assert.True(t, analysis.Hybrid.IsSymmetric(0))

	scores := analysis.PairScores(analysis.Groups[0])
	require.Len(t, scores, 1)
	assert.Equal(t, "https://a.es/a", scores[0].A)
	assert.InDelta(t, 0.9, scores[0].Semantic, 1e-6)
	assert.InDelta(t, 0.3*scores[0].Lexical+0.7*scores[0].Semantic, scores[0].Hybrid, 1e-12)

	assert.Empty(t, analysis.PairScores(analysis.Groups[1]))
}

func TestStatistics(t *testing.T) {
	groups := []core.Group{
		{Members: []string{"a", "b", "c"}},
		{Members: []string{"d"}},
		{Members: []string{"e", "f"}},
		{Members: []string{"g"}},
	}

	stats := Statistics(groups)
	assert.Equal(t, core.GroupStats{
		TotalDocuments:   7,
		TotalGroups:      4,
		DuplicatedGroups: 2,
		SingleDocuments:  2,
		DuplicateRate:    0.5,
	}, stats)

	assert.Equal(t, core.GroupStats{}, Statistics(nil))
}
