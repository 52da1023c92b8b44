package similarity

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// LexicalConfig controls TF-IDF vectorization.
type LexicalConfig struct {
	// MaxFeatures caps the vocabulary at the most frequent terms. Default: 500
	MaxFeatures int

	// MaxDocFreq drops terms that appear in more than this fraction of
	// documents. Default: 0.8
	MaxDocFreq float64

	// MinTokenLength is the minimum token length in runes. Default: 2
	MinTokenLength int
}

// LexicalOption is a functional option for configuring lexical similarity.
type LexicalOption func(*LexicalConfig)

// WithMaxFeatures sets the vocabulary cap.
func WithMaxFeatures(n int) LexicalOption {
	return func(c *LexicalConfig) {
		c.MaxFeatures = n
	}
}

// WithMaxDocFreq sets the document-frequency ceiling as a fraction of the corpus.
func WithMaxDocFreq(f float64) LexicalOption {
	return func(c *LexicalConfig) {
		c.MaxDocFreq = f
	}
}

// DefaultLexicalConfig returns the default TF-IDF settings.
func DefaultLexicalConfig() LexicalConfig {
	return LexicalConfig{
		MaxFeatures:    500,
		MaxDocFreq:     0.8,
		MinTokenLength: 2,
	}
}

// Lexical returns the cosine similarity of TF-IDF vectors built from texts.
//
// Terms are unigrams and bigrams of normalized tokens. Terms occurring in
// more than MaxDocFreq·N documents are dropped, then the vocabulary is cut
// to the MaxFeatures terms with the highest corpus count (ties broken by
// term). Weights are count·idf with idf = ln((1+N)/(1+df)) + 1, and each row
// is L2-normalized. A document with no surviving terms has similarity 0 to
// every other document.
func Lexical(texts []string, opts ...LexicalOption) Matrix {
	cfg := DefaultLexicalConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	n := len(texts)
	if n == 0 {
		return Matrix{}
	}

	counts := make([]map[string]int, n)
	docFreq := make(map[string]int)
	corpusFreq := make(map[string]int)
	for i, text := range texts {
		counts[i] = termCounts(text, cfg.MinTokenLength)
		for term, c := range counts[i] {
			docFreq[term]++
			corpusFreq[term] += c
		}
	}

	vocab := buildVocabulary(docFreq, corpusFreq, n, cfg)

	vectors := make([][]weightedTerm, n)
	for i := range texts {
		vectors[i] = tfidfVector(counts[i], vocab, n)
	}

	return symmetricFrom(n, func(i, j int) float64 {
		return clamp01(sparseDot(vectors[i], vectors[j]))
	})
}

// termCounts tokenizes normalized text and counts unigrams and bigrams.
func termCounts(text string, minLen int) map[string]int {
	fields := strings.Fields(Normalize(text))
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minLen {
			tokens = append(tokens, f)
		}
	}

	counts := make(map[string]int, 2*len(tokens))
	for i, tok := range tokens {
		counts[tok]++
		if i+1 < len(tokens) {
			counts[tok+" "+tokens[i+1]]++
		}
	}
	return counts
}

// buildVocabulary applies document-frequency pruning and the feature cap.
// The returned map holds the document frequency of each kept term.
func buildVocabulary(docFreq, corpusFreq map[string]int, n int, cfg LexicalConfig) map[string]int {
	maxDocCount := cfg.MaxDocFreq * float64(n)

	terms := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if cfg.MaxDocFreq > 0 && float64(df) > maxDocCount {
			continue
		}
		terms = append(terms, term)
	}

	if cfg.MaxFeatures > 0 && len(terms) > cfg.MaxFeatures {
		sort.Slice(terms, func(a, b int) bool {
			ca, cb := corpusFreq[terms[a]], corpusFreq[terms[b]]
			if ca != cb {
				return ca > cb
			}
			return terms[a] < terms[b]
		})
		terms = terms[:cfg.MaxFeatures]
	}

	vocab := make(map[string]int, len(terms))
	for _, term := range terms {
		vocab[term] = docFreq[term]
	}
	return vocab
}

// weightedTerm is one non-zero entry of a sparse TF-IDF row.
type weightedTerm struct {
	text   string
	weight float64
}

// tfidfVector returns the L2-normalized row sorted by term text, so that
// summation order and therefore the result is reproducible.
func tfidfVector(counts map[string]int, vocab map[string]int, n int) []weightedTerm {
	vec := make([]weightedTerm, 0, len(counts))
	for text, c := range counts {
		df, ok := vocab[text]
		if !ok {
			continue
		}
		idf := math.Log(float64(1+n)/float64(1+df)) + 1
		vec = append(vec, weightedTerm{text: text, weight: float64(c) * idf})
	}
	sort.Slice(vec, func(a, b int) bool { return vec[a].text < vec[b].text })

	var norm float64
	for _, t := range vec {
		norm += t.weight * t.weight
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i].weight /= norm
	}
	return vec
}

// sparseDot merges two sorted rows.
func sparseDot(a, b []weightedTerm) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].text == b[j].text:
			dot += a[i].weight * b[j].weight
			i++
			j++
		case a[i].text < b[j].text:
			i++
		default:
			j++
		}
	}
	return dot
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
