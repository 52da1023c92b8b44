// Package similarity computes pairwise document similarity.
//
// Three N×N matrices are produced for a batch of texts:
//
//   - Lexical: TF-IDF over unigrams and bigrams, compared by cosine
//   - Semantic: cosine of embedding vectors from a single batched request
//   - Hybrid: a per-pair weighted blend of the two, where the lexical weight
//     is raised for pairs from the same ambiguous outlet
//
// Every matrix is symmetric with a unit diagonal. The upper triangle is
// computed and mirrored, so symmetry is exact rather than approximate.
package similarity
