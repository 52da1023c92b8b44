// Package dedup groups news documents that describe the same event.
//
// Grouping runs four sequential stages over the documents that have text:
// semantic similarity from one batched embedding request, lexical TF-IDF
// similarity, a domain-aware weighted blend of the two, and an
// average-linkage clustering cut at 1−threshold.
//
// Degenerate inputs short-circuit: no documents yields no groups, a single
// document with text yields one group without contacting the embedding
// service, and documents without text are always placed in their own
// singleton groups after the clustered ones.
package dedup
