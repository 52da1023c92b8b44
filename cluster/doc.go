// Package cluster implements average-linkage (UPGMA) agglomerative
// clustering over a precomputed distance matrix and flat cuts of the
// resulting dendrogram.
//
// Merge order is deterministic: when several pairs share the minimum
// distance, the pair whose clusters contain the lowest input indices wins.
package cluster
