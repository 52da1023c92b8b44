package dedup

import "github.com/poiesic/storyweave/core"

// PairScore holds the three similarity scores of two documents.
type PairScore struct {
	A, B     string
	Lexical  float64
	Semantic float64
	Hybrid   float64
}

// PairScores returns the scores of consecutive members of g, in member order.
// Members not covered by the matrices are skipped.
func (a *Analysis) PairScores(g core.Group) []PairScore {
	if a == nil || a.Hybrid == nil {
		return nil
	}
	index := make(map[string]int, len(a.IDs))
	for i, id := range a.IDs {
		index[id] = i
	}

	var out []PairScore
	for k := 0; k+1 < len(g.Members); k++ {
		i, okA := index[g.Members[k]]
		j, okB := index[g.Members[k+1]]
		if !okA || !okB {
			continue
		}
		out = append(out, PairScore{
			A:        g.Members[k],
			B:        g.Members[k+1],
			Lexical:  a.Lexical.At(i, j),
			Semantic: a.Semantic.At(i, j),
			Hybrid:   a.Hybrid.At(i, j),
		})
	}
	return out
}

// Statistics summarizes a set of groups.
func Statistics(groups []core.Group) core.GroupStats {
	stats := core.GroupStats{TotalGroups: len(groups)}
	for _, g := range groups {
		stats.TotalDocuments += g.Size()
		if g.Size() > 1 {
			stats.DuplicatedGroups++
		} else if g.Size() == 1 {
			stats.SingleDocuments++
		}
	}
	if stats.TotalGroups > 0 {
		stats.DuplicateRate = float64(stats.DuplicatedGroups) / float64(stats.TotalGroups)
	}
	return stats
}
