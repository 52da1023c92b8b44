package cluster

import (
	"sort"

	"github.com/poiesic/storyweave/similarity"
)

// Merge records one agglomeration step. Left and Right are cluster ids:
// ids below the leaf count are input indices, and the k-th merge creates
// cluster id leaves+k.
type Merge struct {
	Left     int
	Right    int
	Distance float64
	Size     int
}

// Dendrogram is the full merge history of an agglomerative clustering.
type Dendrogram struct {
	Leaves int
	Merges []Merge
}

// DistanceFromSimilarity converts similarity to distance as 1−s, clipped to
// [0,2], with a zero diagonal.
func DistanceFromSimilarity(sim similarity.Matrix) similarity.Matrix {
	n := sim.Size()
	d := similarity.NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			d[i][j] = clip(1-sim[i][j], 0, 2)
		}
	}
	return d
}

// AverageLinkage clusters the n points of dist bottom-up. At each step the
// two closest active clusters are merged and the distance from the merged
// cluster to every other cluster becomes the size-weighted mean of the two
// previous distances.
func AverageLinkage(dist similarity.Matrix) Dendrogram {
	n := dist.Size()
	dg := Dendrogram{Leaves: n, Merges: make([]Merge, 0, max(n-1, 0))}
	if n < 2 {
		return dg
	}

	// Slot i always holds the cluster whose smallest member is leaf i, so
	// scanning slots in order breaks ties by lowest input index.
	d := similarity.NewMatrix(n)
	for i := range d {
		copy(d[i], dist[i])
	}
	active := make([]bool, n)
	size := make([]int, n)
	id := make([]int, n)
	for i := 0; i < n; i++ {
		active[i] = true
		size[i] = 1
		id[i] = i
	}

	for step := 0; step < n-1; step++ {
		bi, bj := -1, -1
		best := 0.0
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				if bi < 0 || d[i][j] < best {
					bi, bj, best = i, j, d[i][j]
				}
			}
		}

		merged := size[bi] + size[bj]
		dg.Merges = append(dg.Merges, Merge{
			Left:     id[bi],
			Right:    id[bj],
			Distance: best,
			Size:     merged,
		})

		for k := 0; k < n; k++ {
			if !active[k] || k == bi || k == bj {
				continue
			}
			v := (float64(size[bi])*d[bi][k] + float64(size[bj])*d[bj][k]) / float64(merged)
			d[bi][k] = v
			d[k][bi] = v
		}
		active[bj] = false
		size[bi] = merged
		id[bi] = n + step
	}
	return dg
}

// Cut returns the flat clusters obtained by applying every merge whose
// distance is at most maxDistance. Each cluster lists leaf indices in
// ascending order and clusters are ordered by their smallest leaf.
func (dg Dendrogram) Cut(maxDistance float64) [][]int {
	uf := newUnionFind(dg.Leaves + len(dg.Merges))
	for k, m := range dg.Merges {
		if m.Distance > maxDistance {
			continue
		}
		node := dg.Leaves + k
		uf.union(node, m.Left)
		uf.union(node, m.Right)
	}

	byRoot := make(map[int][]int)
	for leaf := 0; leaf < dg.Leaves; leaf++ {
		root := uf.find(leaf)
		byRoot[root] = append(byRoot[root], leaf)
	}

	clusters := make([][]int, 0, len(byRoot))
	for _, members := range byRoot {
		clusters = append(clusters, members)
	}
	sort.Slice(clusters, func(a, b int) bool { return clusters[a][0] < clusters[b][0] })
	return clusters
}

// Partition groups the points of a similarity matrix: distances are derived
// with DistanceFromSimilarity, clustered with AverageLinkage and cut at
// 1−threshold.
func Partition(sim similarity.Matrix, threshold float64) [][]int {
	return AverageLinkage(DistanceFromSimilarity(sim)).Cut(1 - threshold)
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra != rb {
		uf.parent[rb] = ra
	}
}
