package density

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

const ctxCheckInterval = 256

type mstEdge struct {
	a, b   int
	weight float64
}

// mutualReachabilityMST builds a minimum spanning tree over the complete
// graph weighted by max(core[a], core[b], d(a, b)) using dense Prim.
// Edges are returned sorted by weight; equal weights keep discovery order.
func mutualReachabilityMST(ctx context.Context, rows [][]float64, core []float64) ([]mstEdge, error) {
	n := len(rows)
	if n < 2 {
		return nil, nil
	}
	inTree := make([]bool, n)
	best := make([]float64, n)
	from := make([]int, n)
	for i := range best {
		best[i] = math.Inf(1)
	}

	edges := make([]mstEdge, 0, n-1)
	cur := 0
	inTree[cur] = true
	for step := 1; step < n; step++ {
		if step%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		next, nextW := -1, math.Inf(1)
		for j := 0; j < n; j++ {
			if inTree[j] {
				continue
			}
			d := floats.Distance(rows[cur], rows[j], 2)
			w := math.Max(d, math.Max(core[cur], core[j]))
			if w < best[j] {
				best[j] = w
				from[j] = cur
			}
			if best[j] < nextW {
				next, nextW = j, best[j]
			}
		}
		edges = append(edges, mstEdge{a: from[next], b: next, weight: nextW})
		inTree[next] = true
		cur = next
	}

	sort.SliceStable(edges, func(i, j int) bool { return edges[i].weight < edges[j].weight })
	return edges, nil
}

// linkage is a single-linkage dendrogram. Leaves are 0..n-1; merge i creates
// node n+i joining left[i] and right[i] at dist[i].
type linkage struct {
	n     int
	left  []int
	right []int
	dist  []float64
	size  []int
}

func (l *linkage) root() int { return 2*l.n - 2 }

func (l *linkage) sizeOf(node int) int {
	if node < l.n {
		return 1
	}
	return l.size[node-l.n]
}

// buildLinkage merges sorted MST edges with a union-find.
func buildLinkage(n int, edges []mstEdge) *linkage {
	l := &linkage{
		n:     n,
		left:  make([]int, len(edges)),
		right: make([]int, len(edges)),
		dist:  make([]float64, len(edges)),
		size:  make([]int, len(edges)),
	}
	parent := make([]int, 2*n-1)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	for i, e := range edges {
		ra, rb := find(e.a), find(e.b)
		node := n + i
		l.left[i], l.right[i] = ra, rb
		l.dist[i] = e.weight
		l.size[i] = l.sizeOf(ra) + l.sizeOf(rb)
		parent[ra] = node
		parent[rb] = node
	}
	return l
}
