package embedding

import (
	"math"
	"sort"

	"github.com/okian/starchart/internal/neighbors"
)

const (
	smoothIterations = 64
	smoothTolerance  = 1e-5
	minScaleFactor   = 1e-3
)

// edge is one directed entry of the symmetric fuzzy graph.
type edge struct {
	head, tail int
	weight     float64
}

// smoothDistances calibrates, per row, the distance to the nearest non-equal
// neighbor (rho) and a bandwidth (sigma) so that the neighbor memberships sum
// to log2(k).
func smoothDistances(g *neighbors.Graph, k int) (rho, sigma []float64) {
	n := g.Len()
	rho = make([]float64, n)
	sigma = make([]float64, n)
	target := math.Log2(float64(k))

	var total float64
	var count int
	for _, ds := range g.Distances {
		for _, d := range ds {
			total += d
			count++
		}
	}
	meanAll := 0.0
	if count > 0 {
		meanAll = total / float64(count)
	}

	for i, ds := range g.Distances {
		for _, d := range ds {
			if d > 0 {
				rho[i] = d
				break
			}
		}

		lo, hi, mid := 0.0, math.Inf(1), 1.0
		for it := 0; it < smoothIterations; it++ {
			var psum float64
			for _, d := range ds {
				if delta := d - rho[i]; delta > 0 {
					psum += math.Exp(-delta / mid)
				} else {
					psum++
				}
			}
			if math.Abs(psum-target) < smoothTolerance {
				break
			}
			if psum > target {
				hi = mid
				mid = (lo + hi) / 2
			} else {
				lo = mid
				if math.IsInf(hi, 1) {
					mid *= 2
				} else {
					mid = (lo + hi) / 2
				}
			}
		}
		sigma[i] = mid

		if rho[i] > 0 {
			var mean float64
			for _, d := range ds {
				mean += d
			}
			if len(ds) > 0 {
				mean /= float64(len(ds))
			}
			sigma[i] = math.Max(sigma[i], minScaleFactor*mean)
		} else {
			sigma[i] = math.Max(sigma[i], minScaleFactor*meanAll)
		}
	}
	return rho, sigma
}

// fuzzyGraph builds the symmetric membership graph w = a + b − a·b over the
// directed kNN memberships. Edges come back ordered by head then tail.
func fuzzyGraph(g *neighbors.Graph, rho, sigma []float64) []edge {
	n := g.Len()
	directed := make([]map[int]float64, n)
	for i := range directed {
		directed[i] = make(map[int]float64, len(g.Indices[i]))
	}
	for i, idx := range g.Indices {
		for r, j := range idx {
			directed[i][j] = membership(g.Distances[i][r], rho[i], sigma[i])
		}
	}

	sym := make([]map[int]float64, n)
	for i := range sym {
		sym[i] = map[int]float64{}
	}
	for i := 0; i < n; i++ {
		for j, a := range directed[i] {
			b := directed[j][i]
			w := a + b - a*b
			sym[i][j] = w
			sym[j][i] = w
		}
	}

	var edges []edge
	for i := 0; i < n; i++ {
		tails := make([]int, 0, len(sym[i]))
		for j := range sym[i] {
			tails = append(tails, j)
		}
		sort.Ints(tails)
		for _, j := range tails {
			if w := sym[i][j]; w > 0 {
				edges = append(edges, edge{head: i, tail: j, weight: w})
			}
		}
	}
	return edges
}

func membership(d, rho, sigma float64) float64 {
	delta := d - rho
	if delta <= 0 {
		return 1
	}
	if sigma <= 0 {
		return 0
	}
	return math.Exp(-delta / sigma)
}

// prune drops edges too weak to be sampled even once in epochs.
func prune(edges []edge, epochs int) []edge {
	var maxW float64
	for _, e := range edges {
		maxW = math.Max(maxW, e.weight)
	}
	if epochs <= 0 || maxW == 0 {
		return edges
	}
	floor := maxW / float64(epochs)
	kept := edges[:0]
	for _, e := range edges {
		if e.weight >= floor {
			kept = append(kept, e)
		}
	}
	return kept
}
